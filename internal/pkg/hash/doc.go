// Package hash provides helpers for hashing and verifying secrets.
//
// Typical usage is for one-time codes and opaque tokens: store only the
// keyed digest, then verify user input by comparing the plaintext against
// the stored digest in constant time. Implementations live in this package
// behind a small interface.
package hash
