package hash

// Hash digests plaintext values and verifies them against stored digests.
type Hash interface {
	// Hash returns the digest of the input string.
	Hash(str string) ([]byte, error)
	// Verify reports whether the plaintext string matches the stored digest.
	Verify(hashed, str string) bool
}
