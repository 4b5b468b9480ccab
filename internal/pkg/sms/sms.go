// Package sms abstracts outbound text-message delivery.
//
// Production uses an HTTP gateway provider; a log driver exists for local
// development where codes are written to the operational log instead of
// being dispatched.
package sms

import (
	"context"
	"io"
)

// Message represents a text message payload.
type Message struct {
	// To is the destination phone number in E.164 format.
	To string
	// Body is the message text.
	Body string
}

// Sms abstracts a text-message provider (HTTP gateway, log, etc).
type Sms interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
