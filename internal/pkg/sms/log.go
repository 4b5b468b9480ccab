package sms

import (
	"context"
	"log/slog"
)

// Log is a debug Sms implementation that writes messages to the operational
// log instead of dispatching them. Never use it in production: the message
// body contains the raw one-time code.
type Log struct{}

// NewLog constructs the log driver.
func NewLog() *Log {
	return &Log{}
}

// Send writes the message to the log.
func (s *Log) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "[MOCK SMS] message not dispatched", "to", msg.To, "body", msg.Body)

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *Log) Close() error {
	return nil
}
