package sms

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverHTTP selects the HTTP gateway backend.
	DriverHTTP = "http"
	// DriverLog selects the log backend (debug only).
	DriverLog = "log"
)

// ErrUnknownDriver indicates an unsupported sms driver.
var ErrUnknownDriver = errors.New("sms: unknown driver")

// NewFromDriver constructs an Sms implementation by driver name.
func NewFromDriver(driver string, cfg HTTPGatewayConfig) (Sms, error) {
	switch strings.TrimSpace(driver) {
	case DriverHTTP:
		return NewHTTPGateway(cfg)
	case DriverLog:
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
