package entity

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

// Kind identifies the authentication event an audit record describes.
type Kind string

const (
	KindOtpRequested Kind = "otp_requested"
	KindOtpVerified  Kind = "otp_verified"
	KindOtpLocked    Kind = "otp_locked"
)

func (k Kind) String() string {
	return string(k)
}

// Record is a single entry in the authentication audit trail.
type Record struct {
	ID        int64
	Kind      Kind
	AccountID int64
	Phone     string
	Detail    valueobject.JSONMap
	CreatedAt time.Time
}
