package entity

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type Account struct {
	ID          int64
	Phone       string
	Email       string
	FullName    string
	Status      AccountStatus
	HasPassword bool
	// OTPHash and OTPExpiresAt are both set while a code is pending and
	// both nil otherwise. One without the other is a data bug.
	OTPHash      *string
	OTPExpiresAt *time.Time
}

// HasPendingOTP reports whether the account has a stored, not-yet-consumed code.
func (a Account) HasPendingOTP() bool {
	return a.OTPHash != nil && a.OTPExpiresAt != nil
}

type NewAccount struct {
	ID       int64
	Phone    string
	Email    string
	FullName string
	Status   AccountStatus
}

type Session struct {
	ID        int64
	AccountID int64
	Token     string // hashed
	IP        string
	DeviceID  string
	Metadata  valueobject.JSONMap
	ExpiresAt time.Time
}
