package event

const (
	OtpRequestedDestination   string = "auth_otp_requested"
	OtpRequestedConsumerAudit string = "auth_otp_requested_audit"
)

type OtpRequestedMessage struct {
	AccountID int64  `json:"account_id"`
	Phone     string `json:"phone"`
}

const (
	OtpVerifiedDestination   string = "auth_otp_verified"
	OtpVerifiedConsumerAudit string = "auth_otp_verified_audit"
)

type OtpVerifiedMessage struct {
	AccountID int64  `json:"account_id"`
	Phone     string `json:"phone"`
	SessionID int64  `json:"session_id"`
}

const (
	OtpLockedDestination   string = "auth_otp_locked"
	OtpLockedConsumerAudit string = "auth_otp_locked_audit"
)

type OtpLockedMessage struct {
	Phone    string `json:"phone"`
	IP       string `json:"ip"`
	DeviceID string `json:"device_id"`
}
