package inbound

type OtpRequestRequest struct {
	Phone string `json:"phone"`
}

type OtpRequestResponse struct{}

func (OtpRequestResponse) Message() string {
	return "OTP sent successfully."
}

type OtpVerifyRequest struct {
	Phone string `json:"phone"`
	Otp   string `json:"otp"`
}

type OtpVerifyResponse struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	Account     AccountResponse `json:"account"`
	HasPassword bool            `json:"has_password"`
}

func (OtpVerifyResponse) Message() string {
	return "OTP verified successfully."
}

type AccountResponse struct {
	ID     int64  `json:"id,string"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type LogoutRequest struct {
	Token string `json:"token"`
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out successfully."
}
