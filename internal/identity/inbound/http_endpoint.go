package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for phone OTP authentication.
type HTTPEndpoint struct {
	uc uc
}

// OtpRequest sends a one-time code to the given phone number, creating the
// account on first contact.
func (h *HTTPEndpoint) OtpRequest(r *router.Request) (any, error) {
	var req OtpRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OtpRequest(r.Context(), usecase.OtpRequestInput{Phone: req.Phone}); err != nil {
		return nil, err
	}

	return OtpRequestResponse{}, nil
}

// OtpVerify checks the submitted code and issues a session token plus a
// short-lived access token.
func (h *HTTPEndpoint) OtpVerify(r *router.Request) (any, error) {
	var req OtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OtpVerify(r.Context(), usecase.OtpVerifyInput{
		Phone:    req.Phone,
		Code:     req.Otp,
		IP:       r.RemoteAddr, // normalized by the IP middleware
		DeviceID: r.Header.Get("X-Device-ID"),
	})
	if err != nil {
		return nil, err
	}

	return OtpVerifyResponse{
		Token:       resp.Token,
		AccessToken: resp.AccessToken,
		Account: AccountResponse{
			ID:     resp.Account.ID,
			Phone:  resp.Account.Phone,
			Email:  resp.Account.Email,
			Name:   resp.Account.FullName,
			Status: resp.Account.Status.String(),
		},
		HasPassword: resp.Account.HasPassword,
	}, nil
}

// Account returns the authenticated account's profile.
func (h *HTTPEndpoint) Account(r *router.Request) (any, error) {
	resp, err := h.uc.Account(r.Context())
	if err != nil {
		return nil, err
	}

	return AccountResponse{
		ID:     resp.Account.ID,
		Phone:  resp.Account.Phone,
		Email:  resp.Account.Email,
		Name:   resp.Account.FullName,
		Status: resp.Account.Status.String(),
	}, nil
}

// Logout revokes the given session token.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{Token: req.Token}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}
