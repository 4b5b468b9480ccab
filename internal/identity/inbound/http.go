package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	OtpRequest(ctx context.Context, in usecase.OtpRequestInput) error
	OtpVerify(ctx context.Context, in usecase.OtpVerifyInput) (*usecase.OtpVerifyOutput, error)

	Account(ctx context.Context) (*usecase.AccountOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// OTP Authentication
	r.POST("/api/v1/auth/otp/request", end.OtpRequest)
	r.POST("/api/v1/auth/otp/verify", end.OtpVerify)
	r.POST("/api/v1/auth/logout", end.Logout)

	// Account (need authenticated)
	r.GET("/api/v1/auth/account", end.Account)
}
