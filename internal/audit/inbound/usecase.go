package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/audit/usecase"
)

type uc interface {
	ConsumeOtpRequested(ctx context.Context, in usecase.ConsumeOtpRequestedInput) error
	ConsumeOtpVerified(ctx context.Context, in usecase.ConsumeOtpVerifiedInput) error
	ConsumeOtpLocked(ctx context.Context, in usecase.ConsumeOtpLockedInput) error
}
