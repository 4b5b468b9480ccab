package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/audit/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type ConsumeOtpRequestedInput struct {
	AccountID int64  `validate:"required,gt=0"`
	Phone     string `validate:"required"`
}

func (s *Usecase) ConsumeOtpRequested(ctx context.Context, in ConsumeOtpRequestedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpRequested")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	record := entity.Record{
		ID:        s.uid.Generate(),
		Kind:      entity.KindOtpRequested,
		AccountID: in.AccountID,
		Phone:     in.Phone,
		Detail:    valueobject.JSONMap{},
		CreatedAt: s.clock.Now(),
	}
	if err := s.repoDB.CreateRecord(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit record", "account_id", in.AccountID, "error", err)
		return err
	}

	return nil
}
