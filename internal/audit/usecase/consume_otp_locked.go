package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/audit/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type ConsumeOtpLockedInput struct {
	Phone    string `validate:"required"`
	IP       string
	DeviceID string
}

func (s *Usecase) ConsumeOtpLocked(ctx context.Context, in ConsumeOtpLockedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpLocked")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	record := entity.Record{
		ID:    s.uid.Generate(),
		Kind:  entity.KindOtpLocked,
		Phone: in.Phone,
		Detail: valueobject.JSONMap{
			"ip":        in.IP,
			"device_id": in.DeviceID,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := s.repoDB.CreateRecord(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit record", "phone", in.Phone, "error", err)
		return err
	}

	return nil
}
