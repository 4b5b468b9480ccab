package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
)

type OtpRequestInput struct {
	Phone string `validate:"required,e164"`
}

func (s *Usecase) OtpRequest(ctx context.Context, in OtpRequestInput) error {
	ctx, span := s.startSpan(ctx, "OtpRequest")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	phone := strings.TrimSpace(in.Phone)

	// The cooldown flag is claimed before dispatch so two concurrent requests
	// for the same phone cannot both send a code.
	cooldownTTL := s.cfg.GetSecond("modules.identity.otp_cooldown_seconds")
	set, err := s.rateLimit.SetFlagNX(ctx, cooldownKey(phone), cooldownTTL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim otp cooldown", "error", err)
		return goerror.NewServer(err)
	}
	if !set {
		slog.WarnContext(ctx, "otp request rejected by cooldown", "phone", phone)
		return goerror.NewBusiness(
			"OTP already sent. Please wait before requesting a new code.",
			goerror.CodeTooManyRequest,
		)
	}

	account, err := s.repoDB.UpsertAccountByPhone(ctx, entity.NewAccount{
		ID:       s.uid.Generate(),
		Phone:    phone,
		Email:    placeholderEmail(phone),
		FullName: "PhoneUser",
		Status:   entity.AccountStatusActive,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert account by phone", "phone", phone, "error", err)
		s.releaseCooldown(ctx, phone)
		return goerror.NewServer(err)
	}

	if err := s.ensureAccountStatusAllowed(ctx, account.ID, account.Status); err != nil {
		s.releaseCooldown(ctx, phone)
		return err
	}

	code, err := s.otpCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "account_id", account.ID, "error", err)
		s.releaseCooldown(ctx, phone)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(phone + code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "account_id", account.ID, "error", err)
		s.releaseCooldown(ctx, phone)
		return goerror.NewServer(err)
	}

	expiresAt := s.clock.Now().Add(s.cfg.GetMinute("modules.identity.otp_ttl_minutes"))
	if err := s.repoDB.SetAccountOTP(ctx, account.ID, string(codeHash), expiresAt); err != nil {
		slog.ErrorContext(ctx, "failed to repo set account otp", "account_id", account.ID, "error", err)
		s.releaseCooldown(ctx, phone)
		return goerror.NewServer(err)
	}

	if err := s.sms.Send(ctx, sms.Message{
		To:   phone,
		Body: "Your verification code is " + code + ". It expires in 5 minutes.",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch otp sms", "account_id", account.ID, "error", err)
		// Releasing the cooldown lets the user retry immediately after a
		// provider failure instead of waiting out the window.
		s.releaseCooldown(ctx, phone)
		return goerror.NewBusiness("Failed to send OTP. Please try again.", goerror.CodeUnavailable)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		if err := s.repoMessaging.PublishOtpRequested(gctx, OtpRequestedEvent{
			AccountID: account.ID,
			Phone:     phone,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish otp requested", "account_id", account.ID, "error", err)
		}
		return nil
	})

	return nil
}

func (s *Usecase) releaseCooldown(ctx context.Context, phone string) {
	if err := s.rateLimit.Delete(ctx, cooldownKey(phone)); err != nil {
		slog.ErrorContext(ctx, "failed to release otp cooldown", "phone", phone, "error", err)
	}
}
