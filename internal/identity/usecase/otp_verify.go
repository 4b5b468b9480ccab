package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type OtpVerifyInput struct {
	Phone    string `validate:"required,e164"`
	Code     string `validate:"required,otpcode"`
	IP       string
	DeviceID string
}

type OtpVerifyOutput struct {
	Token       string
	AccessToken string
	Account     entity.Account
}

func (s *Usecase) OtpVerify(ctx context.Context, in OtpVerifyInput) (*OtpVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OtpVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phone := strings.TrimSpace(in.Phone)
	deviceID := truncateDeviceID(in.DeviceID)
	attempts := attemptsKey(phone, in.IP, deviceID)
	lock := lockKey(phone, in.IP, deviceID)

	locked, err := s.rateLimit.HasFlag(ctx, lock)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check otp lock", "error", err)
		return nil, goerror.NewServer(err)
	}
	if locked {
		return nil, errTooManyAttempts()
	}

	count, err := s.rateLimit.Count(ctx, attempts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count otp attempts", "error", err)
		return nil, goerror.NewServer(err)
	}
	if count >= s.cfg.GetInt64("modules.identity.otp_max_attempts") {
		return nil, s.lockVerification(ctx, phone, in.IP, deviceID, attempts, lock)
	}

	account, err := s.repoDB.GetAccountByPhone(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		// A generic failure keeps unknown phones indistinguishable from
		// wrong codes, and still burns an attempt.
		slog.WarnContext(ctx, "otp verify for unknown phone", "phone", phone)
		s.noteFailedAttempt(ctx, attempts)
		return nil, errInvalidOTP()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by phone", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureAccountStatusAllowed(ctx, account.ID, account.Status); err != nil {
		return nil, err
	}

	if !account.HasPendingOTP() {
		slog.WarnContext(ctx, "otp verify without pending code", "account_id", account.ID)
		s.noteFailedAttempt(ctx, attempts)
		return nil, errInvalidOTP()
	}

	if s.clock.Now().After(*account.OTPExpiresAt) {
		if err := s.repoDB.ClearAccountOTP(ctx, account.ID); err != nil {
			slog.ErrorContext(ctx, "failed to repo clear expired otp", "account_id", account.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		// Dropping the cooldown lets the user request a fresh code right away.
		if err := s.rateLimit.Delete(ctx, cooldownKey(phone), attempts); err != nil {
			slog.ErrorContext(ctx, "failed to clear limits after otp expiry", "account_id", account.ID, "error", err)
		}
		return nil, goerror.NewBusiness("OTP expired.", goerror.CodeInvalidFormat)
	}

	if !s.hmac.Verify(*account.OTPHash, phone+in.Code) {
		slog.WarnContext(ctx, "otp verify code mismatch", "account_id", account.ID)
		s.noteFailedAttempt(ctx, attempts)
		return nil, errInvalidOTP()
	}

	// The conditional update clears the code only if it is still the one we
	// just matched, so a concurrent verify cannot consume it twice.
	consumed, err := s.repoDB.ConsumeAccountOTP(ctx, account.ID, *account.OTPHash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume account otp", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "otp already consumed", "account_id", account.ID)
		return nil, errInvalidOTP()
	}

	if err := s.rateLimit.Delete(ctx, attempts, lock); err != nil {
		slog.ErrorContext(ctx, "failed to clear limits after otp verify", "account_id", account.ID, "error", err)
	}

	token := s.oid.Generate()
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	session := entity.Session{
		ID:        s.uid.Generate(),
		AccountID: account.ID,
		Token:     string(tokenHash),
		IP:        in.IP,
		DeviceID:  deviceID,
		Metadata:  valueobject.JSONMap{"channel": "sms_otp"},
		ExpiresAt: s.clock.Now().Add(s.cfg.GetHour("modules.identity.session_ttl_hours")),
	}
	if err := s.repoDB.CreateSession(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	accessToken, err := s.jwt.Generate(account.ID, account.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		if err := s.repoMessaging.PublishOtpVerified(gctx, OtpVerifiedEvent{
			AccountID: account.ID,
			Phone:     phone,
			SessionID: session.ID,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish otp verified", "account_id", account.ID, "error", err)
		}
		return nil
	})

	return &OtpVerifyOutput{
		Token:       token,
		AccessToken: accessToken,
		Account:     *account,
	}, nil
}

// lockVerification trips the verification lock for the (phone, ip, device)
// tuple and resets the attempt counter.
func (s *Usecase) lockVerification(ctx context.Context, phone, ip, deviceID, attempts, lock string) error {
	lockTTL := s.cfg.GetHour("modules.identity.otp_lock_ttl_hours")
	if _, err := s.rateLimit.SetFlagNX(ctx, lock, lockTTL); err != nil {
		slog.ErrorContext(ctx, "failed to set otp lock", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.rateLimit.Delete(ctx, attempts); err != nil {
		slog.ErrorContext(ctx, "failed to reset otp attempts after lock", "error", err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		if err := s.repoMessaging.PublishOtpLocked(gctx, OtpLockedEvent{
			Phone:    phone,
			IP:       ip,
			DeviceID: deviceID,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish otp locked", "phone", phone, "error", err)
		}
		return nil
	})

	return errTooManyAttempts()
}

// noteFailedAttempt bumps the failure counter. The counter window matches the
// code lifetime so stale failures age out with the code.
func (s *Usecase) noteFailedAttempt(ctx context.Context, attempts string) {
	ttl := s.cfg.GetMinute("modules.identity.otp_ttl_minutes")
	if _, err := s.rateLimit.Increment(ctx, attempts, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to increment otp attempts", "error", err)
	}
}

func errInvalidOTP() error {
	return goerror.NewBusiness("Invalid OTP.", goerror.CodeInvalidFormat)
}

func errTooManyAttempts() error {
	return goerror.NewBusiness("Too many failed attempts. Try again in 1 hour.", goerror.CodeTooManyRequest)
}
