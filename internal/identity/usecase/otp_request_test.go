package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestOtpRequest(t *testing.T) {
	t.Run("SendsCodeAndCreatesAccount", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(env.sms.sent) != 1 {
			t.Fatalf("expected exactly one sms, got %d", len(env.sms.sent))
		}
		if env.sms.sent[0].To != testPhone || !strings.Contains(env.sms.sent[0].Body, testCode) {
			t.Fatalf("unexpected sms: %+v", env.sms.sent[0])
		}

		acc, err := env.repoDB.GetAccountByPhone(context.Background(), testPhone)
		if err != nil {
			t.Fatalf("expected account to exist: %v", err)
		}
		if !acc.HasPendingOTP() {
			t.Fatalf("expected pending otp on account")
		}
		if acc.FullName != "PhoneUser" || !strings.HasSuffix(acc.Email, "@otpgate.sms") {
			t.Fatalf("unexpected placeholder identity: %+v", acc)
		}

		env.drain(t)
		if len(env.messaging.requested) != 1 || env.messaging.requested[0].Phone != testPhone {
			t.Fatalf("expected otp requested event, got %+v", env.messaging.requested)
		}
	})

	t.Run("CooldownRejectsSecondRequest", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		if err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone})

		// Assert
		if codeOf(t, err) != goerror.CodeTooManyRequest {
			t.Fatalf("expected too many requests, got %v", err)
		}
		if len(env.sms.sent) != 1 {
			t.Fatalf("expected single dispatch under cooldown, got %d", len(env.sms.sent))
		}
	})

	t.Run("DispatchFailureReleasesCooldown", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.sms.fail = true

		// Act
		err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone})

		// Assert
		if codeOf(t, err) != goerror.CodeUnavailable {
			t.Fatalf("expected unavailable, got %v", err)
		}

		// The released cooldown must allow an immediate retry.
		env.sms.fail = false
		if err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone}); err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
	})

	t.Run("InvalidPhoneRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: "not-a-phone"})

		// Assert
		if err == nil {
			t.Fatalf("expected validation error")
		}
		if len(env.sms.sent) != 0 {
			t.Fatalf("expected no dispatch for invalid phone")
		}
	})

	t.Run("BannedAccountRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repoDB.accountsByPhone[testPhone] = &entity.Account{
			ID:     7,
			Phone:  testPhone,
			Status: entity.AccountStatusBanned,
		}

		// Act
		err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone})

		// Assert
		if codeOf(t, err) != goerror.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
		if len(env.sms.sent) != 0 {
			t.Fatalf("expected no dispatch for banned account")
		}
	})
}
