package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const (
	testIP     = "203.0.113.9"
	testDevice = "device-1"
)

func requestOtp(t *testing.T, env *testEnv) {
	t.Helper()

	if err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone}); err != nil {
		t.Fatalf("failed to request otp: %v", err)
	}
}

func verifyInput(code string) OtpVerifyInput {
	return OtpVerifyInput{Phone: testPhone, Code: code, IP: testIP, DeviceID: testDevice}
}

func TestOtpVerify(t *testing.T) {
	t.Run("IssuesSessionAndAccessToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)

		// Act
		out, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Token != testToken {
			t.Fatalf("expected opaque token %q, got %q", testToken, out.Token)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected access token")
		}
		if out.Account.Phone != testPhone {
			t.Fatalf("unexpected account in output: %+v", out.Account)
		}

		if len(env.repoDB.sessions) != 1 {
			t.Fatalf("expected one session, got %d", len(env.repoDB.sessions))
		}
		session := env.repoDB.sessions[0]
		if session.Token == testToken {
			t.Fatalf("expected session to store a hashed token, not the plaintext")
		}
		if session.IP != testIP || session.DeviceID != testDevice {
			t.Fatalf("unexpected session attributes: %+v", session)
		}
		wantExpiry := env.clock.Now().Add(240 * time.Hour)
		if !session.ExpiresAt.Equal(wantExpiry) {
			t.Fatalf("expected session expiry %v, got %v", wantExpiry, session.ExpiresAt)
		}

		env.drain(t)
		if len(env.messaging.verified) != 1 || env.messaging.verified[0].SessionID != session.ID {
			t.Fatalf("expected otp verified event, got %+v", env.messaging.verified)
		}
	})

	t.Run("CodeIsSingleUse", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)
		if _, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Msg() != "Invalid OTP." {
			t.Fatalf("expected generic invalid error on replay, got %v", err)
		}
		if len(env.repoDB.sessions) != 1 {
			t.Fatalf("expected no second session, got %d", len(env.repoDB.sessions))
		}
	})

	t.Run("WrongCodeBurnsAttempt", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput("000000"))

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Msg() != "Invalid OTP." {
			t.Fatalf("expected invalid otp error, got %v", err)
		}

		env.redis.CheckGet(t, "ratelimit:"+attemptsKey(testPhone, testIP, testDevice), "1")
	})

	t.Run("UnknownPhoneLooksLikeWrongCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Msg() != "Invalid OTP." {
			t.Fatalf("expected generic invalid error, got %v", err)
		}

		env.redis.CheckGet(t, "ratelimit:"+attemptsKey(testPhone, testIP, testDevice), "1")
	})

	t.Run("NoPendingCodeBurnsAttempt", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repoDB.accountsByPhone[testPhone] = &entity.Account{
			ID:     7,
			Phone:  testPhone,
			Status: entity.AccountStatusActive,
		}

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Msg() != "Invalid OTP." {
			t.Fatalf("expected generic invalid error, got %v", err)
		}

		env.redis.CheckGet(t, "ratelimit:"+attemptsKey(testPhone, testIP, testDevice), "1")
	})

	t.Run("LockoutBeatsCorrectCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)

		for range 5 {
			if _, err := env.uc.OtpVerify(context.Background(), verifyInput("000000")); err == nil {
				t.Fatalf("expected wrong code to fail")
			}
		}

		// Act: the correct code arrives after the attempt budget is spent.
		_, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		if codeOf(t, err) != goerror.CodeTooManyRequest {
			t.Fatalf("expected lockout, got %v", err)
		}

		// The lock persists for subsequent tries.
		_, err = env.uc.OtpVerify(context.Background(), verifyInput(testCode))
		if codeOf(t, err) != goerror.CodeTooManyRequest {
			t.Fatalf("expected lock to persist, got %v", err)
		}

		env.drain(t)
		if len(env.messaging.locked) != 1 || env.messaging.locked[0].Phone != testPhone {
			t.Fatalf("expected otp locked event, got %+v", env.messaging.locked)
		}
	})

	t.Run("ExpiredCodeClearsStateAndCooldown", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)
		env.clock.Advance(6 * time.Minute)

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput(testCode))

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Msg() != "OTP expired." {
			t.Fatalf("expected expired error, got %v", err)
		}

		acc, err := env.repoDB.GetAccountByPhone(context.Background(), testPhone)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if acc.HasPendingOTP() {
			t.Fatalf("expected expired otp to be cleared")
		}

		// The cooldown is released so a fresh code can be requested at once.
		if err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Phone: testPhone}); err != nil {
			t.Fatalf("expected new request after expiry, got %v", err)
		}
	})

	t.Run("LongDeviceIDTruncated", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)

		in := verifyInput(testCode)
		in.DeviceID = strings.Repeat("d", 200)

		// Act
		_, err := env.uc.OtpVerify(context.Background(), in)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(env.repoDB.sessions[0].DeviceID); got != maxDeviceIDLength {
			t.Fatalf("expected device id capped at %d, got %d", maxDeviceIDLength, got)
		}
	})

	t.Run("MalformedCodeRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		requestOtp(t, env)

		// Act
		_, err := env.uc.OtpVerify(context.Background(), verifyInput("12ab56"))

		// Assert
		if err == nil {
			t.Fatalf("expected validation error")
		}
	})
}
