package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

func TestAccount(t *testing.T) {
	t.Run("ReturnsAuthenticatedAccount", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repoDB.accountsByPhone[testPhone] = &entity.Account{
			ID:       42,
			Phone:    testPhone,
			Email:    "abcdef0123@otpgate.sms",
			FullName: "PhoneUser",
			Status:   entity.AccountStatusActive,
		}
		ctx := jwt.SetAuth(context.Background(), jwt.Claims{UserID: 42})

		// Act
		out, err := env.uc.Account(ctx)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Account.ID != 42 || out.Account.Phone != testPhone {
			t.Fatalf("unexpected account: %+v", out.Account)
		}
	})

	t.Run("MissingAuthRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Account(context.Background())

		// Assert
		if codeOf(t, err) != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("BannedAccountRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repoDB.accountsByPhone[testPhone] = &entity.Account{
			ID:     42,
			Phone:  testPhone,
			Status: entity.AccountStatusBanned,
		}
		ctx := jwt.SetAuth(context.Background(), jwt.Claims{UserID: 42})

		// Act
		_, err := env.uc.Account(ctx)

		// Assert
		if codeOf(t, err) != goerror.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}
