package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

type AccountOutput struct {
	Account entity.Account
}

func (s *Usecase) Account(ctx context.Context) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "Account")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	account, err := s.repoDB.GetAccountByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "account_id", clm.UserID)
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by id", "account_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureAccountStatusAllowed(ctx, account.ID, account.Status); err != nil {
		return nil, err
	}

	return &AccountOutput{Account: *account}, nil
}
