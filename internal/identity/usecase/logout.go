package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type LogoutInput struct {
	Token string
}

func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	// Opaque session tokens are always 64 characters; anything else cannot
	// match a stored session, so revocation is a silent no-op.
	if len(in.Token) != 64 {
		return nil
	}

	tokenHash, err := s.hmac.Hash(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.RevokeSession(ctx, string(tokenHash)); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke session", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
