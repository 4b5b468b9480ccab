package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
)

func (s *DB) CreateSession(ctx context.Context, in entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSession")
	defer func() { s.endSpan(span, err) }()

	query := `INSERT INTO sessions (id, account_id, token, ip, device_id, metadata, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.AccountID, in.Token, in.IP, in.DeviceID, in.Metadata, in.ExpiresAt)
	err = s.mapError(err)
	return err
}

func (s *DB) RevokeSession(ctx context.Context, tokenHash string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeSession")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE sessions SET revoked = TRUE WHERE token = $1 AND NOT revoked`

	_, err = s.conn.Exec(ctx, query, tokenHash)
	err = s.mapError(err)
	return err
}
