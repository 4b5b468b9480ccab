package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/audit/entity"
)

func (s *DB) CreateRecord(ctx context.Context, in entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRecord")
	defer func() { s.endSpan(span, err) }()

	query := `INSERT INTO audit_logs (id, kind, account_id, phone, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.Kind.String(), in.AccountID, in.Phone, in.Detail, in.CreatedAt)
	err = s.mapError(err)
	return err
}
