package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
)

const accountColumns = `id, phone, email, full_name, status,
	(password IS NOT NULL AND password <> '') AS has_password,
	otp_hash, otp_expires_at`

// UpsertAccountByPhone inserts a new account for the phone or returns the
// existing one. The no-op DO UPDATE makes RETURNING yield the existing row.
func (s *DB) UpsertAccountByPhone(ctx context.Context, in entity.NewAccount) (out *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "UpsertAccountByPhone")
	defer func() { s.endSpan(span, err) }()

	query := `INSERT INTO accounts (id, phone, email, full_name, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING ` + accountColumns

	var acc entity.Account
	err = s.mapError(s.conn.
		QueryRow(ctx, query, in.ID, in.Phone, in.Email, in.FullName, in.Status).
		Scan(&acc.ID, &acc.Phone, &acc.Email, &acc.FullName, &acc.Status,
			&acc.HasPassword, &acc.OTPHash, &acc.OTPExpiresAt))
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *DB) GetAccountByPhone(ctx context.Context, phone string) (out *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByPhone")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`

	var acc entity.Account
	err = s.mapError(s.conn.
		QueryRow(ctx, query, phone).
		Scan(&acc.ID, &acc.Phone, &acc.Email, &acc.FullName, &acc.Status,
			&acc.HasPassword, &acc.OTPHash, &acc.OTPExpiresAt))
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *DB) GetAccountByID(ctx context.Context, id int64) (out *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var acc entity.Account
	err = s.mapError(s.conn.
		QueryRow(ctx, query, id).
		Scan(&acc.ID, &acc.Phone, &acc.Email, &acc.FullName, &acc.Status,
			&acc.HasPassword, &acc.OTPHash, &acc.OTPExpiresAt))
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *DB) SetAccountOTP(ctx context.Context, accountID int64, otpHash string, expiresAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "SetAccountOTP")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE accounts
		SET otp_hash = $2, otp_expires_at = $3, updated_at = now()
		WHERE id = $1`

	_, err = s.conn.Exec(ctx, query, accountID, otpHash, expiresAt)
	err = s.mapError(err)
	return err
}

func (s *DB) ClearAccountOTP(ctx context.Context, accountID int64) (err error) {
	ctx, span := s.startSpan(ctx, "ClearAccountOTP")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE accounts
		SET otp_hash = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1`

	_, err = s.conn.Exec(ctx, query, accountID)
	err = s.mapError(err)
	return err
}

// ConsumeAccountOTP clears the pending code only when it still matches the
// hash the caller verified. It reports false when a concurrent verify won.
func (s *DB) ConsumeAccountOTP(ctx context.Context, accountID int64, otpHash string) (ok bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeAccountOTP")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE accounts
		SET otp_hash = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND otp_hash = $2`

	tag, err := s.conn.Exec(ctx, query, accountID, otpHash)
	if err != nil {
		err = s.mapError(err)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
