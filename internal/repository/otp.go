package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qpay/securegate/internal/otp"
)

// PostgresChallengeStore is a durable otp.ChallengeStore. The composite
// (mobile_number, transaction_id) primary key makes Put an atomic
// upsert, so two concurrent sends for the same key cannot lose updates.
type PostgresChallengeStore struct {
	DB *sql.DB
}

// NewPostgresChallengeStore creates a new PostgresChallengeStore with
// the given database connection.
func NewPostgresChallengeStore(db *sql.DB) *PostgresChallengeStore {
	return &PostgresChallengeStore{DB: db}
}

// Get returns the challenge for the composite key, or nil when absent.
func (s *PostgresChallengeStore) Get(ctx context.Context, key otp.Key) (*otp.Challenge, error) {
	ch := otp.Challenge{Mobile: key.Mobile, TransactionID: key.TransactionID}
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT code, created_at FROM otp_storage
		  WHERE mobile_number = $1 AND transaction_id = $2`,
		key.Mobile, key.TransactionID,
	).Scan(&ch.Code, &ch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select challenge: %w", err)
	}
	return &ch, nil
}

// Put upserts the challenge under its composite key, replacing any
// prior challenge for the same key.
func (s *PostgresChallengeStore) Put(ctx context.Context, ch otp.Challenge) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO otp_storage (mobile_number, transaction_id, code, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (mobile_number, transaction_id)
		 DO UPDATE SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
		ch.Mobile, ch.TransactionID, ch.Code, ch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert challenge: %w", err)
	}
	return nil
}

// Delete removes the challenge for the composite key, if any.
func (s *PostgresChallengeStore) Delete(ctx context.Context, key otp.Key) error {
	_, err := s.DB.ExecContext(
		ctx,
		`DELETE FROM otp_storage WHERE mobile_number = $1 AND transaction_id = $2`,
		key.Mobile, key.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
