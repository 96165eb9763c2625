package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qpay/securegate/internal/models"
)

// PostgresCardRepository implements cardholder persistence using a
// PostgreSQL database.
type PostgresCardRepository struct {
	DB *sql.DB
}

// NewPostgresCardRepository creates a new PostgresCardRepository with
// the given database connection.
func NewPostgresCardRepository(db *sql.DB) *PostgresCardRepository {
	return &PostgresCardRepository{DB: db}
}

// ExistsByNumber reports whether a card is already registered.
func (r *PostgresCardRepository) ExistsByNumber(ctx context.Context, cardNumber string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM cardholders WHERE card_number = $1)`,
		cardNumber,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new cardholder record.
func (r *PostgresCardRepository) Create(ctx context.Context, c models.Cardholder) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO cardholders (card_number, cardholder_name, expiry, mobile_number, user_email)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.CardNumber, c.CardholderName, c.Expiry, c.Mobile, c.UserEmail,
	)
	if err != nil {
		return fmt.Errorf("insert cardholder: %w", err)
	}
	return nil
}

// MobileByCard returns the mobile number registered for a card.
// Returns ErrCardNotFound when the card is not registered; an empty
// string when the card has no linked mobile number.
func (r *PostgresCardRepository) MobileByCard(ctx context.Context, cardNumber string) (string, error) {
	var mobile sql.NullString
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT mobile_number FROM cardholders WHERE card_number = $1`,
		cardNumber,
	).Scan(&mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCardNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select cardholder: %w", err)
	}
	return mobile.String, nil
}
