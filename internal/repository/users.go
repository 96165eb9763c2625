package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qpay/securegate/internal/models"
)

// PostgresUserRepository implements account persistence using a
// PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with
// the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// ExistsByEmailOrMobile reports whether an account already uses the
// given email or mobile number.
func (r *PostgresUserRepository) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR mobile_number = $2)`,
		email, mobile,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new account record.
func (r *PostgresUserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (email, name, mobile_number, password, nonce, encryption_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.Email, u.Name, u.Mobile, u.Password, u.Nonce, u.EncryptionKey, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByIdentifier looks up an account by email or mobile number.
// Returns ErrUserNotFound when no account matches.
func (r *PostgresUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT email, name, mobile_number, password, nonce, encryption_key, created_at
		   FROM users
		  WHERE email = $1 OR mobile_number = $1`,
		identifier,
	).Scan(&u.Email, &u.Name, &u.Mobile, &u.Password, &u.Nonce, &u.EncryptionKey, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
