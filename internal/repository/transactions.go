package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/qpay/securegate/internal/models"
)

// PostgresTransactionRepository implements transaction persistence
// using a PostgreSQL database. Records are write-once.
type PostgresTransactionRepository struct {
	DB *sql.DB
}

// NewPostgresTransactionRepository creates a new
// PostgresTransactionRepository with the given database connection.
func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{DB: db}
}

// Create inserts exactly one transaction record. The transaction_id
// primary key enforces identifier uniqueness.
func (r *PostgresTransactionRepository) Create(ctx context.Context, t models.Transaction) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO transactions
		   (transaction_id, user_identifier, amount, payment_method, status, bank_code, encrypted_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.TransactionID, t.UserIdentifier, t.Amount, string(t.Method), t.Status, t.BankCode, t.EncryptedData, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// PostgresFraudLogRepository persists fraud-attempt audit records.
type PostgresFraudLogRepository struct {
	DB *sql.DB
}

// NewPostgresFraudLogRepository creates a new PostgresFraudLogRepository
// with the given database connection.
func NewPostgresFraudLogRepository(db *sql.DB) *PostgresFraudLogRepository {
	return &PostgresFraudLogRepository{DB: db}
}

// Create inserts one fraud audit record. Reasons are stored joined.
func (r *PostgresFraudLogRepository) Create(ctx context.Context, l models.FraudLog) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO fraud_logs
		   (user_identifier, amount, payment_method, location, device, ip_address, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.UserIdentifier, l.Amount, string(l.Method), l.Location, l.Device, l.IPAddress,
		strings.Join(l.Reasons, ", "), l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fraud log: %w", err)
	}
	return nil
}
