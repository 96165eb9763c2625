package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/qpay/securegate/internal/models"
)

func TestCreateTransaction_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTransactionRepository(db)

	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WithArgs("txn-42", "asha@example.com", 2500.0, "card", models.StatusSuccess, "", `{"ciphertext":"c"}`, createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), models.Transaction{
		TransactionID:  "txn-42",
		UserIdentifier: "asha@example.com",
		Amount:         2500,
		Method:         models.MethodCard,
		Status:         models.StatusSuccess,
		EncryptedData:  `{"ciphertext":"c"}`,
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateTransaction_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTransactionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WillReturnError(errors.New("duplicate key"))

	err = repo.Create(context.Background(), models.Transaction{TransactionID: "txn-42"})
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateFraudLog_JoinsReasons(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewPostgresFraudLogRepository(db)

	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO fraud_logs`)).
		WithArgs("asha@example.com", 15000.0, "upi", "Russia", "Unknown", "203.0.113.7",
			"High transaction amount, Unusual location", createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), models.FraudLog{
		UserIdentifier: "asha@example.com",
		Amount:         15000,
		Method:         models.MethodUPI,
		Location:       "Russia",
		Device:         "Unknown",
		IPAddress:      "203.0.113.7",
		Reasons:        []string{"High transaction amount", "Unusual location"},
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateFraudLog_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewPostgresFraudLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO fraud_logs`)).
		WillReturnError(errors.New("insert failed"))

	err = repo.Create(context.Background(), models.FraudLog{UserIdentifier: "asha@example.com"})
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
