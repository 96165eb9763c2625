package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/fraud"
	"github.com/qpay/securegate/internal/ledger"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/processor"
	"github.com/qpay/securegate/internal/vault"
)

// TransactionRepository persists accepted payment attempts.
type TransactionRepository interface {
	Create(ctx context.Context, t models.Transaction) error
}

// FraudLogRepository persists fraud-attempt audit records.
type FraudLogRepository interface {
	Create(ctx context.Context, l models.FraudLog) error
}

// Scorer computes a fraud verdict for a transaction.
type Scorer interface {
	Score(t fraud.Transaction) fraud.Verdict
}

// PaymentRequest is one transaction attempt after authentication.
type PaymentRequest struct {
	// Identifier is the authenticated user's login identifier.
	Identifier string
	Amount     float64
	Method     models.PaymentMethod
	CardNumber string
	UPIID      string
	BankCode   string
	Location   string
	Device     string
	IPAddress  string
}

// PaymentResult is the outcome of a committed transaction.
type PaymentResult struct {
	TransactionID string
	Status        string
	Latency       time.Duration
}

// PaymentService sequences the security controls around the transaction
// write: validation, the high-risk ceiling, the fraud gate with its
// audit side effect, the external processor, descriptor encryption, and
// the single persisted record.
type PaymentService struct {
	transactions TransactionRepository
	fraudLogs    FraudLogRepository
	engine       Scorer
	processor    processor.Processor
	ledger       ledger.Ledger
	ceiling      float64
	log          *zap.Logger

	now func() time.Time
}

// NewPaymentService constructs a PaymentService. ceiling is the amount
// above which transactions are rejected for manual verification.
func NewPaymentService(
	transactions TransactionRepository,
	fraudLogs FraudLogRepository,
	engine Scorer,
	proc processor.Processor,
	led ledger.Ledger,
	ceiling float64,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		transactions: transactions,
		fraudLogs:    fraudLogs,
		engine:       engine,
		processor:    proc,
		ledger:       led,
		ceiling:      ceiling,
		log:          log,
		now:          time.Now,
	}
}

// Process runs one transaction attempt end to end. Validation and the
// ceiling check short-circuit before any state mutation; a positive
// fraud verdict persists the audit log and aborts before any
// funds-movement side effect; exactly one transaction record is written
// per attempt that reaches the processor and completes.
func (s *PaymentService) Process(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.Amount > s.ceiling {
		return nil, errs.HighRisk("High-Risk Transaction! Manual Verification Required.")
	}

	verdict := s.engine.Score(fraud.Transaction{
		Amount:   req.Amount,
		Method:   req.Method,
		Location: req.Location,
		Device:   req.Device,
		IP:       req.IPAddress,
	})
	if verdict.IsFraud {
		if err := s.logFraudAttempt(ctx, req, verdict); err != nil {
			return nil, err
		}
		return nil, errs.Fraud(verdict.Reasons)
	}

	// A request already cancelled at fraud clearance must not reach the
	// processor, so no record can exist without a completed round trip.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request aborted before processing: %w", err)
	}

	result, err := s.processor.Process(ctx, req.Amount, req.Method)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	descriptor, err := encryptDescriptor(req.Amount, req.Method)
	if err != nil {
		return nil, errs.Internal("failed to encrypt transaction descriptor", err)
	}

	record := models.Transaction{
		TransactionID:  uuid.NewString(),
		UserIdentifier: req.Identifier,
		Amount:         req.Amount,
		Method:         req.Method,
		Status:         result.Status,
		BankCode:       req.BankCode,
		EncryptedData:  descriptor,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.transactions.Create(ctx, record); err != nil {
		return nil, errs.Internal("failed to persist transaction", err)
	}

	// The ledger write is an opaque external call; a failure is logged
	// and never blocks the response.
	if ref, err := s.ledger.Record(ctx, req.Amount, req.Method, result.Status); err != nil {
		s.log.Warn("ledger write failed", zap.Error(err))
	} else {
		s.log.Info("transaction recorded",
			zap.String("transaction_id", record.TransactionID),
			zap.String("status", result.Status),
			zap.String("ledger_ref", ref),
		)
	}

	if result.Status == models.StatusFailed {
		// Failed attempts stay auditable: the record is already persisted.
		return &PaymentResult{
				TransactionID: record.TransactionID,
				Status:        result.Status,
				Latency:       result.Latency,
			},
			errs.TransactionFailed("Transaction Failed! Try Again.")
	}

	return &PaymentResult{
		TransactionID: record.TransactionID,
		Status:        result.Status,
		Latency:       result.Latency,
	}, nil
}

// Check runs the fraud engine on its own, persisting the audit record
// on a positive verdict. It backs the standalone fraud-check endpoint.
func (s *PaymentService) Check(ctx context.Context, identifier string, t fraud.Transaction) (fraud.Verdict, error) {
	verdict := s.engine.Score(t)
	if verdict.IsFraud {
		req := PaymentRequest{
			Identifier: identifier,
			Amount:     t.Amount,
			Method:     t.Method,
			Location:   t.Location,
			Device:     t.Device,
			IPAddress:  t.IP,
		}
		if err := s.logFraudAttempt(ctx, req, verdict); err != nil {
			return fraud.Verdict{}, err
		}
	}
	return verdict, nil
}

func (s *PaymentService) logFraudAttempt(ctx context.Context, req PaymentRequest, verdict fraud.Verdict) error {
	err := s.fraudLogs.Create(ctx, models.FraudLog{
		UserIdentifier: req.Identifier,
		Amount:         req.Amount,
		Method:         req.Method,
		Location:       req.Location,
		Device:         req.Device,
		IPAddress:      req.IPAddress,
		Reasons:        verdict.Reasons,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return errs.Internal("failed to persist fraud log", err)
	}
	s.log.Warn("fraud attempt blocked",
		zap.String("identifier", req.Identifier),
		zap.Float64("amount", req.Amount),
		zap.Strings("reasons", verdict.Reasons),
	)
	return nil
}

// validateRequest enforces the per-variant required fields.
func validateRequest(req PaymentRequest) error {
	if req.Amount <= 0 {
		return errs.Validation("Invalid transaction amount")
	}
	switch req.Method {
	case models.MethodCard:
		if strings.TrimSpace(req.CardNumber) == "" {
			return errs.Validation("Card number required for Card Payments.")
		}
	case models.MethodUPI:
		if !strings.Contains(req.UPIID, "@") {
			return errs.Validation("UPI ID required for UPI Payments.")
		}
	case models.MethodNetBanking:
		if strings.TrimSpace(req.BankCode) == "" {
			return errs.Validation("Bank code required for Net Banking.")
		}
	default:
		return errs.Validation("Invalid payment method")
	}
	return nil
}

// encryptDescriptor seals the human-readable transaction descriptor for
// auditability and stores the full triple so it stays decryptable.
func encryptDescriptor(amount float64, method models.PaymentMethod) (string, error) {
	secret, err := vault.Encrypt(fmt.Sprintf("%.2f INR via %s", amount, method), nil)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(secret)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
