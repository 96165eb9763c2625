// Package otp issues, stores and verifies one-time codes for step-up
// verification. Challenges are scoped by the composite
// (destination, transaction) key: lookups, replacements and deletions
// all use the same key, so concurrent challenges for one destination
// across different transactions never invalidate each other.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/errs"
)

// Key is the composite challenge key.
type Key struct {
	// Mobile is the destination number the code is dispatched to.
	Mobile string
	// TransactionID scopes the challenge to a single transaction.
	TransactionID string
}

// Challenge holds an active one-time code for a composite key.
type Challenge struct {
	Mobile        string
	TransactionID string
	Code          string
	CreatedAt     time.Time
}

// ChallengeStore is the injected concurrent store owning challenge
// state. Put has upsert semantics: a new challenge for an existing key
// replaces and invalidates the prior one. Implementations must
// serialize access per key.
type ChallengeStore interface {
	// Get returns the challenge for the key, or nil when absent.
	Get(ctx context.Context, key Key) (*Challenge, error)
	// Put upserts the challenge under its composite key.
	Put(ctx context.Context, ch Challenge) error
	// Delete removes the challenge for the key, if any.
	Delete(ctx context.Context, key Key) error
}

// Dispatcher delivers a one-time code to its destination. SMS delivery
// mechanics are external to this package.
type Dispatcher interface {
	SendCode(ctx context.Context, mobile, body string) error
}

// Manager coordinates challenge issuance and verification.
type Manager struct {
	store      ChallengeStore
	dispatcher Dispatcher
	ttl        time.Duration
	cooldown   time.Duration
	log        *zap.Logger

	now      func() time.Time
	generate func() (string, error)
}

// NewManager creates a Manager. Codes expire ttl after issuance and a
// second send for the same key within cooldown is rejected.
func NewManager(store ChallengeStore, dispatcher Dispatcher, ttl, cooldown time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		dispatcher: dispatcher,
		ttl:        ttl,
		cooldown:   cooldown,
		log:        log,
		now:        time.Now,
		generate:   generateCode,
	}
}

// Send generates a 6-digit code for the (mobile, transactionID) key,
// dispatches it, and upserts the challenge record. An unexpired prior
// challenge for the same key is replaced and thereby invalidated.
// A send within the cooldown window fails with OTPCooldown.
func (m *Manager) Send(ctx context.Context, mobile, transactionID string) error {
	if mobile == "" || transactionID == "" {
		return errs.Validation("mobile number and transaction ID are required")
	}

	key := Key{Mobile: mobile, TransactionID: transactionID}
	now := m.now()

	existing, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("lookup challenge: %w", err)
	}
	if existing != nil && now.Sub(existing.CreatedAt) < m.cooldown {
		return errs.OTPCooldown("Please wait before requesting a new OTP")
	}

	code, err := m.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	body := fmt.Sprintf(
		"Your OTP for online transaction is %s. Valid for %d minutes. Do not share it.",
		code, int(m.ttl.Minutes()),
	)
	if err := m.dispatcher.SendCode(ctx, mobile, body); err != nil {
		return errs.Internal("failed to dispatch OTP", err)
	}

	if err := m.store.Put(ctx, Challenge{
		Mobile:        mobile,
		TransactionID: transactionID,
		Code:          code,
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	m.log.Info("OTP challenge issued",
		zap.String("mobile", maskMobile(mobile)),
		zap.String("transaction_id", transactionID),
	)
	return nil
}

// Verify checks the code for the (mobile, transactionID) key. A missing
// challenge fails with OTPNotFound. A challenge older than the TTL is
// deleted and fails with OTPExpired. A wrong code fails with
// OTPMismatch and the challenge is retained for retry up to expiry.
// A correct code deletes the challenge and succeeds.
func (m *Manager) Verify(ctx context.Context, mobile, transactionID, code string) error {
	if mobile == "" || transactionID == "" {
		return errs.Validation("mobile number and transaction ID are required")
	}

	key := Key{Mobile: mobile, TransactionID: transactionID}

	ch, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil {
		return errs.OTPNotFound("Invalid OTP or expired")
	}

	if m.now().Sub(ch.CreatedAt) > m.ttl {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete expired challenge: %w", err)
		}
		return errs.OTPExpired("OTP expired")
	}

	if code != ch.Code {
		return errs.OTPMismatch("Invalid OTP")
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete verified challenge: %w", err)
	}
	m.log.Info("OTP challenge verified",
		zap.String("mobile", maskMobile(mobile)),
		zap.String("transaction_id", transactionID),
	)
	return nil
}

// generateCode produces a random 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// maskMobile keeps only the trailing digits of a destination number so
// logs never carry a full mobile number.
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return "****"
	}
	return "******" + mobile[len(mobile)-4:]
}
