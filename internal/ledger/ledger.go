// Package ledger is the boundary to the external transaction ledger.
// The write is an opaque external call; the stub implementation keeps
// the call shape without any chain semantics.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/models"
)

// Ledger records a transaction outcome on the external ledger and
// returns the opaque write reference.
type Ledger interface {
	Record(ctx context.Context, amount float64, method models.PaymentMethod, status string) (string, error)
}

// Stub simulates the ledger write and returns a hash-shaped reference.
type Stub struct {
	log *zap.Logger
}

// NewStub creates a Stub ledger.
func NewStub(log *zap.Logger) *Stub {
	return &Stub{log: log}
}

// Record returns a deterministic-length opaque reference for the write.
func (s *Stub) Record(_ context.Context, amount float64, method models.PaymentMethod, status string) (string, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%.2f|%s|%s|%d", amount, method, status, time.Now().UnixNano())))
	ref := "0x" + hex.EncodeToString(sum[:])
	s.log.Debug("ledger write simulated", zap.String("ref", ref))
	return ref, nil
}
