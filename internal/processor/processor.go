// Package processor models the payment-network round trip. The
// simulated implementation stands in for a real gateway and can be
// substituted without touching the fraud/auth/OTP pipeline.
package processor

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/qpay/securegate/internal/models"
)

// Result is the outcome of one processing round trip.
type Result struct {
	// Status is models.StatusSuccess or models.StatusFailed.
	Status string
	// Latency is the observed round-trip time.
	Latency time.Duration
}

// Processor executes a payment against the external network. Process
// must honor ctx: a cancelled or expired context aborts the round trip
// with the context error and no outcome.
type Processor interface {
	Process(ctx context.Context, amount float64, method models.PaymentMethod) (Result, error)
}

// Simulated is a Processor that sleeps for a bounded random latency and
// decides the outcome by weighted randomness to model network failure.
type Simulated struct {
	minLatency  time.Duration
	maxLatency  time.Duration
	failureRate float64
}

// NewSimulated creates a Simulated processor. failureRate is the
// probability in [0, 1] that a processed transaction fails.
func NewSimulated(minLatency, maxLatency time.Duration, failureRate float64) *Simulated {
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	return &Simulated{
		minLatency:  minLatency,
		maxLatency:  maxLatency,
		failureRate: failureRate,
	}
}

// Process waits for a random latency in [min, max] and returns the
// weighted random outcome. Cancellation during the wait aborts before
// any outcome is produced.
func (p *Simulated) Process(ctx context.Context, _ float64, _ models.PaymentMethod) (Result, error) {
	latency := p.minLatency
	if span := p.maxLatency - p.minLatency; span > 0 {
		latency += rand.N(span)
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-timer.C:
	}

	status := models.StatusSuccess
	if rand.Float64() < p.failureRate {
		status = models.StatusFailed
	}
	return Result{Status: status, Latency: latency}, nil
}
