package processor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpay/securegate/internal/models"
)

func TestSimulated_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("zero failure rate always succeeds", func(t *testing.T) {
		p := NewSimulated(0, 0, 0)
		for i := 0; i < 20; i++ {
			res, err := p.Process(ctx, 100, models.MethodCard)
			require.NoError(t, err)
			assert.Equal(t, models.StatusSuccess, res.Status)
		}
	})

	t.Run("certain failure rate always fails", func(t *testing.T) {
		p := NewSimulated(0, 0, 1)
		for i := 0; i < 20; i++ {
			res, err := p.Process(ctx, 100, models.MethodCard)
			require.NoError(t, err)
			assert.Equal(t, models.StatusFailed, res.Status)
		}
	})
}

func TestSimulated_LatencyWithinBounds(t *testing.T) {
	p := NewSimulated(5*time.Millisecond, 20*time.Millisecond, 0)

	res, err := p.Process(context.Background(), 100, models.MethodUPI)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Latency, 5*time.Millisecond)
	assert.LessOrEqual(t, res.Latency, 20*time.Millisecond)
}

func TestSimulated_ContextCancellation(t *testing.T) {
	p := NewSimulated(time.Second, time.Second, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Process(ctx, 100, models.MethodCard)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNewSimulated_SwappedBounds(t *testing.T) {
	p := NewSimulated(20*time.Millisecond, 5*time.Millisecond, 0)

	res, err := p.Process(context.Background(), 100, models.MethodCard)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, res.Latency)
}
