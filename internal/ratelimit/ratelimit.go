// Package ratelimit implements per-client sliding-window admission
// control. Windows are kept in a sharded map so concurrent requests from
// different clients never contend on the same lock.
package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const shardCount = 32

type shard struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// Gate is a sliding-window rate limiter keyed by client identity.
// It runs ahead of authentication and must not depend on identity
// resolution, so the key is the client network address.
type Gate struct {
	limit  int
	window time.Duration
	shards [shardCount]*shard

	now func() time.Time
}

// New creates a Gate admitting at most limit requests per client within
// the trailing window.
func New(limit int, window time.Duration) *Gate {
	g := &Gate{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for i := range g.shards {
		g.shards[i] = &shard{windows: make(map[string][]time.Time)}
	}
	return g
}

// Admit records a request from the given client if it is within the
// limit. When the client is over the limit the request timestamp is NOT
// admitted, and retryAfter reports how long until the oldest window
// entry slides out.
func (g *Gate) Admit(clientID string) (admitted bool, retryAfter time.Duration) {
	now := g.now()
	s := g.shardFor(clientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.windows[clientID], now.Add(-g.window))
	if len(kept) >= g.limit {
		s.windows[clientID] = kept
		return false, kept[0].Add(g.window).Sub(now)
	}

	s.windows[clientID] = append(kept, now)
	return true, 0
}

// Sweep removes windows whose newest entry has slid out of the horizon,
// bounding memory against unbounded client identities.
func (g *Gate) Sweep() int {
	cutoff := g.now().Add(-g.window)
	removed := 0
	for _, s := range g.shards {
		s.mu.Lock()
		for id, w := range s.windows {
			if len(w) == 0 || w[len(w)-1].Before(cutoff) {
				delete(s.windows, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// StartSweeper runs Sweep at the given interval until ctx is cancelled.
func (g *Gate) StartSweeper(ctx context.Context, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := g.Sweep(); removed > 0 {
					log.Debug("swept idle rate-limit windows", zap.Int("removed", removed))
				}
			}
		}
	}()
}

func (g *Gate) shardFor(clientID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return g.shards[h.Sum32()%shardCount]
}

// prune drops timestamps at or before the cutoff. Entries are appended
// in order, so the first kept index bounds the slice.
func prune(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append([]time.Time(nil), window[i:]...)
}
