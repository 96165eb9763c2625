package otp

import (
	"context"
	"hash/fnv"
	"sync"
)

const storeShards = 16

type memShard struct {
	mu         sync.Mutex
	challenges map[Key]Challenge
}

// MemoryStore is an in-process ChallengeStore backed by a sharded map.
// Access to a given key is serialized by its shard mutex, so concurrent
// sends racing to overwrite the same challenge cannot lose updates.
type MemoryStore struct {
	shards [storeShards]*memShard
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &memShard{challenges: make(map[Key]Challenge)}
	}
	return s
}

// Get returns the challenge for the key, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Challenge, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ch, ok := sh.challenges[key]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

// Put upserts the challenge under its composite key.
func (s *MemoryStore) Put(_ context.Context, ch Challenge) error {
	key := Key{Mobile: ch.Mobile, TransactionID: ch.TransactionID}
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.challenges[key] = ch
	return nil
}

// Delete removes the challenge for the key, if any.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.challenges, key)
	return nil
}

func (s *MemoryStore) shardFor(key Key) *memShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.Mobile))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.TransactionID))
	return s.shards[h.Sum32()%storeShards]
}
