package kvstore

import (
	"context"
	"sync"
)

type MemoryStore struct {
	data map[string]string

	mu sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]string, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, data map[string]string) error {
	next := make(map[string]string, len(data))
	for k, v := range data {
		next[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The new map is fully built before the swap, so readers never see
	// a mix of old and new keys.
	s.data = next
	return nil
}
