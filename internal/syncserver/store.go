package syncserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// BlobStore keeps uploaded snapshots under their sync identifier. The
// payload is opaque: last write for an id wins, nothing is merged.
type BlobStore interface {
	Put(ctx context.Context, syncID string, snapshot map[string]string) error
	Get(ctx context.Context, syncID string) (map[string]string, error)
}

type MemoryBlobStore struct {
	snapshots map[string]map[string]string

	mu sync.RWMutex
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		snapshots: make(map[string]map[string]string),
	}
}

func (s *MemoryBlobStore) Put(ctx context.Context, syncID string, snapshot map[string]string) error {
	clone := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		clone[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[syncID] = clone
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, syncID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[syncID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	clone := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		clone[k] = v
	}
	return clone, nil
}

// RedisBlobStore persists snapshots as JSON values. A zero ttl keeps
// them forever.
type RedisBlobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBlobStore(rdb *redis.Client, ttl time.Duration) *RedisBlobStore {
	return &RedisBlobStore{rdb: rdb, ttl: ttl}
}

func (s *RedisBlobStore) key(syncID string) string {
	return "snapshot:" + syncID
}

func (s *RedisBlobStore) Put(ctx context.Context, syncID string, snapshot map[string]string) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.rdb.Set(ctx, s.key(syncID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (s *RedisBlobStore) Get(ctx context.Context, syncID string) (map[string]string, error) {
	val, err := s.rdb.Get(ctx, s.key(syncID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot map[string]string
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

// NewRedisClient connects and pings so misconfiguration fails at startup,
// not on the first upload.
func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}
