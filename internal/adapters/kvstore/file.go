package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps the whole mapping in one JSON document on disk. Every
// mutation rewrites the document through a temp file and os.Rename, so a
// crash mid-write leaves the previous document intact. ReplaceAll stages
// the incoming snapshot to a separate path and only then renames it over
// the live file: the swap is the single atomic step.
type FileStore struct {
	path string
	data map[string]string

	mu sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store path cannot be empty")
	}

	s := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", path, err)
	}

	return s, nil
}

func (s *FileStore) stagingPath() string {
	return s.path + ".staging"
}

func (s *FileStore) writeDocument(target string, data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("install store file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.data[key]
	s.data[key] = value

	if err := s.writeDocument(s.path, s.data); err != nil {
		// Keep the in-memory view consistent with what is on disk.
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.data[key]
	if !existed {
		return nil
	}
	delete(s.data, key)

	if err := s.writeDocument(s.path, s.data); err != nil {
		s.data[key] = previous
		return err
	}
	return nil
}

func (s *FileStore) Snapshot(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]string, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (s *FileStore) ReplaceAll(ctx context.Context, data map[string]string) error {
	next := make(map[string]string, len(data))
	for k, v := range data {
		next[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staging := s.stagingPath()
	if err := s.writeDocument(staging, next); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	// Read the staged document back before the swap: a truncated or
	// corrupt staging file must never replace a good store.
	raw, err := os.ReadFile(staging)
	if err != nil {
		return fmt.Errorf("verify staged snapshot: %w", err)
	}
	var verify map[string]string
	if err := json.Unmarshal(raw, &verify); err != nil {
		return fmt.Errorf("verify staged snapshot: %w", err)
	}
	if len(verify) != len(next) {
		return errors.New("staged snapshot is incomplete")
	}

	if err := os.Rename(staging, s.path); err != nil {
		return fmt.Errorf("swap snapshot in: %w", err)
	}

	s.data = next
	return nil
}
