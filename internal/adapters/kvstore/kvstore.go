package kvstore

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is the flat string-keyed persistence every component writes
// through. Implementations must serialize mutations (single writer) and
// guarantee that ReplaceAll either installs the whole incoming snapshot
// or leaves the previous contents untouched.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Snapshot returns a copy of the entire store.
	Snapshot(ctx context.Context) (map[string]string, error)

	// ReplaceAll swaps the full contents of the store for the given
	// snapshot in one atomic step.
	ReplaceAll(ctx context.Context, data map[string]string) error
}
