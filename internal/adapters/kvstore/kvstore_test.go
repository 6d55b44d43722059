package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrasimirov/rota/internal/adapters/kvstore"
)

func storesUnderTest(t *testing.T) map[string]kvstore.Store {
	t.Helper()

	fileStore, err := kvstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	return map[string]kvstore.Store{
		"memory": kvstore.NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestStoreBasics(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

			require.NoError(t, store.Set(ctx, "a", "1"))
			require.NoError(t, store.Set(ctx, "a", "2"))

			got, err := store.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "2", got)

			require.NoError(t, store.Delete(ctx, "a"))
			_, err = store.Get(ctx, "a")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, store.Delete(ctx, "missing"))
		})
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "a", "1"))

			snapshot, err := store.Snapshot(ctx)
			require.NoError(t, err)
			snapshot["a"] = "tampered"

			got, err := store.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "1", got)
		})
	}
}

func TestReplaceAllSwapsEverything(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "old:1", "x"))
			require.NoError(t, store.Set(ctx, "old:2", "y"))

			incoming := map[string]string{"new:1": "a", "new:2": "b"}
			require.NoError(t, store.ReplaceAll(ctx, incoming))

			// No key of the previous snapshot survives.
			_, err := store.Get(ctx, "old:1")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

			got, err := store.Get(ctx, "new:1")
			require.NoError(t, err)
			assert.Equal(t, "a", got)

			// Mutating the caller's map afterwards has no effect.
			incoming["new:1"] = "tampered"
			got, err = store.Get(ctx, "new:1")
			require.NoError(t, err)
			assert.Equal(t, "a", got)
		})
	}
}

func TestFileStoreReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	first, err := kvstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "workout:day:1", `{"title":"Push"}`))

	second, err := kvstore.NewFileStore(path)
	require.NoError(t, err)

	got, err := second.Get(ctx, "workout:day:1")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Push"}`, got)
}

func TestFileStoreCrashDuringReplaceLeavesStoreUsable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := kvstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "old", "value"))

	// A crash between staging and swap leaves a .staging file behind.
	// Opening the store again must serve the old snapshot untouched.
	require.NoError(t, os.WriteFile(path+".staging", []byte(`{"new":"half"}`), 0o600))

	reopened, err := kvstore.NewFileStore(path)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = reopened.Get(ctx, "new")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := kvstore.NewFileStore(path)
	assert.Error(t, err)
}
