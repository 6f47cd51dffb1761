package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	kv := NewKV(filepath.Join(t.TempDir(), SQLiteFileName))
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV_OpenCreatesDatabase(t *testing.T) {
	t.Parallel()
	kv := newTestKV(t)

	require.NoError(t, kv.Open(context.Background()))
	_, err := os.Stat(kv.Path())
	assert.NoError(t, err, "database file should exist after Open")
}

func TestKV_OpenIsIdempotentAndConcurrent(t *testing.T) {
	t.Parallel()
	kv := newTestKV(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- kv.Open(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, kv.Put(ctx, "events", []byte(`[]`)))
	require.NoError(t, kv.Open(ctx))
	_, ok, err := kv.Get(ctx, "events")
	require.NoError(t, err)
	assert.True(t, ok, "reopening must not recreate the table")
}

func TestKV_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), SQLiteFileName)
	ctx := context.Background()

	kv1 := NewKV(path)
	require.NoError(t, kv1.Put(ctx, "tasks", []byte(`[{"id":"tsk-1"}]`)))
	require.NoError(t, kv1.Close())

	kv2 := NewKV(path)
	defer kv2.Close()
	e, ok, err := kv2.Get(ctx, "tasks")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"tsk-1"}]`, string(e.Value))
}

func TestKV_GetPutDeleteClear(t *testing.T) {
	t.Parallel()
	kv := newTestKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "events")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is absent, not an error")

	at := time.Date(2024, 1, 10, 9, 0, 0, 123, time.UTC)
	require.NoError(t, kv.PutAt(ctx, "events", []byte(`[1]`), at))
	require.NoError(t, kv.Put(ctx, "tasks", []byte(`[2]`)))

	e, ok, err := kv.Get(ctx, "events")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(e.Value))
	assert.True(t, at.Equal(e.UpdatedAt))

	require.NoError(t, kv.PutAt(ctx, "events", []byte(`[3]`), at.Add(time.Second)))
	e, _, err = kv.Get(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(e.Value))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "tasks"}, keys)

	require.NoError(t, kv.Delete(ctx, "events"))
	require.NoError(t, kv.Delete(ctx, "events"), "deleting twice is fine")
	_, ok, err = kv.Get(ctx, "events")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Clear(ctx))
	keys, err = kv.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKV_UnavailableWhenPathUnusable(t *testing.T) {
	t.Parallel()
	// A regular file where the database directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	kv := NewKV(filepath.Join(blocker, SQLiteFileName))
	defer kv.Close()
	ctx := context.Background()

	assert.ErrorIs(t, kv.Open(ctx), ErrStoreUnavailable)
	_, _, err := kv.Get(ctx, "events")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, kv.Put(ctx, "events", []byte(`[]`)), ErrStoreUnavailable)
}

func TestKV_CloseIsSafeTwice(t *testing.T) {
	t.Parallel()
	kv := newTestKV(t)
	require.NoError(t, kv.Open(context.Background()))
	require.NoError(t, kv.Close())
	require.NoError(t, kv.Close())
}
