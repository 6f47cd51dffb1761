package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
	"planner-cli/internal/testutil"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// downDurable fails every call, like an engine disabled by the host.
type downDurable struct {
	mu    sync.Mutex
	calls int
}

func (d *downDurable) Get(context.Context, string) (store.Entry, bool, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return store.Entry{}, false, fmt.Errorf("%w: disabled", store.ErrStoreUnavailable)
}

func (d *downDurable) PutAt(context.Context, string, []byte, time.Time) error {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return fmt.Errorf("%w: disabled", store.ErrStoreUnavailable)
}

func (d *downDurable) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// recorder is a Listener that keeps every notification.
type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	lost      []error
}

func (r *recorder) CollectionChanged(s Snapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

func (r *recorder) WriteLost(_ model.Kind, err error) {
	r.mu.Lock()
	r.lost = append(r.lost, err)
	r.mu.Unlock()
}

func (r *recorder) last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

type fixture struct {
	kv       *store.KV
	fallback *store.Fallback
	clock    *testutil.Clock
	dir      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	kv := store.NewKV(filepath.Join(dir, store.SQLiteFileName))
	t.Cleanup(func() { _ = kv.Close() })
	return fixture{
		kv:       kv,
		fallback: store.NewFallback(filepath.Join(dir, "fallback"), "test", 0),
		clock:    testutil.NewClock(epoch),
		dir:      dir,
	}
}

func (f fixture) loader(opts ...Option) *Loader {
	base := []Option{WithLogger(quietLogger()), WithClock(f.clock.Now)}
	return New(f.kv, f.fallback, append(base, opts...)...)
}

func (f fixture) fallbackOnlyLoader(d Durable) *Loader {
	return New(d, f.fallback, WithLogger(quietLogger()), WithClock(f.clock.Now))
}

func rec(id string, at time.Time) model.Record {
	return model.Record{
		ID:        model.ID(id),
		Kind:      model.KindEvent,
		Title:     "item " + id,
		Start:     "2024-01-10T09:00",
		Category:  model.DefaultCategory,
		Color:     model.DefaultColor,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func ids(recs []model.Record) []model.ID {
	out := make([]model.ID, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
