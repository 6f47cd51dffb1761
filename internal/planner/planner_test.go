package planner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-cli/internal/model"
	"planner-cli/internal/reconcile"
	"planner-cli/internal/store"
	"planner-cli/internal/testutil"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type collector struct {
	mu    sync.Mutex
	snaps map[model.Kind][]reconcile.Snapshot
	lost  int
}

func (c *collector) CollectionChanged(s reconcile.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snaps == nil {
		c.snaps = map[model.Kind][]reconcile.Snapshot{}
	}
	c.snaps[s.Kind] = append(c.snaps[s.Kind], s)
}

func (c *collector) WriteLost(model.Kind, error) {
	c.mu.Lock()
	c.lost++
	c.mu.Unlock()
}

func (c *collector) latest(kind model.Kind) []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snaps[kind]
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1].Records
}

func open(t *testing.T, dir string, mutate ...func(*Options)) *Planner {
	t.Helper()
	opts := Options{
		Dir:    dir,
		Origin: "test",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    testutil.NewClock(epoch).Now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	p, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Options{Dir: "  "})
	assert.Error(t, err)
}

func TestInit_PublishesEmptyCollections(t *testing.T) {
	t.Parallel()
	p := open(t, t.TempDir())
	c := &collector{}
	p.Subscribe(c)

	require.NoError(t, p.Init(context.Background()))
	for _, kind := range model.Kinds() {
		assert.NotNil(t, c.latest(kind))
		assert.Empty(t, c.latest(kind))
		st := p.State(kind)
		assert.Equal(t, reconcile.PhaseReady, st.Phase)
		assert.Equal(t, reconcile.SourceEmpty, st.Source)
	}
}

func TestPlanner_StandupSurvivesRestart(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	p := open(t, dir)
	require.NoError(t, p.Init(ctx))
	id, err := p.Events().Add(ctx, model.Record{Title: "Standup", Start: "2024-01-10T09:00"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	again := open(t, dir)
	c := &collector{}
	again.Subscribe(c)
	require.NoError(t, again.Init(ctx))

	got := c.latest(model.KindEvent)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, reconcile.SourceDurable, again.State(model.KindEvent).Source)
}

func TestPlanner_ClearAllEmptiesBothCollections(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	p := open(t, dir)
	require.NoError(t, p.Init(ctx))
	_, err := p.Events().Add(ctx, model.Record{Title: "Standup", Start: "2024-01-10T09:00"})
	require.NoError(t, err)
	_, err = p.Tasks().Add(ctx, model.Record{Title: "Pay rent", Start: "2024-02-01"})
	require.NoError(t, err)

	c := &collector{}
	p.Subscribe(c)
	require.NoError(t, p.ClearAll(ctx))
	for _, kind := range model.Kinds() {
		assert.NotNil(t, c.latest(kind), kind)
		assert.Empty(t, c.latest(kind), kind)
	}
	require.NoError(t, p.Close())

	again := open(t, dir)
	require.NoError(t, again.Init(ctx))
	assert.Empty(t, again.Events().GetAll(ctx))
	assert.Empty(t, again.Tasks().GetAll(ctx))
}

func TestPlanner_FallbackOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	p := open(t, dir, func(o *Options) { o.DisableDurable = true })
	require.NoError(t, p.Init(ctx))
	_, err := p.Tasks().Add(ctx, model.Record{Title: "Pay rent", Start: "2024-02-01", AllDay: true})
	require.NoError(t, err)

	st := p.State(model.KindTask)
	assert.True(t, st.DurableDown)
	assert.Equal(t, reconcile.SourceFallback, st.Source)
	_, err = os.Stat(filepath.Join(dir, store.SQLiteFileName))
	assert.True(t, os.IsNotExist(err), "no database file is created")

	// A later run with the durable store enabled still sees the fallback-only write.
	again := open(t, dir)
	require.NoError(t, again.Init(ctx))
	tasks := again.Tasks().GetAll(ctx)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay rent", tasks[0].Title)
}

func TestPlanner_InitImportsLegacyList(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	legacyDir := filepath.Join(dir, FallbackDirName, "test")
	require.NoError(t, os.MkdirAll(legacyDir, 0o755))
	body := `[{"id":1,"title":"Standup","start":"2024-01-10T09:00","extendedProps":{"type":"event"}},
	          {"id":2,"title":"📝 Call bank","start":"2024-01-11","allDay":true,"extendedProps":{"type":"task","category":"Home"}}]`
	require.NoError(t, os.WriteFile(filepath.Join(legacyDir, reconcile.LegacyKey+".json"), []byte(body), 0o644))

	p := open(t, dir)
	require.NoError(t, p.Init(context.Background()))

	tasks := p.Tasks().GetAll(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, model.ID("2"), tasks[0].ID)
	assert.Equal(t, "Call bank", tasks[0].Title)
	assert.Equal(t, "Home", tasks[0].Category)
	assert.Len(t, p.Events().GetAll(context.Background()), 1)
}

func TestPlanner_SelectRange(t *testing.T) {
	p := open(t, t.TempDir(), func(o *Options) { o.Defaults = model.Defaults{Category: "Work"} })
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	timed := p.SelectRange(start, start.Add(30*time.Minute), false, model.KindEvent)
	assert.Equal(t, "2024-01-10T09:00", timed.Start)
	assert.Equal(t, "2024-01-10T09:30", timed.End)
	assert.Equal(t, "Work", timed.Category)
	assert.Empty(t, timed.ID, "drafts are not saved")

	allDay := p.SelectRange(start, start.Add(24*time.Hour), true, model.KindTask)
	assert.Equal(t, "2024-01-10", allDay.Start)
	assert.Empty(t, allDay.End)
	assert.Equal(t, model.KindTask, allDay.Kind)
}

func TestPlanner_ActivateAndDrop(t *testing.T) {
	t.Parallel()
	p := open(t, t.TempDir())
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	id, err := p.Events().Add(ctx, model.Record{Title: "Review", Start: "2024-01-10T09:00", End: "2024-01-10T10:30"})
	require.NoError(t, err)

	got, ok := p.Activate(ctx, model.KindEvent, id)
	require.True(t, ok)
	assert.Equal(t, "Review", got.Title)

	moved, ok, err := p.Drop(ctx, model.KindEvent, id, "2024-01-12T14:00")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-01-12T14:00", moved.Start)
	assert.Equal(t, "2024-01-12T15:30", moved.End)

	_, ok, err = p.Drop(ctx, model.KindEvent, "evt-missing", "2024-01-12T14:00")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok = p.Activate(ctx, model.KindTask, id)
	assert.False(t, ok, "ids are scoped to their collection")
}

func TestPlanner_Status(t *testing.T) {
	t.Parallel()
	p := open(t, t.TempDir())
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))
	_, err := p.Events().Add(ctx, model.Record{Title: "Standup", Start: "2024-01-10T09:00"})
	require.NoError(t, err)

	st := p.Status(ctx)
	assert.False(t, st.DurableDown)
	assert.Equal(t, []string{"events"}, st.DurableKeys)
	require.Len(t, st.Collections, 2)
	assert.Equal(t, "events", st.Collections[0].Collection)
	assert.Equal(t, 1, st.Collections[0].State.Count)
	assert.Equal(t, "tasks", st.Collections[1].Collection)
}
