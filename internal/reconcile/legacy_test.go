package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

const legacyBody = `[
  {"id":"1704877200000","title":"Standup","start":"2024-01-10T09:00","allDay":false,
   "backgroundColor":"#0a4ed3","extendedProps":{"type":"event","category":"General","desc":""}},
  {"id":"1704877200001","title":"📝 Pay rent","start":"2024-02-01","allDay":true,
   "backgroundColor":"#ff0000","extendedProps":{"type":"task","category":"Home","desc":"by noon"}}
]`

func writeLegacy(t *testing.T, f fixture) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.fallback.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.fallback.Dir(), LegacyKey+".json"), []byte(legacyBody), 0o644))
}

func TestImportLegacy_SplitsByKind(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	writeLegacy(t, f)
	l := f.loader()

	n, err := l.ImportLegacy(ctx, store.NewID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events := l.Load(ctx, model.KindEvent)
	tasks := l.Load(ctx, model.KindTask)
	require.Len(t, events, 1)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.Equal(t, "by noon", tasks[0].Description)

	_, ok := f.fallback.Raw(LegacyKey)
	assert.False(t, ok, "legacy key is removed after import")
}

func TestImportLegacy_SkipsWhenCollectionsExist(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	l := f.loader()
	require.NoError(t, l.Save(ctx, model.KindEvent, []model.Record{rec("a", epoch)}))
	writeLegacy(t, f)

	n, err := l.ImportLegacy(ctx, store.NewID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []model.ID{"a"}, ids(l.Load(ctx, model.KindEvent)))
}

func TestImportLegacy_NoLegacyKey(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	n, err := f.loader().ImportLegacy(context.Background(), store.NewID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
