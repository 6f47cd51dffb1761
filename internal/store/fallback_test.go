package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-cli/internal/model"
)

func sampleRecords(n int) []model.Record {
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Record{
			ID:       model.ID("evt-" + strings.Repeat("x", i+1)),
			Kind:     model.KindEvent,
			Title:    "Standup",
			Start:    "2024-01-10T09:00",
			Category: model.DefaultCategory,
			Color:    model.DefaultColor,
		})
	}
	return out
}

func TestFallback_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 0)

	want := sampleRecords(2)
	require.True(t, f.SaveList("events", want))
	assert.NoError(t, f.LastErr())
	assert.Equal(t, want, f.LoadList("events"))
}

func TestFallback_MissingKeyIsEmpty(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 0)

	got := f.LoadList("tasks")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	_, _, ok := f.Lookup("tasks")
	assert.False(t, ok)
}

func TestFallback_CorruptDataIsEmpty(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 0)
	require.NoError(t, os.MkdirAll(f.Dir(), 0o755))

	for _, body := range []string{`{not json`, `{"id":"x"}`, `null`, `"events"`} {
		require.NoError(t, os.WriteFile(filepath.Join(f.Dir(), "events.json"), []byte(body), 0o644))
		assert.Empty(t, f.LoadList("events"), body)
		_, _, ok := f.Lookup("events")
		assert.False(t, ok, body)
	}
}

func TestFallback_QuotaExceeded(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 600)

	require.True(t, f.SaveList("events", sampleRecords(1)))
	ok := f.SaveList("tasks", sampleRecords(8))
	assert.False(t, ok)
	assert.ErrorIs(t, f.LastErr(), ErrQuotaExceeded)
	assert.Equal(t, sampleRecords(1), f.LoadList("events"), "existing data survives a rejected write")

	// Rewriting an existing key only counts the other keys against the quota.
	assert.True(t, f.SaveList("events", sampleRecords(2)))
}

func TestFallback_DisabledNeverPanics(t *testing.T) {
	t.Parallel()
	f := NewFallback("", "localhost", 0)

	assert.False(t, f.Available())
	assert.False(t, f.SaveList("events", sampleRecords(1)))
	assert.ErrorIs(t, f.LastErr(), ErrStoreUnavailable)
	assert.Empty(t, f.LoadList("events"))
	assert.False(t, f.Remove("events"))
}

func TestFallback_StampsWriteTime(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 0)

	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	require.True(t, f.SaveListAt("events", sampleRecords(1), at))
	_, got, ok := f.Lookup("events")
	require.True(t, ok)
	assert.True(t, at.Equal(got), "got %s", got)
}

func TestFallback_OriginScoping(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	a := NewFallback(root, "https://a.example", 0)
	b := NewFallback(root, "https://b.example", 0)

	require.True(t, a.SaveList("events", sampleRecords(1)))
	assert.Empty(t, b.LoadList("events"))
	assert.NotEqual(t, a.Dir(), b.Dir())
	assert.True(t, strings.HasPrefix(a.Dir(), root))
}

func TestFallback_Remove(t *testing.T) {
	t.Parallel()
	f := NewFallback(t.TempDir(), "localhost", 0)
	require.True(t, f.SaveList("events", sampleRecords(1)))

	assert.True(t, f.Remove("events"))
	assert.True(t, f.Remove("events"))
	_, ok := f.Raw("events")
	assert.False(t, ok)
}
