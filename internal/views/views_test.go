package views

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-cli/internal/model"
	"planner-cli/internal/reconcile"
)

func event(id, title, start, cat string) model.Record {
	return model.Record{ID: model.ID(id), Kind: model.KindEvent, Title: title, Start: start, Category: cat, Color: model.DefaultColor}
}

func task(id, title, start string) model.Record {
	return model.Record{ID: model.ID(id), Kind: model.KindTask, Title: title, Start: start, Category: "Home", Color: "#ff0000"}
}

func TestUpcoming_WindowOrderAndLimit(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	recs := []model.Record{
		event("late", "Late", "2024-01-20T09:00", "General"),
		event("old", "Old", "2024-01-08T09:00", "General"),
		event("yesterday", "Yesterday", "2024-01-09T13:00", "General"),
		event("bad", "Bad", "whenever", "General"),
		task("soon", "Soon", "2024-01-11"),
	}

	got := Upcoming(recs, now, DefaultUpcomingLookback, 0)
	var ids []model.ID
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []model.ID{"yesterday", "soon", "late"}, ids)

	assert.Len(t, Upcoming(recs, now, DefaultUpcomingLookback, 2), 2)
	assert.Len(t, Upcoming(recs, now, 0, 0), 2, "no lookback drops yesterday")
}

func TestUpcoming_DefaultLimitIsEight(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	var recs []model.Record
	for i := 1; i <= 12; i++ {
		recs = append(recs, event("e", "x", time.Date(2024, 1, i, 9, 0, 0, 0, time.Local).Format("2006-01-02T15:04"), "General"))
	}
	assert.Len(t, Upcoming(recs, now, DefaultUpcomingLookback, 0), DefaultUpcomingLimit)
}

func TestTicker(t *testing.T) {
	assert.Equal(t, EmptyTicker, Ticker(nil, 0))

	items := []model.Record{
		event("a", "Standup", "2024-01-10T09:00", "Work"),
		task("b", "Pay rent", "2024-02-01"),
	}
	line := Ticker(items, 0)
	assert.Equal(t, "Jan 10: Standup (Work) • Feb 1: 📝 Pay rent (Home)", line)

	short := Ticker(items, 20)
	assert.LessOrEqual(t, ansi.StringWidth(short), 20)
	assert.True(t, strings.HasPrefix(short, "Jan 10: Standup"))
	assert.True(t, strings.HasSuffix(short, "…"))
}

func TestTickerItem_DefaultsCategory(t *testing.T) {
	assert.Equal(t, "Jan 10: Standup (General)", TickerItem(event("a", "Standup", "2024-01-10", "")))
}

func TestTaskPanel_SortsByDue(t *testing.T) {
	rows := TaskPanel([]model.Record{
		task("b", "Second", "2024-01-12T08:30"),
		task("a", "First", "2024-01-11"),
	})
	require.Len(t, rows, 2)
	assert.Equal(t, model.ID("a"), rows[0].ID)
	assert.Equal(t, "Thu Jan 11, 2024", rows[0].Due)
	assert.Equal(t, "Fri Jan 12, 2024 08:30", rows[1].Due)
	assert.Equal(t, "Second", rows[1].Title, "panel titles carry no marker")

	assert.NotNil(t, TaskPanel(nil))
}

func TestCalendarSource(t *testing.T) {
	e := event("e1", "Standup", "2024-01-10T09:00", "Work")
	e.End = "2024-01-10T09:15"
	tk := task("t1", "Pay rent", "2024-01-09")
	tk.AllDay = true
	tk.End = "2024-01-10"
	tk.Description = "by noon"

	got := CalendarSource([]model.Record{e}, []model.Record{tk})
	require.Len(t, got, 2)

	assert.Equal(t, CalendarEntry{
		ID:              "t1",
		Title:           "📝 Pay rent",
		Start:           "2024-01-09",
		AllDay:          true,
		BackgroundColor: "#ff0000",
		BorderColor:     "#ff0000",
		ExtendedProps:   ExtendedProps{Type: model.KindTask, Category: "Home", Desc: "by noon"},
	}, got[0])
	assert.Equal(t, "2024-01-10T09:15", got[1].End)
	assert.Equal(t, model.KindEvent, got[1].ExtendedProps.Type)
}

func TestCategoryCounts(t *testing.T) {
	got := CategoryCounts([]model.Record{
		event("a", "x", "2024-01-10", "Work"),
		event("b", "x", "2024-01-10", "Home"),
		event("c", "x", "2024-01-10", "Work"),
	})
	assert.Equal(t, []CategoryCount{{"Home", 1}, {"Work", 2}}, got)
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.Empty(t, tr.Records(model.KindEvent))

	var lostKind model.Kind
	tr.OnWriteLost(func(k model.Kind, _ error) { lostKind = k })

	recs := []model.Record{event("a", "Standup", "2024-01-10", "Work")}
	tr.CollectionChanged(reconcile.Snapshot{Kind: model.KindEvent, Records: recs, Source: reconcile.SourceDurable})
	tr.CollectionChanged(reconcile.Snapshot{Kind: model.KindTask, Records: []model.Record{task("b", "x", "2024-01-11")}})

	got := tr.Records(model.KindEvent)
	require.Len(t, got, 1)
	got[0].Title = "changed"
	assert.Equal(t, "Standup", tr.Records(model.KindEvent)[0].Title)
	assert.Equal(t, reconcile.SourceDurable, tr.Source(model.KindEvent))
	assert.Len(t, tr.All(), 2)

	tr.WriteLost(model.KindTask, errors.New("boom"))
	assert.Len(t, tr.Lost(), 1)
	assert.Equal(t, model.KindTask, lostKind)
}
