// Package views derives what a calendar screen shows from the canonical collections:
// the upcoming ticker, the task side panel and the calendar widget feed.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"planner-cli/internal/model"
)

const (
	DefaultUpcomingLimit    = 8
	DefaultUpcomingLookback = 24 * time.Hour

	TickerSeparator = " • "
	EmptyTicker     = "No upcoming items yet. Add one from the calendar."
	EmptyTasks      = "No tasks yet"
)

// Upcoming returns up to limit records starting no earlier than now-lookback, soonest first.
// Records whose start does not parse are skipped.
func Upcoming(records []model.Record, now time.Time, lookback time.Duration, limit int) []model.Record {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if lookback < 0 {
		lookback = 0
	}
	cutoff := now.Add(-lookback)

	out := []model.Record{}
	for _, r := range model.SortByStart(records) {
		t, ok := r.StartTime()
		if !ok || t.Before(cutoff) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

// TickerItem renders one entry as "Jan 2: Title (Category)". Tasks keep their title marker.
func TickerItem(r model.Record) string {
	date := r.Start
	if t, ok := r.StartTime(); ok {
		date = t.Format("Jan 2")
	}
	cat := r.Category
	if cat == "" {
		cat = model.DefaultCategory
	}
	return date + ": " + DisplayTitle(r) + " (" + cat + ")"
}

// Ticker joins the items into one line, truncated to width cells when width > 0.
func Ticker(items []model.Record, width int) string {
	line := EmptyTicker
	if len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, r := range items {
			parts = append(parts, TickerItem(r))
		}
		line = strings.Join(parts, TickerSeparator)
	}
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// DisplayTitle is the title as calendars show it: tasks carry the task marker.
func DisplayTitle(r model.Record) string {
	if r.Kind == model.KindTask {
		return model.TaskTitlePrefix + r.Title
	}
	return r.Title
}

// TaskRow is one line of the task side panel.
type TaskRow struct {
	ID        model.ID `json:"id"`
	Title     string   `json:"title"`
	Due       string   `json:"due"`
	Category  string   `json:"category"`
	Completed bool     `json:"completed"`
}

// TaskPanel lists tasks by due time. Date-only tasks show the date, timed tasks the minute.
func TaskPanel(tasks []model.Record) []TaskRow {
	out := []TaskRow{}
	for _, t := range model.SortByStart(tasks) {
		out = append(out, TaskRow{
			ID:        t.ID,
			Title:     t.Title,
			Due:       dueLabel(t.Start),
			Category:  t.Category,
			Completed: t.Completed,
		})
	}
	return out
}

func dueLabel(start string) string {
	t, err := model.ParseTime(start)
	if err != nil {
		return start
	}
	if model.IsDateOnly(start) {
		return t.Format("Mon Jan 2, 2006")
	}
	return t.Format("Mon Jan 2, 2006 15:04")
}

// CalendarEntry is the shape calendar widgets consume.
type CalendarEntry struct {
	ID              model.ID      `json:"id"`
	Title           string        `json:"title"`
	Start           string        `json:"start"`
	End             string        `json:"end,omitempty"`
	AllDay          bool          `json:"allDay"`
	BackgroundColor string        `json:"backgroundColor"`
	BorderColor     string        `json:"borderColor"`
	ExtendedProps   ExtendedProps `json:"extendedProps"`
}

type ExtendedProps struct {
	Type      model.Kind `json:"type"`
	Category  string     `json:"category"`
	Desc      string     `json:"desc"`
	Completed bool       `json:"completed,omitempty"`
}

// CalendarSource merges both collections into one widget feed ordered by start.
func CalendarSource(events, tasks []model.Record) []CalendarEntry {
	all := make([]model.Record, 0, len(events)+len(tasks))
	all = append(all, events...)
	all = append(all, tasks...)

	out := []CalendarEntry{}
	for _, r := range model.SortByStart(all) {
		e := CalendarEntry{
			ID:              r.ID,
			Title:           DisplayTitle(r),
			Start:           r.Start,
			AllDay:          r.AllDay,
			BackgroundColor: r.Color,
			BorderColor:     r.Color,
			ExtendedProps: ExtendedProps{
				Type:      r.Kind,
				Category:  r.Category,
				Desc:      r.Description,
				Completed: r.Completed,
			},
		}
		if !r.AllDay {
			e.End = r.End
		}
		out = append(out, e)
	}
	return out
}

// CategoryCounts tallies records per category, sorted by name.
func CategoryCounts(records []model.Record) []CategoryCount {
	m := map[string]int{}
	for _, r := range records {
		m[r.Category]++
	}
	out := make([]CategoryCount, 0, len(m))
	for name, n := range m {
		out = append(out, CategoryCount{Category: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
