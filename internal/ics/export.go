// Package ics exports the collections as an iCalendar feed: events become VEVENTs and
// tasks become VTODOs.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"planner-cli/internal/model"
)

const (
	DefaultProductID = "-//planner-cli//planner//EN"
	uidDomain        = "planner.local"
)

type Options struct {
	ProductID string
	// Stamp is written as DTSTAMP on every component; zero means time.Now.
	Stamp time.Time
}

// Export writes events and tasks as one calendar. Records whose start does not parse are skipped
// and counted in the returned total of skipped records.
func Export(w io.Writer, events, tasks []model.Record, opts Options) (int, error) {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)

	skipped := 0
	for _, r := range model.SortByStart(events) {
		if !addEvent(cal, r, opts.Stamp) {
			skipped++
		}
	}
	for _, r := range model.SortByStart(tasks) {
		if !addTodo(cal, r, opts.Stamp) {
			skipped++
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return skipped, fmt.Errorf("write ics: %w", err)
	}
	return skipped, nil
}

func uid(r model.Record) string {
	return string(r.ID) + "@" + uidDomain
}

func addEvent(cal *ical.Calendar, r model.Record, stamp time.Time) bool {
	start, err := model.ParseTime(r.Start)
	if err != nil {
		return false
	}
	ev := cal.AddEvent(uid(r))
	ev.SetDtStampTime(stamp)
	ev.SetSummary(r.Title)
	if r.Description != "" {
		ev.SetDescription(r.Description)
	}
	if r.Category != "" {
		ev.SetProperty(ical.ComponentPropertyCategories, r.Category)
	}
	if r.Color != "" {
		ev.SetProperty(ical.ComponentPropertyColor, r.Color)
	}

	if r.AllDay {
		ev.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day events.
		end := start.AddDate(0, 0, 1)
		if e, err := model.ParseTime(r.End); err == nil && e.After(start) {
			end = e
		}
		ev.SetAllDayEndAt(end)
		return true
	}

	ev.SetStartAt(start)
	if e, err := model.ParseTime(r.End); err == nil && e.After(start) {
		ev.SetEndAt(e)
	}
	return true
}

func addTodo(cal *ical.Calendar, r model.Record, stamp time.Time) bool {
	due, err := model.ParseTime(r.Start)
	if err != nil {
		return false
	}
	td := cal.AddTodo(uid(r))
	td.SetDtStampTime(stamp)
	td.SetSummary(r.Title)
	if r.Description != "" {
		td.SetDescription(r.Description)
	}
	if r.Category != "" {
		td.SetProperty(ical.ComponentPropertyCategories, r.Category)
	}
	if r.AllDay || model.IsDateOnly(r.Start) {
		td.SetProperty(ical.ComponentPropertyDue, due.Format("20060102"), ical.WithValue(string(ical.ValueDataTypeDate)))
	} else {
		td.SetProperty(ical.ComponentPropertyDue, due.UTC().Format("20060102T150405Z"))
	}
	status := "NEEDS-ACTION"
	if r.Completed {
		status = "COMPLETED"
	}
	td.SetProperty(ical.ComponentPropertyStatus, status)
	return true
}
