package cli

import (
	"strconv"
	"strings"

	"planner-cli/internal/format"
	"planner-cli/internal/model"
	"planner-cli/internal/planner"
	"planner-cli/internal/views"
)

type recordList []model.Record

func (l recordList) Text() string {
	if len(l) == 0 {
		return "(none)"
	}
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{string(r.ID), r.Start, r.End, views.DisplayTitle(r), r.Category, doneMark(r)})
	}
	return format.Table([]string{"ID", "START", "END", "TITLE", "CATEGORY", "DONE"}, rows)
}

func doneMark(r model.Record) string {
	if r.Kind != model.KindTask {
		return ""
	}
	if r.Completed {
		return "x"
	}
	return " "
}

type recordView model.Record

func (r recordView) Text() string {
	rec := model.Record(r)
	lines := []string{
		"id:          " + string(rec.ID),
		"kind:        " + string(rec.Kind),
		"title:       " + rec.Title,
		"start:       " + rec.Start,
	}
	if rec.End != "" {
		lines = append(lines, "end:         "+rec.End)
	}
	lines = append(lines,
		"allDay:      "+strconv.FormatBool(rec.AllDay),
		"category:    "+rec.Category,
		"color:       "+rec.Color,
	)
	if rec.Kind == model.KindTask {
		lines = append(lines, "completed:   "+strconv.FormatBool(rec.Completed))
	}
	if rec.Description != "" {
		lines = append(lines, "description: "+rec.Description)
	}
	return strings.Join(lines, "\n")
}

type deleteResult struct {
	ID      model.ID `json:"id"`
	Deleted bool     `json:"deleted"`
}

func (d deleteResult) Text() string {
	if d.Deleted {
		return "deleted " + string(d.ID)
	}
	return "no such record: " + string(d.ID)
}

type clearResult struct {
	Collection string `json:"collection"`
	Cleared    bool   `json:"cleared"`
}

func (c clearResult) Text() string { return "cleared " + c.Collection }

type upcomingResult struct {
	Items  []model.Record `json:"items"`
	Ticker string         `json:"ticker"`
}

func (u upcomingResult) Text() string { return u.Ticker }

type taskPanel []views.TaskRow

func (p taskPanel) Text() string {
	if len(p) == 0 {
		return views.EmptyTasks
	}
	rows := make([][]string, 0, len(p))
	for _, t := range p {
		done := " "
		if t.Completed {
			done = "x"
		}
		rows = append(rows, []string{"[" + done + "]", t.Title, t.Due, string(t.ID)})
	}
	return format.Table([]string{"", "TASK", "DUE", "ID"}, rows)
}

type statusView planner.Status

func (s statusView) Text() string {
	rows := make([][]string, 0, len(s.Collections))
	for _, c := range s.Collections {
		rows = append(rows, []string{c.Collection, string(c.State.Phase), string(c.State.Source), strconv.Itoa(c.State.Count)})
	}
	head := []string{"dir: " + s.Dir}
	if s.DurableDown {
		head = append(head, "durable store: unavailable (fallback only)")
	} else {
		head = append(head, "durable store: "+s.DurablePath)
	}
	head = append(head, "fallback store: "+s.FallbackDir)
	return strings.Join(head, "\n") + "\n" + format.Table([]string{"COLLECTION", "PHASE", "SOURCE", "COUNT"}, rows)
}
