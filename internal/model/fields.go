package model

import (
	"sort"
	"strconv"
)

var fieldGetters = map[string]func(Record) string{
	"id":          func(r Record) string { return string(r.ID) },
	"kind":        func(r Record) string { return string(r.Kind) },
	"title":       func(r Record) string { return r.Title },
	"start":       func(r Record) string { return r.Start },
	"end":         func(r Record) string { return r.End },
	"date":        func(r Record) string { return DatePart(r.Start) },
	"dueDate":     func(r Record) string { return DatePart(r.Start) },
	"category":    func(r Record) string { return r.Category },
	"color":       func(r Record) string { return r.Color },
	"description": func(r Record) string { return r.Description },
	"allDay":      func(r Record) string { return strconv.FormatBool(r.AllDay) },
	"completed":   func(r Record) string { return strconv.FormatBool(r.Completed) },
}

// FieldValue returns the string form of a queryable field.
// "date" and "dueDate" are the YYYY-MM-DD part of start.
func FieldValue(r Record, field string) (string, bool) {
	get, ok := fieldGetters[field]
	if !ok {
		return "", false
	}
	return get(r), true
}

// QueryableFields lists the field names FieldValue understands, sorted.
func QueryableFields() []string {
	out := make([]string, 0, len(fieldGetters))
	for k := range fieldGetters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
