package model

import (
	"encoding/json"
	"strings"
)

// TaskTitlePrefix marked tasks in the single-array layout, where events and tasks shared one list.
const TaskTitlePrefix = "\U0001F4DD "

// legacyProps is the calendar-widget shape older saves used for per-record metadata.
type legacyProps struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	Desc     string `json:"desc,omitempty"`
}

// UnmarshalJSON accepts both the canonical shape and the calendar-widget shape
// ({backgroundColor, extendedProps:{type, category, desc}}) and normalizes the latter.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var w struct {
		plain
		BackgroundColor string       `json:"backgroundColor,omitempty"`
		ExtendedProps   *legacyProps `json:"extendedProps,omitempty"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Record(w.plain)

	if w.ExtendedProps != nil {
		if r.Kind == "" {
			if k, err := ParseKind(w.ExtendedProps.Type); err == nil {
				r.Kind = k
			}
		}
		if r.Category == "" {
			r.Category = w.ExtendedProps.Category
		}
		if r.Description == "" {
			r.Description = w.ExtendedProps.Desc
		}
	}
	if r.Color == "" {
		r.Color = w.BackgroundColor
	}
	if r.Kind == KindTask {
		r.Title = strings.TrimPrefix(r.Title, TaskTitlePrefix)
	}
	return nil
}
