package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type Kind string

const (
	KindEvent Kind = "event"
	KindTask  Kind = "task"
)

const (
	DefaultCategory = "General"
	DefaultColor    = "#0a4ed3"
)

// Kinds lists every collection kind in display order.
func Kinds() []Kind { return []Kind{KindEvent, KindTask} }

func (k Kind) Valid() bool { return k == KindEvent || k == KindTask }

// Collection is the persisted key for the kind ("events" / "tasks").
func (k Kind) Collection() string {
	switch k {
	case KindTask:
		return "tasks"
	default:
		return "events"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "event", "events":
		return KindEvent, nil
	case "task", "tasks":
		return KindTask, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want event|task)", s)
	}
}

// ID identifies a record within its collection.
//
// Older stores wrote auto-incremented integer ids; those decode into their decimal string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Record is a user-created event or task.
type Record struct {
	ID          ID        `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Start       string    `json:"start"`
	End         string    `json:"end,omitempty"`
	AllDay      bool      `json:"allDay"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Defaults holds the values filled into blank optional fields.
type Defaults struct {
	Category string
	Color    string
}

func (d Defaults) orBuiltin() Defaults {
	if strings.TrimSpace(d.Category) == "" {
		d.Category = DefaultCategory
	}
	if strings.TrimSpace(d.Color) == "" {
		d.Color = DefaultColor
	}
	return d
}

// Normalize trims text fields, NFC-normalizes the title and fills defaults.
// Events never carry a completed flag.
func (r *Record) Normalize(d Defaults) {
	d = d.orBuiltin()
	r.Title = norm.NFC.String(strings.TrimSpace(r.Title))
	r.Start = strings.TrimSpace(r.Start)
	r.End = strings.TrimSpace(r.End)
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		r.Category = d.Category
	}
	r.Color = strings.TrimSpace(r.Color)
	if r.Color == "" {
		r.Color = d.Color
	}
	if r.Kind == KindEvent {
		r.Completed = false
	}
}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid kind %q", r.Kind)
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title cannot be empty")
	}
	start, err := ParseTime(r.Start)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	if r.End != "" && !r.AllDay {
		end, err := ParseTime(r.End)
		if err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
		if end.Before(start) {
			return errors.New("end cannot be before start")
		}
	}
	if r.Color != "" && !hexColorRe.MatchString(r.Color) {
		return fmt.Errorf("invalid color %q (want #rgb or #rrggbb)", r.Color)
	}
	return nil
}

// StartTime parses Start; ok is false when it does not parse.
func (r Record) StartTime() (time.Time, bool) {
	t, err := ParseTime(r.Start)
	return t, err == nil
}

// Clone returns an independent copy of records. A nil input yields an empty slice.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

func IndexOf(records []Record, id ID) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
