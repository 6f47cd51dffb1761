package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	layoutDate       = "2006-01-02"
	layoutMinute     = "2006-01-02T15:04"
	layoutSecond     = "2006-01-02T15:04:05"
	layoutZonedNanos = time.RFC3339Nano
)

// Accepted in order; zoned first so "Z"/offset suffixes keep their meaning.
var layouts = []string{layoutZonedNanos, layoutSecond, layoutMinute, layoutDate}

// ParseTime parses an ISO-8601 date or date-time. Values without a zone are read in local time.
func ParseTime(s string) (time.Time, error) {
	t, _, err := parseLayout(s)
	return t, err
}

func parseLayout(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if layout == layoutZonedNanos {
			if t, err := time.Parse(layout, s); err == nil {
				return t, layout, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS][zone])", s)
}

// IsDateOnly reports whether s is a bare YYYY-MM-DD date.
func IsDateOnly(s string) bool {
	_, layout, err := parseLayout(s)
	return err == nil && layout == layoutDate
}

// DatePart returns the YYYY-MM-DD prefix of a valid date or date-time, or "" when s does not parse.
func DatePart(s string) string {
	t, layout, err := parseLayout(s)
	if err != nil {
		return ""
	}
	if layout == layoutZonedNanos {
		// Keep the written calendar date, not the local-time conversion.
		return strings.TrimSpace(s)[:len(layoutDate)]
	}
	return t.Format(layoutDate)
}

// ShiftEnd moves end by the same amount start moves to newStart, formatted like newStart.
// An empty end stays empty.
func ShiftEnd(start, end, newStart string) (string, error) {
	if strings.TrimSpace(end) == "" {
		return "", nil
	}
	s, err := ParseTime(start)
	if err != nil {
		return "", err
	}
	e, err := ParseTime(end)
	if err != nil {
		return "", err
	}
	ns, layout, err := parseLayout(newStart)
	if err != nil {
		return "", err
	}
	return ns.Add(e.Sub(s)).Format(layout), nil
}

// AddDays moves s by days calendar days, keeping its layout.
func AddDays(s string, days int) (string, error) {
	t, layout, err := parseLayout(s)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(layout), nil
}

// SortByStart returns a copy of records ordered ascending by start.
// Unparsable starts sort last; ties keep their stored order.
func SortByStart(records []Record) []Record {
	out := Clone(records)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].StartTime()
		b, bok := out[j].StartTime()
		switch {
		case aok && bok:
			return a.Before(b)
		case aok:
			return true
		default:
			return false
		}
	})
	return out
}
