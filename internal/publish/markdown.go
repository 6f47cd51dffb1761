package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"planner-cli/internal/model"
	"planner-cli/internal/views"
)

// UndatedHeading groups records whose start cannot be parsed.
const UndatedHeading = "Undated"

// RenderRecordMarkdown renders one record as a standalone page.
func RenderRecordMarkdown(r model.Record) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(r.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + string(r.ID))
	writeLn("- Kind: " + string(r.Kind))
	writeLn("- Start: " + r.Start)
	if r.End != "" && !r.AllDay {
		writeLn("- End: " + r.End)
	}
	if r.AllDay {
		writeLn("- All day: true")
	}
	if strings.TrimSpace(r.Category) != "" {
		writeLn("- Category: " + strings.TrimSpace(r.Category))
	}
	if strings.TrimSpace(r.Color) != "" {
		writeLn("- Color: " + strings.TrimSpace(r.Color))
	}
	if r.Kind == model.KindTask {
		writeLn(fmt.Sprintf("- Completed: %t", r.Completed))
	}
	if !r.CreatedAt.IsZero() {
		writeLn("- Created: " + r.CreatedAt.UTC().Format(time.RFC3339))
	}
	if !r.UpdatedAt.IsZero() {
		writeLn("- Updated: " + r.UpdatedAt.UTC().Format(time.RFC3339))
	}

	desc := strings.TrimSpace(r.Description)
	if desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

// RenderAgendaMarkdown renders events and tasks merged into one list, grouped by start
// date, each line linking to its record page.
func RenderAgendaMarkdown(title string, events, tasks []model.Record) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Agenda"
	}
	writeLn("# " + title)

	all := make([]model.Record, 0, len(events)+len(tasks))
	all = append(all, events...)
	all = append(all, tasks...)
	if len(all) == 0 {
		writeLn("")
		writeLn("_Nothing scheduled._")
		return buf.String()
	}

	current := "\x00"
	for _, r := range model.SortByStart(all) {
		day := model.DatePart(r.Start)
		if day == "" {
			day = UndatedHeading
		}
		if day != current {
			writeLn("")
			writeLn("## " + day)
			writeLn("")
			current = day
		}
		renderAgendaLine(&buf, r)
	}
	return buf.String()
}

func renderAgendaLine(buf *bytes.Buffer, r model.Record) {
	check := ""
	if r.Kind == model.KindTask {
		check = "[ ] "
		if r.Completed {
			check = "[x] "
		}
	}
	at := ""
	if t, ok := r.StartTime(); ok && !r.AllDay && !model.IsDateOnly(r.Start) {
		at = t.Format("15:04") + " "
	}
	cat := ""
	if c := strings.TrimSpace(r.Category); c != "" {
		cat = " (" + c + ")"
	}
	fmt.Fprintf(buf, "- %s%s[%s](%s)%s\n", check, at, views.DisplayTitle(r), recordPath(r), cat)
}

func recordPath(r model.Record) string {
	return "records/" + fileName(r.ID) + ".md"
}

// fileName keeps ids usable as file names; legacy ids are plain digits and generated ids
// are prefixed UUIDs, so only separators need replacing.
func fileName(id model.ID) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(string(id))
}
