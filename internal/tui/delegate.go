package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"planner-cli/internal/model"
	"planner-cli/internal/views"
)

// recordItem adapts a record to bubbles/list.
type recordItem struct {
	rec model.Record
}

func (i recordItem) FilterValue() string {
	return i.rec.Title + " " + i.rec.Category + " " + model.DatePart(i.rec.Start)
}

func (i recordItem) Title() string { return i.rec.Title }

func (i recordItem) Description() string { return i.rec.Start }

// rowText is the one-line list form: "[x] 2024-01-10 09:00  Title  (Category)".
func (i recordItem) rowText() string {
	var b strings.Builder
	if i.rec.Kind == model.KindTask {
		if i.rec.Completed {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	}
	b.WriteString(when(i.rec))
	b.WriteString("  ")
	b.WriteString(i.rec.Title)
	if i.rec.Category != "" {
		b.WriteString("  (" + i.rec.Category + ")")
	}
	return b.String()
}

// when is the start as shown in lists: the date, plus the minute for timed records.
func when(r model.Record) string {
	t, ok := r.StartTime()
	if !ok {
		return r.Start
	}
	if r.AllDay || model.IsDateOnly(r.Start) {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

func toItems(recs []model.Record) []list.Item {
	items := make([]list.Item, 0, len(recs))
	for _, r := range model.SortByStart(recs) {
		items = append(items, recordItem{rec: r})
	}
	return items
}

// rowDelegate draws one line per record, padded or cut to the list width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		done:     lipgloss.NewStyle().Foreground(colorDone).Strikethrough(true),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(recordItem)
	if !ok {
		fmt.Fprint(w, xansi.Truncate(fmt.Sprint(item), contentW, ""))
		return
	}

	style := d.normal
	if it.rec.Completed {
		style = d.done
	}
	if index == m.Index() {
		style = d.selected
	}

	line := it.rowText()
	// Two cells for the swatch and its gap.
	textW := contentW - 2
	lineW := xansi.StringWidth(line)
	if lineW < textW {
		line += strings.Repeat(" ", textW-lineW)
	} else if lineW > textW {
		line = xansi.Truncate(line, textW, "…")
	}
	fmt.Fprint(w, swatch(it.rec.Color)+" "+style.Render(line))
}

// detail renders the side panel for r at width.
func detail(r model.Record, width int) string {
	lines := []string{
		styleHeading().Render(views.DisplayTitle(r)),
		"",
		"When:     " + when(r),
	}
	if r.End != "" && !r.AllDay {
		lines = append(lines, "Until:    "+r.End)
	}
	if r.AllDay {
		lines = append(lines, "All day")
	}
	lines = append(lines, "Category: "+r.Category)
	if r.Kind == model.KindTask {
		status := "open"
		if r.Completed {
			status = "done"
		}
		lines = append(lines, "Status:   "+status)
	}
	lines = append(lines, styleMuted().Render("id "+string(r.ID)))
	if desc := renderMarkdown(r.Description, width); desc != "" {
		lines = append(lines, "", desc)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
