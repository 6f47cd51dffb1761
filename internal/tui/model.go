package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planner-cli/internal/model"
	"planner-cli/internal/planner"
	"planner-cli/internal/reconcile"
	"planner-cli/internal/store"
	"planner-cli/internal/views"
)

type Options struct {
	UpcomingLimit  int
	UpcomingWindow time.Duration
	Now            func() time.Time
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeConfirmDelete
	modeConfirmClear
)

// Messages.
type (
	snapshotMsg  reconcile.Snapshot
	writeLostMsg struct {
		kind model.Kind
		err  error
	}
	initDoneMsg struct{ err error }
	opDoneMsg   struct {
		status string
		err    error
	}
)

// bridge is the planner listener that forwards notifications into the program loop.
type bridge struct {
	send func(tea.Msg)
}

func (b bridge) CollectionChanged(s reconcile.Snapshot) { b.send(snapshotMsg(s)) }

func (b bridge) WriteLost(kind model.Kind, err error) { b.send(writeLostMsg{kind: kind, err: err}) }

type appModel struct {
	ctx  context.Context
	p    *planner.Planner
	opts Options

	width  int
	height int

	active  model.Kind
	lists   map[model.Kind]list.Model
	records map[model.Kind][]model.Record

	mode          mode
	input         textinput.Model
	pendingDelete model.ID

	ready     bool
	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, p *planner.Planner, opts Options) appModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UpcomingLimit <= 0 {
		opts.UpcomingLimit = views.DefaultUpcomingLimit
	}
	if opts.UpcomingWindow <= 0 {
		opts.UpcomingWindow = views.DefaultUpcomingLookback
	}

	in := textinput.New()
	in.Prompt = "new> "
	in.Placeholder = "2024-01-10T09:00 Standup"
	in.CharLimit = 200

	m := appModel{
		ctx:     ctx,
		p:       p,
		opts:    opts,
		active:  model.KindEvent,
		lists:   map[model.Kind]list.Model{},
		records: map[model.Kind][]model.Record{},
		input:   in,
	}
	for _, kind := range model.Kinds() {
		l := list.New(nil, newRowDelegate(), 0, 0)
		l.SetShowTitle(false)
		l.SetShowHelp(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(true)
		l.DisableQuitKeybindings()
		m.lists[kind] = l
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		return initDoneMsg{err: p.Init(ctx)}
	}
}

func (m appModel) selected() (model.Record, bool) {
	l := m.lists[m.active]
	it, ok := l.SelectedItem().(recordItem)
	if !ok {
		return model.Record{}, false
	}
	return it.rec, true
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case initDoneMsg:
		m.ready = true
		if msg.err != nil {
			m.setStatus("load failed: "+msg.err.Error(), true)
		} else if m.p.State(model.KindEvent).DurableDown {
			m.setStatus("durable store unavailable; saving to fallback storage only", true)
		}
		return m, nil

	case snapshotMsg:
		m.records[msg.Kind] = msg.Records
		l := m.lists[msg.Kind]
		cmd := l.SetItems(toItems(msg.Records))
		m.lists[msg.Kind] = l
		return m, cmd

	case writeLostMsg:
		m.setStatus(fmt.Sprintf("NOT SAVED (%s): %v", msg.kind.Collection(), msg.err), true)
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrWriteLost) {
				m.setStatus("NOT SAVED: "+msg.err.Error(), true)
			} else {
				m.setStatus(msg.err.Error(), true)
			}
			return m, nil
		}
		m.setStatus(msg.status, false)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	l := m.lists[m.active]
	var cmd tea.Cmd
	l, cmd = l.Update(msg)
	m.lists[m.active] = l
	return m, cmd
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeAdd:
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case "enter":
			rec, err := parseQuickAdd(m.input.Value(), m.active)
			if err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.mode = modeBrowse
			m.input.Blur()
			m.input.SetValue("")
			return m, m.addCmd(rec)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeConfirmDelete:
		id := m.pendingDelete
		m.mode = modeBrowse
		m.pendingDelete = ""
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.deleteCmd(m.active, id)
		}
		m.setStatus("delete cancelled", false)
		return m, nil

	case modeConfirmClear:
		m.mode = modeBrowse
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.clearAllCmd()
		}
		m.setStatus("clear cancelled", false)
		return m, nil
	}

	l := m.lists[m.active]
	if l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		l, cmd = l.Update(msg)
		m.lists[m.active] = l
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.active == model.KindEvent {
			m.active = model.KindTask
		} else {
			m.active = model.KindEvent
		}
		return m, nil
	case "a":
		m.mode = modeAdd
		cmd := m.input.Focus()
		return m, cmd
	case "d":
		if r, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.pendingDelete = r.ID
			m.setStatus(fmt.Sprintf("delete %q? (y/n)", r.Title), false)
		}
		return m, nil
	case "C":
		m.mode = modeConfirmClear
		m.setStatus("clear ALL events and tasks? (y/n)", false)
		return m, nil
	case "x", " ":
		if r, ok := m.selected(); ok && r.Kind == model.KindTask {
			return m, m.toggleCmd(r)
		}
		return m, nil
	case ">", "<":
		days := 1
		if msg.String() == "<" {
			days = -1
		}
		if r, ok := m.selected(); ok {
			return m, m.moveCmd(r, days)
		}
		return m, nil
	case "r":
		p, ctx := m.p, m.ctx
		return m, func() tea.Msg {
			p.Reload(ctx)
			return opDoneMsg{status: "reloaded"}
		}
	}

	var cmd tea.Cmd
	l, cmd = l.Update(msg)
	m.lists[m.active] = l
	return m, cmd
}

// Mutations run as commands so listener notifications can reach the program loop.

func (m appModel) addCmd(rec model.Record) tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		id, err := p.Repo(rec.Kind).Add(ctx, rec)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "added " + string(id)}
	}
}

func (m appModel) deleteCmd(kind model.Kind, id model.ID) tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		ok, err := p.Repo(kind).Delete(ctx, id)
		if err != nil {
			return opDoneMsg{err: err}
		}
		if !ok {
			return opDoneMsg{status: "already gone"}
		}
		return opDoneMsg{status: "deleted"}
	}
}

func (m appModel) clearAllCmd() tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		if err := p.ClearAll(ctx); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "cleared all"}
	}
}

func (m appModel) toggleCmd(r model.Record) tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		_, _, err := p.Tasks().SetCompleted(ctx, r.ID, !r.Completed)
		if err != nil {
			return opDoneMsg{err: err}
		}
		if r.Completed {
			return opDoneMsg{status: "reopened " + r.Title}
		}
		return opDoneMsg{status: "completed " + r.Title}
	}
}

func (m appModel) moveCmd(r model.Record, days int) tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		next, err := model.AddDays(r.Start, days)
		if err != nil {
			return opDoneMsg{err: err}
		}
		moved, _, err := p.Drop(ctx, r.Kind, r.ID, next)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "moved to " + moved.Start}
	}
}

// parseQuickAdd reads "<start> <title>", e.g. "2024-01-10T09:00 Standup" or "2024-02-01 Pay rent".
// Date-only starts make all-day records.
func parseQuickAdd(s string, kind model.Kind) (model.Record, error) {
	start, title, _ := strings.Cut(strings.TrimSpace(s), " ")
	title = strings.TrimSpace(title)
	if start == "" || title == "" {
		return model.Record{}, errors.New("type a start and a title, e.g. 2024-01-10T09:00 Standup")
	}
	if _, err := model.ParseTime(start); err != nil {
		return model.Record{}, err
	}
	return model.Record{Kind: kind, Title: title, Start: start, AllDay: model.IsDateOnly(start)}, nil
}

const headerLines = 2
const footerLines = 2

func (m *appModel) resize() {
	listW := m.width
	if m.showDetail() {
		listW = m.width / 2
	}
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	for kind, l := range m.lists {
		l.SetSize(listW, h)
		m.lists[kind] = l
	}
}

func (m appModel) showDetail() bool { return m.width >= 80 }

func (m appModel) View() string {
	if !m.ready {
		return "loading…"
	}

	tabs := make([]string, 0, 2)
	for _, kind := range model.Kinds() {
		label := fmt.Sprintf("%s (%d)", strings.ToUpper(kind.Collection()[:1])+kind.Collection()[1:], len(m.records[kind]))
		if kind == m.active {
			tabs = append(tabs, styleTabActive().Render(label))
		} else {
			tabs = append(tabs, styleTab().Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	all := append(model.Clone(m.records[model.KindEvent]), m.records[model.KindTask]...)
	upcoming := views.Upcoming(all, m.opts.Now(), m.opts.UpcomingWindow, m.opts.UpcomingLimit)
	ticker := styleTicker().Render(views.Ticker(upcoming, m.width))

	body := m.lists[m.active].View()
	if len(m.records[m.active]) == 0 {
		empty := "No events yet"
		if m.active == model.KindTask {
			empty = views.EmptyTasks
		}
		body = styleMuted().Render(empty)
	}
	if m.showDetail() {
		if r, ok := m.selected(); ok {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", detail(r, m.width-m.width/2-2))
		}
	}

	footer := styleMuted().Render("tab switch  a add  d delete  x done  </> move a day  C clear all  / filter  r reload  q quit")
	switch {
	case m.mode == modeAdd:
		footer = m.input.View()
	case m.statusErr:
		footer = styleError().Render(m.status) + "\n" + footer
	case m.status != "":
		footer = m.status + "\n" + footer
	}

	return strings.Join([]string{header, ticker, body, footer}, "\n")
}
