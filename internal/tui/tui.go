// Package tui is the interactive terminal view over a planner: tabs for events and tasks,
// the upcoming ticker and a detail panel.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"planner-cli/internal/planner"
)

// Run subscribes the program to p, initializes p inside the program loop and blocks until quit.
func Run(ctx context.Context, p *planner.Planner, opts Options) error {
	m := newAppModel(ctx, p, opts)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	p.Subscribe(bridge{send: prog.Send})
	_, err := prog.Run()
	return err
}
