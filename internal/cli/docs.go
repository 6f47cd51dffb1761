package cli

import (
	"fmt"
	"strings"

	"planner-cli/internal/docs"

	"github.com/spf13/cobra"
)

type docsPage struct {
	Topic    string `json:"topic"`
	Markdown string `json:"markdown"`
}

func (d docsPage) Text() string { return strings.TrimRight(d.Markdown, "\n") }

type docsIndex []docs.Topic

func (d docsIndex) Text() string {
	lines := make([]string, 0, len(d))
	for _, t := range d {
		lines = append(lines, fmt.Sprintf("%-10s %s", t.Name, t.Title))
	}
	return strings.Join(lines, "\n")
}

func newDocsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in help topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, docsIndex(docs.Topics()))
			}
			body, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q (see: planner docs)", args[0]))
			}
			return writeOut(cmd, app, docsPage{Topic: strings.ToLower(strings.TrimSpace(args[0])), Markdown: body})
		},
	}
	return cmd
}
