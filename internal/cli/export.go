package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"planner-cli/internal/ics"
	"planner-cli/internal/model"
	"planner-cli/internal/publish"

	"github.com/spf13/cobra"
)

type exportResult struct {
	Path    string `json:"path"`
	Events  int    `json:"events"`
	Tasks   int    `json:"tasks"`
	Skipped int    `json:"skipped"`
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export collections to other formats",
	}
	cmd.AddCommand(newExportICSCmd(app))
	cmd.AddCommand(newExportMarkdownCmd(app))
	return cmd
}

func newExportMarkdownCmd(app *App) *cobra.Command {
	var to string
	var title string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "md",
		Short: "Write a markdown agenda plus one page per record",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tr, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			res, err := publish.WriteAgenda(tr.Records(model.KindEvent), tr.Records(model.KindTask), to, publish.WriteOptions{
				Title:     title,
				Overwrite: overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().StringVar(&title, "title", "", "Agenda heading (default: Agenda)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newExportICSCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export events (VEVENT) and tasks (VTODO) as iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tr, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			events := tr.Records(model.KindEvent)
			tasks := tr.Records(model.KindTask)

			out = strings.TrimSpace(out)
			if out == "" || out == "-" {
				// Raw calendar on stdout, no envelope.
				if _, err := ics.Export(cmd.OutOrStdout(), events, tasks, ics.Options{Stamp: app.now()}); err != nil {
					return writeErr(cmd, err)
				}
				return nil
			}

			var buf bytes.Buffer
			skipped, err := ics.Export(&buf, events, tasks, ics.Options{Stamp: app.now()})
			if err != nil {
				return writeErr(cmd, err)
			}
			if dir := filepath.Dir(out); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, exportResult{Path: out, Events: len(events), Tasks: len(tasks), Skipped: skipped})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}
