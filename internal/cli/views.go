package cli

import (
	"planner-cli/internal/model"
	"planner-cli/internal/views"

	"github.com/spf13/cobra"
)

func newUpcomingCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show the upcoming ticker (events and tasks from the last day on)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tr, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			n := limit
			if n <= 0 {
				n = app.cfg.UpcomingLimit
			}
			items := views.Upcoming(tr.All(), app.now(), app.cfg.UpcomingWindow(), n)
			return writeOut(cmd, app, upcomingResult{Items: items, Ticker: views.Ticker(items, 0)})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max items (default from config)")
	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print both collections as a calendar widget feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tr, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			return writeOut(cmd, app, views.CalendarSource(tr.Records(model.KindEvent), tr.Records(model.KindTask)))
		},
	}
	return cmd
}

func newTasksPanelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Show the task side panel (by due date)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tr, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			return writeOut(cmd, app, taskPanel(views.TaskPanel(tr.Records(model.KindTask))))
		},
	}
	return cmd
}
