package cli

import (
	"planner-cli/internal/logging"
	"planner-cli/internal/planner"
	"planner-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The screen owns stderr while the UI runs, so logs go to a file in the data dir.
	log, closer, err := logging.OpenFile(app.Dir, app.cfg.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closer.Close()

	p, err := planner.New(app.plannerOptions(log))
	if err != nil {
		return writeErr(cmd, err)
	}
	defer p.Close()

	err = tui.Run(cmd.Context(), p, tui.Options{
		UpcomingLimit:  app.cfg.UpcomingLimit,
		UpcomingWindow: app.cfg.UpcomingWindow(),
		Now:            app.now,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
