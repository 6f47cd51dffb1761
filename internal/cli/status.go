package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where each collection was loaded from",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			return writeOut(cmd, app, statusView(p.Status(cmd.Context())))
		},
	}
	return cmd
}
