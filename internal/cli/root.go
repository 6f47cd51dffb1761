package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"planner-cli/internal/config"
	"planner-cli/internal/format"
	"planner-cli/internal/logging"
	"planner-cli/internal/model"
	"planner-cli/internal/planner"
	"planner-cli/internal/views"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigPath string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg config.Config
	log *slog.Logger
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "planner",
		Short:        "Local-first calendar and task planner (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  planner

  # Scriptable commands
  planner events add --title Standup --start 2024-01-10T09:00
  planner tasks list --sorted

  # What's coming up
  planner upcoming --format text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.loadConfig(cmd.ErrOrStderr()); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr(config.EnvDataDir, ""), "Data directory (default: dataDir from config, else <config dir>/data)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: $PLANNER_CONFIG_DIR/config.yaml or ~/.planner/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr(config.EnvLogLevel, ""), "Log level (debug|info|warn|error; default from config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PLANNER_FORMAT", "json"), "Output format (json|text)")

	cmd.AddCommand(newRecordsCmd(app, model.KindEvent))
	cmd.AddCommand(newRecordsCmd(app, model.KindTask))
	cmd.AddCommand(newClearAllCmd(app))
	cmd.AddCommand(newUpcomingCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.Path()
}

// loadConfig resolves config, data dir and logger. Flags win over the config file.
func (app *App) loadConfig(stderr io.Writer) error {
	path, err := app.configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(app.LogLevel) != "" {
		cfg.LogLevel = app.LogLevel
	}
	if strings.TrimSpace(app.Dir) == "" {
		dir, err := cfg.ResolveDataDir()
		if err != nil {
			return err
		}
		app.Dir = dir
	}
	cfg.DataDir = app.Dir

	// Zone-less dates are read in this location process-wide, like setting TZ.
	if strings.TrimSpace(cfg.Timezone) != "" {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		time.Local = loc
	}

	log, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log = log
	return nil
}

func (app *App) plannerOptions(log *slog.Logger) planner.Options {
	return planner.Options{
		Dir:            app.Dir,
		Origin:         app.cfg.Origin,
		FallbackQuota:  app.cfg.FallbackQuotaBytes,
		Defaults:       app.cfg.Defaults(),
		Logger:         log,
		DisableDurable: app.cfg.DisableDurable,
	}
}

// openPlanner builds and initializes a planner for one command. The tracker sees every
// published collection; callers must Close the planner.
func openPlanner(ctx context.Context, app *App) (*planner.Planner, *views.Tracker, error) {
	p, err := planner.New(app.plannerOptions(app.log))
	if err != nil {
		return nil, nil, err
	}
	tr := views.NewTracker()
	p.Subscribe(tr)
	if err := p.Init(ctx); err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return p, tr, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the JSON shape every command prints: {"data": ...}.
type envelope struct {
	Data any `json:"data"`
}

// textEnvelope is an envelope whose payload has a text rendering.
type textEnvelope struct {
	envelope
	text format.Texter
}

func (e textEnvelope) Text() string { return e.text.Text() }

func writeOut(cmd *cobra.Command, app *App, v any) error {
	var out any = envelope{Data: v}
	if t, ok := v.(format.Texter); ok {
		out = textEnvelope{envelope: envelope{Data: v}, text: t}
	}
	return format.Write(cmd.OutOrStdout(), out, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
