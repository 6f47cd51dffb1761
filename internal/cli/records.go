package cli

import (
	"strings"

	"planner-cli/internal/model"

	"github.com/spf13/cobra"
)

// recordFlags binds the editable record fields. Changed() decides what an update patches.
type recordFlags struct {
	title       string
	start       string
	end         string
	allDay      bool
	category    string
	color       string
	description string
	completed   bool
}

func (f *recordFlags) bind(cmd *cobra.Command, kind model.Kind) {
	startHelp := "Start (YYYY-MM-DD or YYYY-MM-DDTHH:MM)"
	if kind == model.KindTask {
		startHelp = "Due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)"
	}
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.start, "start", "", startHelp)
	cmd.Flags().StringVar(&f.end, "end", "", "End (ignored for all-day records)")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "All-day record")
	cmd.Flags().StringVar(&f.category, "category", "", "Category (default from config)")
	cmd.Flags().StringVar(&f.color, "color", "", "Hex color, e.g. #0a4ed3 (default from config)")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	if kind == model.KindTask {
		cmd.Flags().BoolVar(&f.completed, "completed", false, "Mark completed")
	}
}

func (f *recordFlags) record(kind model.Kind) model.Record {
	return model.Record{
		Kind:        kind,
		Title:       f.title,
		Start:       f.start,
		End:         f.end,
		AllDay:      f.allDay,
		Category:    f.category,
		Color:       f.color,
		Description: f.description,
		Completed:   f.completed,
	}
}

func (f *recordFlags) patch(cmd *cobra.Command) model.Patch {
	var p model.Patch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("start") {
		p.Start = &f.start
	}
	if changed("end") {
		p.End = &f.end
	}
	if changed("all-day") {
		p.AllDay = &f.allDay
	}
	if changed("category") {
		p.Category = &f.category
	}
	if changed("color") {
		p.Color = &f.color
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("completed") {
		p.Completed = &f.completed
	}
	return p
}

func newRecordsCmd(app *App, kind model.Kind) *cobra.Command {
	noun := "Event"
	if kind == model.KindTask {
		noun = "Task"
	}
	cmd := &cobra.Command{
		Use:   kind.Collection(),
		Short: noun + " commands",
	}
	cmd.AddCommand(newRecordsAddCmd(app, kind))
	cmd.AddCommand(newRecordsListCmd(app, kind))
	cmd.AddCommand(newRecordsShowCmd(app, kind))
	cmd.AddCommand(newRecordsUpdateCmd(app, kind))
	cmd.AddCommand(newRecordsDeleteCmd(app, kind))
	cmd.AddCommand(newRecordsClearCmd(app, kind))
	cmd.AddCommand(newRecordsOnCmd(app, kind))
	cmd.AddCommand(newRecordsQueryCmd(app, kind))
	cmd.AddCommand(newRecordsMoveCmd(app, kind))
	if kind == model.KindTask {
		cmd.AddCommand(newTasksDoneCmd(app, "done", true))
		cmd.AddCommand(newTasksDoneCmd(app, "undo", false))
		cmd.AddCommand(newTasksPanelCmd(app))
	}
	return cmd
}

func newRecordsAddCmd(app *App, kind model.Kind) *cobra.Command {
	var f recordFlags
	var id string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a " + string(kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			rec := f.record(kind)
			rec.ID = model.ID(strings.TrimSpace(id))
			newID, err := p.Repo(kind).Add(cmd.Context(), rec)
			if err != nil {
				return writeErr(cmd, err)
			}
			got, ok := p.Repo(kind).GetByID(cmd.Context(), newID)
			if !ok {
				return writeErr(cmd, errNotFound(kind, newID))
			}
			return writeOut(cmd, app, recordView(got))
		},
	}
	f.bind(cmd, kind)
	cmd.Flags().StringVar(&id, "id", "", "Explicit id (default: generated)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newRecordsListCmd(app *App, kind model.Kind) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + kind.Collection() + " (stored order unless --sorted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			recs := p.Repo(kind).GetAll(cmd.Context())
			if sorted {
				recs = model.SortByStart(recs)
			}
			return writeOut(cmd, app, recordList(recs))
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Sort by start, earliest first")
	return cmd
}

func newRecordsShowCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			id := model.ID(strings.TrimSpace(args[0]))
			rec, ok := p.Activate(cmd.Context(), kind, id)
			if !ok {
				return writeErr(cmd, errNotFound(kind, id))
			}
			return writeOut(cmd, app, recordView(rec))
		},
	}
	return cmd
}

func newRecordsUpdateCmd(app *App, kind model.Kind) *cobra.Command {
	var f recordFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := f.patch(cmd)
			if patch.Empty() {
				return writeErr(cmd, errNothingToUpdate)
			}
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			id := model.ID(strings.TrimSpace(args[0]))
			rec, ok, err := p.Repo(kind).Update(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errNotFound(kind, id))
			}
			return writeOut(cmd, app, recordView(rec))
		},
	}
	f.bind(cmd, kind)
	return cmd
}

func newRecordsDeleteCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + string(kind) + " (unknown ids are a no-op)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			id := model.ID(strings.TrimSpace(args[0]))
			ok, err := p.Repo(kind).Delete(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, deleteResult{ID: id, Deleted: ok})
		},
	}
	return cmd
}

func newRecordsClearCmd(app *App, kind model.Kind) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every " + string(kind) + " on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errClearNeedsYes)
			}
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			if err := p.Repo(kind).Clear(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, clearResult{Collection: kind.Collection(), Cleared: true})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}

func newClearAllCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every event and task on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errClearNeedsYes)
			}
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			if err := p.ClearAll(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, clearResult{Collection: "all", Cleared: true})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}

func newRecordsOnCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "on <YYYY-MM-DD>",
		Short: "List " + kind.Collection() + " starting on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, app, kind, "date", args[0])
		},
	}
	return cmd
}

func newRecordsQueryCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <field> <value>",
		Short: "List " + kind.Collection() + " whose field equals value",
		Long:  "Fields: " + strings.Join(model.QueryableFields(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, app, kind, args[0], args[1])
		},
	}
	return cmd
}

func runQuery(cmd *cobra.Command, app *App, kind model.Kind, field, value string) error {
	p, _, err := openPlanner(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer p.Close()

	recs, err := p.Repo(kind).QueryByField(cmd.Context(), field, strings.TrimSpace(value))
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, recordList(recs))
}

func newRecordsMoveCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <newStart>",
		Short: "Move a " + string(kind) + " to a new start, keeping its duration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			id := model.ID(strings.TrimSpace(args[0]))
			rec, ok, err := p.Drop(cmd.Context(), kind, id, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errNotFound(kind, id))
			}
			return writeOut(cmd, app, recordView(rec))
		},
	}
	return cmd
}

func newTasksDoneCmd(app *App, use string, done bool) *cobra.Command {
	short := "Mark a task completed"
	if !done {
		short = "Mark a task not completed"
	}
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer p.Close()

			id := model.ID(strings.TrimSpace(args[0]))
			rec, ok, err := p.Tasks().SetCompleted(cmd.Context(), id, done)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errNotFound(model.KindTask, id))
			}
			return writeOut(cmd, app, recordView(rec))
		},
	}
	return cmd
}
