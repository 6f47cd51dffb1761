// Package planner wires the stores, the reconciliation loader and the two collection
// repositories into one owned instance, and exposes the callbacks a view invokes.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planner-cli/internal/model"
	"planner-cli/internal/reconcile"
	"planner-cli/internal/repo"
	"planner-cli/internal/store"
)

// FallbackDirName is the directory under the data dir that holds the fallback store.
const FallbackDirName = "fallback"

type Options struct {
	// Dir is the data directory. It holds planner.sqlite and the fallback/ tree.
	Dir string
	// Origin scopes the fallback store, like a browser origin scopes localStorage.
	Origin        string
	FallbackQuota int64
	Defaults      model.Defaults
	Logger        *slog.Logger
	Now           func() time.Time
	// DisableDurable runs on the fallback store alone.
	DisableDurable bool
}

type Planner struct {
	dir      string
	kv       *store.KV
	fallback *store.Fallback
	loader   *reconcile.Loader
	events   *repo.Repository
	tasks    *repo.Repository
	defaults model.Defaults
	log      *slog.Logger
}

func New(opts Options) (*Planner, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("planner: missing data dir")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// Both stores will report their own failures; the loader degrades from there.
		log.Warn("data dir not writable", "dir", dir, "err", err)
	}

	p := &Planner{
		dir:      dir,
		fallback: store.NewFallback(filepath.Join(dir, FallbackDirName), opts.Origin, opts.FallbackQuota),
		defaults: opts.Defaults,
		log:      log,
	}

	var durable reconcile.Durable
	if !opts.DisableDurable {
		p.kv = store.NewKV(filepath.Join(dir, store.SQLiteFileName))
		durable = p.kv
	}
	p.loader = reconcile.New(durable, p.fallback, reconcile.WithLogger(log), reconcile.WithClock(now))

	ropts := []repo.Option{repo.WithClock(now), repo.WithDefaults(opts.Defaults)}
	p.events = repo.New(model.KindEvent, p.loader, ropts...)
	p.tasks = repo.New(model.KindTask, p.loader, ropts...)
	return p, nil
}

// Init imports the legacy single-array list when present, loads both collections and
// publishes them to current subscribers.
func (p *Planner) Init(ctx context.Context) error {
	if n, err := p.loader.ImportLegacy(ctx, store.NewID); err != nil {
		return err
	} else if n > 0 {
		p.log.Info("legacy records imported", "count", n)
	}
	p.Reload(ctx)
	return nil
}

// ClearAll empties both collections. Both are attempted even when the first fails.
func (p *Planner) ClearAll(ctx context.Context) error {
	var errs []error
	for _, kind := range model.Kinds() {
		if err := p.Repo(kind).Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload rereads both collections from the stores and republishes them.
func (p *Planner) Reload(ctx context.Context) {
	for _, kind := range model.Kinds() {
		p.Repo(kind).GetAll(ctx)
		p.loader.Publish(kind)
	}
}

func (p *Planner) Dir() string { return p.dir }

func (p *Planner) Events() *repo.Repository { return p.events }

func (p *Planner) Tasks() *repo.Repository { return p.tasks }

func (p *Planner) Repo(kind model.Kind) *repo.Repository {
	if kind == model.KindTask {
		return p.tasks
	}
	return p.events
}

func (p *Planner) Subscribe(l reconcile.Listener) { p.loader.Subscribe(l) }

func (p *Planner) State(kind model.Kind) reconcile.State { return p.loader.State(kind) }

func (p *Planner) Defaults() model.Defaults { return p.defaults }

func (p *Planner) Close() error {
	if p.kv == nil {
		return nil
	}
	return p.kv.Close()
}

// CollectionStatus is one row of Status.
type CollectionStatus struct {
	Collection string          `json:"collection"`
	State      reconcile.State `json:"state"`
}

type Status struct {
	Dir         string             `json:"dir"`
	DurablePath string             `json:"durablePath,omitempty"`
	FallbackDir string             `json:"fallbackDir"`
	DurableDown bool               `json:"durableDown"`
	DurableKeys []string           `json:"durableKeys"`
	FallbackErr string             `json:"fallbackErr,omitempty"`
	Collections []CollectionStatus `json:"collections"`
}

// Status reports where each collection came from and what the durable store holds.
func (p *Planner) Status(ctx context.Context) Status {
	st := Status{
		Dir:         p.dir,
		FallbackDir: p.fallback.Dir(),
		DurableKeys: []string{},
	}
	if p.kv != nil {
		st.DurablePath = p.kv.Path()
		if !p.loader.DurableDown() {
			if keys, err := p.kv.Keys(ctx); err == nil {
				st.DurableKeys = keys
			}
		}
	}
	st.DurableDown = p.loader.DurableDown()
	if err := p.fallback.LastErr(); err != nil {
		st.FallbackErr = err.Error()
	}
	for _, kind := range model.Kinds() {
		st.Collections = append(st.Collections, CollectionStatus{Collection: kind.Collection(), State: p.loader.State(kind)})
	}
	return st
}

// SelectRange turns a selected calendar range into an unsaved draft of kind.
// All-day drafts carry dates only; timed drafts carry minutes.
func (p *Planner) SelectRange(start, end time.Time, allDay bool, kind model.Kind) model.Record {
	layout := "2006-01-02T15:04"
	if allDay {
		layout = "2006-01-02"
	}
	r := model.Record{
		Kind:   kind,
		Start:  start.Format(layout),
		AllDay: allDay,
	}
	if !allDay && end.After(start) {
		r.End = end.Format(layout)
	}
	r.Normalize(p.defaults)
	return r
}

// Activate returns the record a view wants to open for editing.
func (p *Planner) Activate(ctx context.Context, kind model.Kind, id model.ID) (model.Record, bool) {
	return p.Repo(kind).GetByID(ctx, id)
}

// Drop moves a record to newStart, shifting its end by the same amount.
func (p *Planner) Drop(ctx context.Context, kind model.Kind, id model.ID, newStart string) (model.Record, bool, error) {
	r := p.Repo(kind)
	cur, ok := r.GetByID(ctx, id)
	if !ok {
		return model.Record{}, false, nil
	}
	newStart = strings.TrimSpace(newStart)
	patch := model.Patch{Start: &newStart}
	if cur.End != "" {
		end, err := model.ShiftEnd(cur.Start, cur.End, newStart)
		if err != nil {
			return model.Record{}, true, fmt.Errorf("move %s %s: %w: %w", kind, id, store.ErrMalformedRecord, err)
		}
		patch.End = &end
	}
	return r.Update(ctx, id, patch)
}
