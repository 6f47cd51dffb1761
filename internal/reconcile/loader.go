// Package reconcile hides the durable/fallback store pair behind one load/save surface
// and keeps the canonical in-memory collections that listeners render.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

// Durable is the primary store (store.KV).
type Durable interface {
	Get(ctx context.Context, key string) (store.Entry, bool, error)
	PutAt(ctx context.Context, key string, value []byte, at time.Time) error
}

// Fallback is the backstop store (store.Fallback). It never returns errors.
type Fallback interface {
	Lookup(key string) ([]model.Record, time.Time, bool)
	SaveListAt(key string, records []model.Record, at time.Time) bool
	LastErr() error
	Raw(key string) ([]byte, bool)
	Remove(key string) bool
}

type Option func(*Loader)

func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(ld *Loader) {
		if now != nil {
			ld.now = now
		}
	}
}

type Loader struct {
	durable  Durable
	fallback Fallback
	log      *slog.Logger
	now      func() time.Time

	mu          sync.RWMutex
	durableDown bool
	states      map[model.Kind]State
	canon       map[model.Kind][]model.Record
	listeners   []Listener
}

// New builds a loader. A nil durable store means fallback-only operation from the start.
func New(durable Durable, fallback Fallback, opts ...Option) *Loader {
	l := &Loader{
		durable:  durable,
		fallback: fallback,
		log:      slog.Default(),
		now:      time.Now,
		states:   map[model.Kind]State{},
		canon:    map[model.Kind][]model.Record{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if durable == nil {
		l.durableDown = true
	}
	return l
}

func (l *Loader) Subscribe(ln Listener) {
	if ln == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, ln)
	l.mu.Unlock()
}

func (l *Loader) State(kind model.Kind) State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.states[kind]
	if !ok {
		st = State{Phase: PhaseUninitialized}
	}
	st.DurableDown = l.durableDown
	return st
}

func (l *Loader) DurableDown() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.durableDown
}

// Snapshot returns a copy of the canonical list as of the last load or save.
func (l *Loader) Snapshot(kind model.Kind) Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{Kind: kind, Records: model.Clone(l.canon[kind]), Source: l.states[kind].Source}
}

// Publish pushes the current canonical list of kind to every listener.
func (l *Loader) Publish(kind model.Kind) {
	snap := l.Snapshot(kind)
	for _, ln := range l.listenersCopy() {
		ln.CollectionChanged(Snapshot{Kind: snap.Kind, Records: model.Clone(snap.Records), Source: snap.Source})
	}
}

func (l *Loader) listenersCopy() []Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Listener, len(l.listeners))
	copy(out, l.listeners)
	return out
}

// Load reads a collection, preferring the durable store, and makes the result canonical.
// It never fails: unreadable or absent data degrades to an empty collection.
func (l *Loader) Load(ctx context.Context, kind model.Kind) []model.Record {
	l.setPhase(kind, PhaseLoading)

	recs, src := l.read(ctx, kind)
	recs = normalizeKinds(recs, kind)

	l.mu.Lock()
	l.canon[kind] = model.Clone(recs)
	l.states[kind] = State{Phase: PhaseReady, Source: src, Count: len(recs)}
	l.mu.Unlock()

	l.log.Debug("collection loaded", "collection", kind.Collection(), "source", src, "count", len(recs))
	return recs
}

func (l *Loader) setPhase(kind model.Kind, p Phase) {
	l.mu.Lock()
	st := l.states[kind]
	st.Phase = p
	l.states[kind] = st
	l.mu.Unlock()
}

func (l *Loader) read(ctx context.Context, kind model.Kind) ([]model.Record, Source) {
	key := kind.Collection()

	var (
		dRecs []model.Record
		dAt   time.Time
		dOK   bool
	)
	if l.durableUsable() {
		e, found, err := l.durable.Get(ctx, key)
		switch {
		case err != nil:
			l.markDurableDown(err)
		case found:
			recs, err := store.DecodeList(e.Value)
			if err != nil {
				l.log.Warn("durable collection unreadable; ignoring it", "collection", key, "err", err)
				break
			}
			dRecs, dAt, dOK = recs, e.UpdatedAt, true
		}
	}

	fRecs, fAt, fOK := l.fallback.Lookup(key)

	switch {
	case dOK && fOK && fAt.After(dAt):
		// The durable copy is older than a fallback-only save made while it was down.
		return l.union(key, fRecs, dRecs), SourceFallback
	case dOK && fOK:
		return l.union(key, dRecs, fRecs), SourceDurable
	case dOK:
		return dedupe(dRecs), SourceDurable
	case fOK:
		return dedupe(fRecs), SourceFallback
	default:
		return []model.Record{}, SourceEmpty
	}
}

// Save persists a collection to the durable store and, independently, to the fallback store,
// then republishes it. It returns an error wrapping store.ErrWriteLost only when both failed;
// in that case the canonical list keeps its previous contents.
func (l *Loader) Save(ctx context.Context, kind model.Kind, records []model.Record) error {
	key := kind.Collection()
	recs := normalizeKinds(model.Clone(records), kind)

	payload, err := store.EncodeList(recs)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	at := l.now()

	durableOK := false
	if l.durableUsable() {
		if err := l.durable.PutAt(ctx, key, payload, at); err != nil {
			l.markDurableDown(err)
		} else {
			durableOK = true
		}
	}

	fallbackOK := l.fallback.SaveListAt(key, recs, at)
	if !fallbackOK {
		l.log.Warn("fallback write failed", "collection", key, "err", l.fallback.LastErr())
	}

	if !durableOK && !fallbackOK {
		lost := fmt.Errorf("save %s: %w", key, store.ErrWriteLost)
		l.log.Error("write lost: no store accepted the change", "collection", key, "count", len(recs), "fallback_err", l.fallback.LastErr())
		for _, ln := range l.listenersCopy() {
			ln.WriteLost(kind, lost)
		}
		return lost
	}

	src := SourceFallback
	if durableOK {
		src = SourceDurable
	}
	l.mu.Lock()
	l.canon[kind] = recs
	l.states[kind] = State{Phase: PhaseReady, Source: src, Count: len(recs)}
	l.mu.Unlock()

	l.log.Debug("collection saved", "collection", key, "durable", durableOK, "fallback", fallbackOK, "count", len(recs))
	l.Publish(kind)
	return nil
}

func (l *Loader) durableUsable() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.durable != nil && !l.durableDown
}

// markDurableDown stops using the durable store until the process restarts.
func (l *Loader) markDurableDown(err error) {
	l.mu.Lock()
	already := l.durableDown
	l.durableDown = true
	l.mu.Unlock()
	if !already {
		l.log.Warn("durable store unavailable; continuing with fallback store only", "err", err)
	}
}

func normalizeKinds(recs []model.Record, kind model.Kind) []model.Record {
	for i := range recs {
		if recs[i].Kind == "" {
			recs[i].Kind = kind
		}
	}
	return recs
}

// dedupe keeps the first record for each id. Records without an id are kept as-is.
func dedupe(recs []model.Record) []model.Record {
	out := make([]model.Record, 0, len(recs))
	seen := map[model.ID]bool{}
	for _, r := range recs {
		if r.ID != "" {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
		}
		out = append(out, r)
	}
	return out
}

// union keeps every distinct id held by either store. The newer snapshot supplies the base
// order; ids only the other store holds are appended. When both hold an id, the copy with
// the later UpdatedAt wins. Deletes made while one store was unreachable can reappear.
func (l *Loader) union(key string, base, other []model.Record) []model.Record {
	out := dedupe(base)
	added := 0
	for _, r := range dedupe(other) {
		if r.ID != "" {
			if i := model.IndexOf(out, r.ID); i >= 0 {
				if r.UpdatedAt.After(out[i].UpdatedAt) {
					out[i] = r
				}
				continue
			}
		}
		out = append(out, r)
		added++
	}
	if added > 0 {
		l.log.Info("merged records held by only one store", "collection", key, "count", added)
	}
	return out
}
