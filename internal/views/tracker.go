package views

import (
	"sync"

	"planner-cli/internal/model"
	"planner-cli/internal/reconcile"
)

// Tracker is a Listener that keeps the latest published copy of each collection.
type Tracker struct {
	mu      sync.RWMutex
	records map[model.Kind][]model.Record
	sources map[model.Kind]reconcile.Source
	lost    []error
	onLost  func(model.Kind, error)
}

func NewTracker() *Tracker {
	return &Tracker{
		records: map[model.Kind][]model.Record{},
		sources: map[model.Kind]reconcile.Source{},
	}
}

// OnWriteLost registers f to run after a lost write is recorded.
func (t *Tracker) OnWriteLost(f func(model.Kind, error)) {
	t.mu.Lock()
	t.onLost = f
	t.mu.Unlock()
}

func (t *Tracker) CollectionChanged(s reconcile.Snapshot) {
	t.mu.Lock()
	t.records[s.Kind] = s.Records
	t.sources[s.Kind] = s.Source
	t.mu.Unlock()
}

func (t *Tracker) WriteLost(kind model.Kind, err error) {
	t.mu.Lock()
	t.lost = append(t.lost, err)
	f := t.onLost
	t.mu.Unlock()
	if f != nil {
		f(kind, err)
	}
}

// Records returns a copy of the last published list of kind (empty before the first publish).
func (t *Tracker) Records(kind model.Kind) []model.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return model.Clone(t.records[kind])
}

func (t *Tracker) Source(kind model.Kind) reconcile.Source {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sources[kind]
}

// All returns events followed by tasks.
func (t *Tracker) All() []model.Record {
	return append(t.Records(model.KindEvent), t.Records(model.KindTask)...)
}

func (t *Tracker) Lost() []error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]error, len(t.lost))
	copy(out, t.lost)
	return out
}

var _ reconcile.Listener = (*Tracker)(nil)
