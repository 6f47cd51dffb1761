// Package repo implements CRUD and field queries over one logical collection.
package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

// Collections is the load/save surface a repository persists through (reconcile.Loader).
type Collections interface {
	Load(ctx context.Context, kind model.Kind) []model.Record
	Save(ctx context.Context, kind model.Kind, records []model.Record) error
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func WithIDs(newID func(model.Kind) (model.ID, error)) Option {
	return func(r *Repository) {
		if newID != nil {
			r.newID = newID
		}
	}
}

func WithDefaults(d model.Defaults) Option {
	return func(r *Repository) { r.defaults = d }
}

// Repository owns the "events" or "tasks" collection.
//
// Each mutation reloads the whole collection, changes it and saves it back while holding
// the repository lock, so back-to-back mutations never overwrite each other.
type Repository struct {
	kind     model.Kind
	cols     Collections
	now      func() time.Time
	newID    func(model.Kind) (model.ID, error)
	defaults model.Defaults

	mu sync.Mutex
}

func New(kind model.Kind, cols Collections, opts ...Option) *Repository {
	r := &Repository{
		kind:  kind,
		cols:  cols,
		now:   time.Now,
		newID: store.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Kind() model.Kind { return r.kind }

// Add stores a new record and returns its id. A missing id is assigned; kind is forced to the
// repository's kind. Invalid input is ErrMalformedRecord, a taken id is ErrDuplicateID.
func (r *Repository) Add(ctx context.Context, rec model.Record) (model.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.Kind = r.kind
	rec.ID = model.ID(strings.TrimSpace(string(rec.ID)))
	if rec.ID == "" {
		id, err := r.newID(r.kind)
		if err != nil {
			return "", fmt.Errorf("add %s: %w", r.kind, err)
		}
		rec.ID = id
	}
	now := r.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Normalize(r.defaults)
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("add %s: %w: %w", r.kind, store.ErrMalformedRecord, err)
	}

	recs := r.cols.Load(ctx, r.kind)
	if model.IndexOf(recs, rec.ID) >= 0 {
		return "", fmt.Errorf("add %s: %w: %s", r.kind, store.ErrDuplicateID, rec.ID)
	}
	recs = append(recs, rec)
	if err := r.cols.Save(ctx, r.kind, recs); err != nil {
		return "", fmt.Errorf("add %s: %w", r.kind, err)
	}
	return rec.ID, nil
}

// GetAll returns the collection in stored (insertion) order.
//
// Reads reload the canonical list and hold the mutation lock while doing so.
func (r *Repository) GetAll(ctx context.Context) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cols.Load(ctx, r.kind)
}

func (r *Repository) GetByID(ctx context.Context, id model.ID) (model.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.cols.Load(ctx, r.kind)
	if i := model.IndexOf(recs, id); i >= 0 {
		return recs[i], true
	}
	return model.Record{}, false
}

// Update applies patch to the record with id. ok is false, and nothing is written,
// when the id does not exist.
func (r *Repository) Update(ctx context.Context, id model.ID, patch model.Patch) (model.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.cols.Load(ctx, r.kind)
	i := model.IndexOf(recs, id)
	if i < 0 {
		return model.Record{}, false, nil
	}
	cur := recs[i]
	next := patch.Apply(cur)
	next.ID = cur.ID
	next.Kind = r.kind
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.now()
	next.Normalize(r.defaults)
	if err := next.Validate(); err != nil {
		return model.Record{}, true, fmt.Errorf("update %s %s: %w: %w", r.kind, id, store.ErrMalformedRecord, err)
	}

	recs[i] = next
	if err := r.cols.Save(ctx, r.kind, recs); err != nil {
		return model.Record{}, true, fmt.Errorf("update %s %s: %w", r.kind, id, err)
	}
	return next, true, nil
}

// SetCompleted marks a task done or not done.
func (r *Repository) SetCompleted(ctx context.Context, id model.ID, done bool) (model.Record, bool, error) {
	return r.Update(ctx, id, model.Patch{Completed: &done})
}

// Delete removes the record with id. Unknown ids are a no-op returning false.
func (r *Repository) Delete(ctx context.Context, id model.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.cols.Load(ctx, r.kind)
	i := model.IndexOf(recs, id)
	if i < 0 {
		return false, nil
	}
	recs = append(recs[:i], recs[i+1:]...)
	if err := r.cols.Save(ctx, r.kind, recs); err != nil {
		return false, fmt.Errorf("delete %s %s: %w", r.kind, id, err)
	}
	return true, nil
}

// Clear empties the collection. The stores keep an empty array, not a missing key.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cols.Save(ctx, r.kind, []model.Record{}); err != nil {
		return fmt.Errorf("clear %s: %w", r.kind, err)
	}
	return nil
}

// QueryByField returns the records whose field equals value exactly, in stored order.
// See model.QueryableFields for the field names.
func (r *Repository) QueryByField(ctx context.Context, field, value string) ([]model.Record, error) {
	field = strings.TrimSpace(field)
	if _, ok := model.FieldValue(model.Record{}, field); !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", store.ErrUnknownField, field, strings.Join(model.QueryableFields(), ", "))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Record{}
	for _, rec := range r.cols.Load(ctx, r.kind) {
		if v, _ := model.FieldValue(rec, field); v == value {
			out = append(out, rec)
		}
	}
	return out, nil
}
