package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

// LegacyKey is where the single-array layout kept events and tasks together in the fallback store.
const LegacyKey = "regihub_events_v1"

// ImportLegacy splits a single-array legacy list into the events and tasks collections.
//
// It runs only while neither store holds either collection, so it happens at most once;
// the legacy key is removed after both collections were saved. It returns the number of
// imported records.
func (l *Loader) ImportLegacy(ctx context.Context, newID func(model.Kind) (model.ID, error)) (int, error) {
	raw, ok := l.fallback.Raw(LegacyKey)
	if !ok {
		return 0, nil
	}
	if l.hasAnyCollection(ctx) {
		return 0, nil
	}

	var recs []model.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		l.log.Warn("legacy list unreadable; leaving it in place", "key", LegacyKey, "err", err)
		return 0, nil
	}

	byKind := map[model.Kind][]model.Record{}
	for _, r := range dedupe(recs) {
		if !r.Kind.Valid() {
			r.Kind = model.KindEvent
		}
		if r.ID == "" {
			id, err := newID(r.Kind)
			if err != nil {
				return 0, fmt.Errorf("import legacy: %w", err)
			}
			r.ID = id
		}
		r.Normalize(model.Defaults{})
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}

	n := 0
	for _, kind := range model.Kinds() {
		if err := l.Save(ctx, kind, byKind[kind]); err != nil {
			return n, fmt.Errorf("import legacy: %w", err)
		}
		n += len(byKind[kind])
	}
	l.fallback.Remove(LegacyKey)
	l.log.Info("imported legacy list", "key", LegacyKey, "records", n)
	return n, nil
}

func (l *Loader) hasAnyCollection(ctx context.Context) bool {
	for _, kind := range model.Kinds() {
		key := kind.Collection()
		if _, _, ok := l.fallback.Lookup(key); ok {
			return true
		}
		if !l.durableUsable() {
			continue
		}
		_, found, err := l.durable.Get(ctx, key)
		if err != nil {
			l.markDurableDown(err)
			continue
		}
		if found {
			return true
		}
	}
	return false
}

var _ Fallback = (*store.Fallback)(nil)
var _ Durable = (*store.KV)(nil)
