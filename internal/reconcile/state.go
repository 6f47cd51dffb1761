package reconcile

import "planner-cli/internal/model"

type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
)

// Source names the store the canonical list was last taken from or persisted to.
type Source string

const (
	SourceNone     Source = ""
	SourceDurable  Source = "durable"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// State is the loader's view of one collection. There is no failure phase:
// every load and save ends in PhaseReady with some source.
type State struct {
	Phase       Phase  `json:"phase"`
	Source      Source `json:"source,omitempty"`
	Count       int    `json:"count"`
	DurableDown bool   `json:"durableDown"`
}

// Snapshot is a private copy of a collection handed to listeners.
type Snapshot struct {
	Kind    model.Kind
	Records []model.Record
	Source  Source
}

// Listener is implemented by whatever renders the collections.
// Calls arrive on the goroutine that performed the save and must not block for long.
type Listener interface {
	CollectionChanged(Snapshot)
	// WriteLost reports a save that neither store accepted.
	WriteLost(kind model.Kind, err error)
}
