package cli

import (
	"errors"
	"fmt"

	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

type notFoundError struct {
	kind model.Kind
	id   model.ID
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func (e notFoundError) Unwrap() error { return store.ErrNotFound }

func errNotFound(kind model.Kind, id model.ID) error {
	return notFoundError{kind: kind, id: id}
}

var errNothingToUpdate = errors.New("nothing to update: pass at least one field flag")

var errClearNeedsYes = errors.New("refusing to clear without --yes")
