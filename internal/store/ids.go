package store

import (
	"github.com/google/uuid"

	"planner-cli/internal/model"
)

// NewID returns <prefix>-<uuidv7>. UUIDv7 leads with a millisecond timestamp and ends in random
// bits, so ids sort by creation time and do not collide within a session.
func NewID(kind model.Kind) (model.ID, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return model.ID(idPrefix(kind) + "-" + u.String()), nil
}

func idPrefix(kind model.Kind) string {
	if kind == model.KindTask {
		return "tsk"
	}
	return "evt"
}
