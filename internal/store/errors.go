package store

import "errors"

// Failure taxonomy shared by the stores and everything layered on them.
// Wrap with %w and test with errors.Is.
var (
	// ErrStoreUnavailable: the durable engine could not be opened or failed mid-operation.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrQuotaExceeded: the fallback origin would grow past its byte quota.
	ErrQuotaExceeded = errors.New("store quota exceeded")
	// ErrMalformedRecord: stored content is not a JSON array of records, or a record fails validation.
	ErrMalformedRecord = errors.New("malformed record")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownField    = errors.New("unknown field")
	// ErrWriteLost: neither store accepted a write, so the change will not survive a restart.
	ErrWriteLost = errors.New("write lost: no store accepted the change")
)
