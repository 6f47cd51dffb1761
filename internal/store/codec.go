package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"planner-cli/internal/model"
)

// EncodeList serializes a collection as a JSON array. A nil slice encodes as [].
func EncodeList(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}

// DecodeList parses a collection. Anything other than a JSON array of records
// (including null) is ErrMalformedRecord.
func DecodeList(b []byte) ([]model.Record, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, fmt.Errorf("%w: value is not a JSON array", ErrMalformedRecord)
	}
	var out []model.Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if out == nil {
		out = []model.Record{}
	}
	return out, nil
}
