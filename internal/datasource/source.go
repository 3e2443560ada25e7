// Package datasource abstracts where raw records come from: local files,
// SQL databases and web pages. A source knows how to open a handle over its
// records and how to describe its identity-bearing configuration; it never
// interprets record content.
package datasource

import (
	"context"
	"io"
)

// Record is one raw record as produced by a source
type Record map[string]any

// Handle iterates the raw records of one Load call.
// Next returns io.EOF once the records are exhausted.
type Handle interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// DataSource is the capability set every source variant provides.
//
// Load opens a fresh, independent handle each time it is called, so repeated
// calls are equivalent. ToDict returns exactly the configuration that
// determines the source's content identity; it is the only input to dataset
// digests and must not depend on the records themselves.
type DataSource interface {
	Load(ctx context.Context) (Handle, error)
	ToDict() map[string]any
	SourceType() string
}

// Source type names reported by SourceType
const (
	TypeLocal = "local"
	TypeSQL   = "sql"
	TypeWeb   = "web"
)

// SliceHandle serves records from memory. It is used by tests and by callers
// that already hold their records.
type SliceHandle struct {
	records []Record
	pos     int
	closed  bool
}

// NewSliceHandle returns a handle over records
func NewSliceHandle(records []Record) *SliceHandle {
	return &SliceHandle{records: records}
}

// Next returns the next record or io.EOF
func (h *SliceHandle) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.closed || h.pos >= len(h.records) {
		return nil, io.EOF
	}
	rec := h.records[h.pos]
	h.pos++
	return rec, nil
}

// Close marks the handle exhausted
func (h *SliceHandle) Close() error {
	h.closed = true
	return nil
}
