package dataset

import "fmt"

// SourceLoadError represents a failure to acquire the raw handle of a source.
// Dataset construction never returns a partially usable Dataset alongside it.
type SourceLoadError struct {
	SourceType string
	Source     map[string]any
	Cause      error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("failed to load %s source %v: %v", e.SourceType, e.Source, e.Cause)
}

func (e *SourceLoadError) Unwrap() error {
	return e.Cause
}

// DigestError represents a source configuration that cannot be fingerprinted
type DigestError struct {
	SourceType string
	Cause      error
}

func (e *DigestError) Error() string {
	return fmt.Sprintf("failed to compute digest of %s source: %v", e.SourceType, e.Cause)
}

func (e *DigestError) Unwrap() error {
	return e.Cause
}

// ConversionError represents a raw record the converter could not normalize.
// Index is the zero-based position of the record in the raw stream.
type ConversionError struct {
	Dataset string
	Digest  string
	Index   int
	Cause   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("dataset %s (%s): failed to convert record %d: %v", e.Dataset, e.Digest, e.Index, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// ReadError represents a failure to pull the next raw record from the handle.
// It ends the stream.
type ReadError struct {
	Dataset string
	Index   int
	Cause   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("dataset %s: failed to read record %d: %v", e.Dataset, e.Index, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
