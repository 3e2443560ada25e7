package datasource

import "fmt"

// FormatError represents a record that cannot be decoded in the source's format
type FormatError struct {
	Path    string
	Line    int
	Message string
	Cause   error
}

func (e *FormatError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("format error at %s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("format error at %s: %s", loc, e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// FetchError represents an error while retrieving a remote page
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// RecordError represents one record a handle could not produce. The handle
// stays usable: the next call moves on to the following record. Position is
// the zero-based place of the record within its file or URL list.
type RecordError struct {
	Position int
	Cause    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Position, e.Cause)
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}
