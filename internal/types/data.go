// Package types provides type definitions for structured data used throughout the dataqa system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Data is the canonical evaluation unit every raw record is normalized into.
// ID and Content are always present; Extra carries normalized fields a converter
// chose to keep. A Data value is treated as immutable once a stream yields it.
type Data struct {
	ID      string         `json:"data_id"`
	Prompt  string         `json:"prompt,omitempty"`
	Content string         `json:"content"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Field returns an extra field as a string, or "" when it is absent or not a string.
func (d Data) Field(name string) string {
	if d.Extra == nil {
		return ""
	}
	s, _ := d.Extra[name].(string)
	return s
}
