// Package types provides type definitions for structured data used throughout the dataqa system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Outcome classifies a verdict.
type Outcome string

// Outcome values
const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Kind identifies the evaluator variant that produced a result
type Kind string

// Evaluator kinds
const (
	KindRule Kind = "rule"
	KindLLM  Kind = "llm"
)

// Result is the verdict of one evaluator for one Data unit.
type Result struct {
	DataID    string   `json:"data_id"`
	Evaluator string   `json:"evaluator"`
	Kind      Kind     `json:"kind"`
	Outcome   Outcome  `json:"outcome"`
	Type      string   `json:"type,omitempty"` // quality dimension, e.g. QUALITY_BAD_EFFECTIVENESS
	Name      string   `json:"name,omitempty"` // label within the dimension
	Reason    []string `json:"reason,omitempty"`
	Span      string   `json:"span,omitempty"` // matched text, when a rule can point at one
	Score     *float64 `json:"score,omitempty"`
}

// Failed reports whether the unit did not pass the check.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFail
}
