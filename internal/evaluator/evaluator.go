// Package evaluator defines the Evaluator capability and its two variants:
// deterministic rule checks and LLM-backed checks.
package evaluator

import (
	"context"

	"github.com/jonathan/dataqa/internal/types"
)

// Evaluator inspects one unit and returns a verdict
type Evaluator interface {
	// Name identifies the evaluator in results and metrics
	Name() string
	// Kind reports whether this is a rule or an LLM evaluator
	Kind() types.Kind
	// Evaluate checks one unit. Rules never return an error.
	Evaluate(ctx context.Context, data types.Data) (types.Result, error)
}
