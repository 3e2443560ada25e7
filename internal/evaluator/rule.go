package evaluator

import (
	"context"

	"github.com/jonathan/dataqa/internal/types"
)

// Verdict is what a rule check decides about one unit
type Verdict struct {
	Fail   bool
	Type   string
	Name   string
	Reason []string
	Span   string
}

// Pass is the verdict for a unit with no issue
func Pass() Verdict {
	return Verdict{}
}

// CheckFunc is a pure check over a unit
type CheckFunc func(data types.Data) Verdict

// Rule evaluates units with a CheckFunc
type Rule struct {
	name  string
	check CheckFunc
}

// NewRule creates a rule evaluator
func NewRule(name string, check CheckFunc) *Rule {
	return &Rule{name: name, check: check}
}

// Name returns the evaluator name
func (r *Rule) Name() string {
	return r.name
}

// Kind returns types.KindRule
func (r *Rule) Kind() types.Kind {
	return types.KindRule
}

// Evaluate runs the check. The error is always nil.
func (r *Rule) Evaluate(_ context.Context, data types.Data) (types.Result, error) {
	v := r.check(data)

	result := types.Result{
		DataID:    data.ID,
		Evaluator: r.name,
		Kind:      types.KindRule,
		Outcome:   types.OutcomePass,
	}
	if v.Fail {
		result.Outcome = types.OutcomeFail
		result.Type = v.Type
		result.Name = v.Name
		result.Reason = v.Reason
		result.Span = v.Span
	}
	return result, nil
}
