// Package rules provides the builtin rule checks registered under the "rule_type" namespace.
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/types"
)

// Quality dimensions reported by failing rules
const (
	TypeEffectiveness     = "QUALITY_BAD_EFFECTIVENESS"
	TypeReadability       = "QUALITY_BAD_READABILITY"
	TypeUnderstandability = "QUALITY_BAD_UNDERSTANDABILITY"
)

// Params carries rule-specific settings from the run configuration
type Params map[string]any

// Spec is a rule entry in the "rule_type" registry. Type is the quality
// dimension stamped on failing verdicts that do not set one.
type Spec struct {
	Key   string
	Type  string
	Build func(params Params) (evaluator.CheckFunc, error)
}

// TypeKey returns the registry key
func (s Spec) TypeKey() string {
	return s.Key
}

// New builds a rule evaluator. An empty name defaults to the spec key.
func (s Spec) New(name string, params Params) (*evaluator.Rule, error) {
	if name == "" {
		name = s.Key
	}
	check, err := s.Build(params)
	if err != nil {
		return nil, fmt.Errorf("invalid params for rule %s: %w", name, err)
	}
	return evaluator.NewRule(name, s.typed(check)), nil
}

func (s Spec) typed(check evaluator.CheckFunc) evaluator.CheckFunc {
	if s.Type == "" {
		return check
	}
	return func(data types.Data) evaluator.Verdict {
		v := check(data)
		if v.Fail && v.Type == "" {
			v.Type = s.Type
		}
		return v
	}
}

// Builtins returns every builtin rule spec
func Builtins() []Spec {
	return []Spec{
		{Key: "content_null", Type: TypeEffectiveness, Build: buildContentNull},
		{Key: "enter_and_space", Type: TypeEffectiveness, Build: buildEnterAndSpace},
		{Key: "forbidden_phrases", Type: TypeEffectiveness, Build: buildForbiddenPhrases},
		{Key: "line_length", Type: TypeReadability, Build: buildLineLength},
		{Key: "special_character", Type: TypeUnderstandability, Build: buildSpecialCharacter},
	}
}

var validate = validator.New()

// decodeParams fills out from params and validates it. Unknown keys are ignored.
func decodeParams(params Params, out any) error {
	if len(params) > 0 {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("failed to decode params: %w", err)
		}
	}
	return validate.Struct(out)
}
