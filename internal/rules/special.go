package rules

import (
	"fmt"
	"regexp"

	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/types"
)

// defaultSpecialPatterns match characters left behind by broken encoding or scraping
var defaultSpecialPatterns = []string{
	`\x{FFFD}`,
	`[\x{200B}-\x{200F}\x{FEFF}]`,
	`(?:&nbsp;){3,}`,
	`(?:\{\}){3,}`,
	`(?:\\;){3,}`,
	`[♥♠♦♣☀☁☂☃★☆☎☏⚠♀♂♪♫♬♩]`,
}

type specialCharacterParams struct {
	Patterns []string `json:"patterns" validate:"omitempty,dive,required"`
}

// buildSpecialCharacter flags content matching any of the patterns
func buildSpecialCharacter(params Params) (evaluator.CheckFunc, error) {
	var p specialCharacterParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Patterns) == 0 {
		p.Patterns = defaultSpecialPatterns
	}

	patterns := make([]*regexp.Regexp, 0, len(p.Patterns))
	for _, expr := range p.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}

	return func(data types.Data) evaluator.Verdict {
		for _, re := range patterns {
			if match := re.FindString(data.Content); match != "" {
				return evaluator.Verdict{
					Fail:   true,
					Name:   "RuleSpecialCharacter",
					Reason: []string{fmt.Sprintf("content matches %s", re.String())},
					Span:   match,
				}
			}
		}
		return evaluator.Pass()
	}, nil
}
