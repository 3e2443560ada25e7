package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/types"
)

type lineLengthParams struct {
	Max int `json:"max" validate:"gte=1"`
}

// buildLineLength flags lines longer than max characters
func buildLineLength(params Params) (evaluator.CheckFunc, error) {
	p := lineLengthParams{Max: 1000}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return func(data types.Data) evaluator.Verdict {
		var reasons []string
		span := ""
		for i, line := range strings.Split(data.Content, "\n") {
			line = strings.TrimRight(line, "\r")
			n := utf8.RuneCountInString(strings.TrimSpace(line))
			if n <= p.Max {
				continue
			}
			reasons = append(reasons, fmt.Sprintf("line %d has %d characters, maximum is %d", i+1, n, p.Max))
			if span == "" {
				span = line
			}
		}
		if len(reasons) == 0 {
			return evaluator.Pass()
		}
		return evaluator.Verdict{
			Fail:   true,
			Name:   "RuleLineLength",
			Reason: reasons,
			Span:   span,
		}
	}, nil
}
