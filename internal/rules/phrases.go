package rules

import (
	"fmt"
	"strings"

	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/types"
)

type forbiddenPhrasesParams struct {
	Phrases []string `json:"phrases" validate:"required,min=1,dive,required"`
}

// buildForbiddenPhrases matches phrases case-insensitively with whitespace collapsed
func buildForbiddenPhrases(params Params) (evaluator.CheckFunc, error) {
	var p forbiddenPhrasesParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(p.Phrases))
	for _, phrase := range p.Phrases {
		if n := normalizeForMatching(phrase); n != "" {
			normalized = append(normalized, n)
		}
	}

	return func(data types.Data) evaluator.Verdict {
		content := normalizeForMatching(data.Content)

		var reasons []string
		span := ""
		for i, phrase := range normalized {
			if strings.Contains(content, phrase) {
				reasons = append(reasons, fmt.Sprintf("contains forbidden phrase: %s", p.Phrases[i]))
				if span == "" {
					span = p.Phrases[i]
				}
			}
		}
		if len(reasons) == 0 {
			return evaluator.Pass()
		}
		return evaluator.Verdict{
			Fail:   true,
			Name:   "RuleForbiddenPhrases",
			Reason: reasons,
			Span:   span,
		}
	}, nil
}

func normalizeForMatching(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
