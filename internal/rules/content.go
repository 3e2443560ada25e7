package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/types"
)

func buildContentNull(Params) (evaluator.CheckFunc, error) {
	return func(data types.Data) evaluator.Verdict {
		if strings.TrimSpace(data.Content) != "" {
			return evaluator.Pass()
		}
		return evaluator.Verdict{
			Fail:   true,
			Name:   "RuleContentNull",
			Reason: []string{"content is empty"},
		}
	}, nil
}

type enterAndSpaceParams struct {
	MaxNewlines int `json:"max_newlines" validate:"gte=1,lte=1000"`
	MaxSpaces   int `json:"max_spaces" validate:"gte=1,lte=1000"`
}

// buildEnterAndSpace flags runs of line breaks or spaces longer than the limits
func buildEnterAndSpace(params Params) (evaluator.CheckFunc, error) {
	p := enterAndSpaceParams{MaxNewlines: 8, MaxSpaces: 500}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	newlines := regexp.MustCompile(fmt.Sprintf(`(?:\r?\n[ \t]*){%d,}`, p.MaxNewlines))
	spaces := regexp.MustCompile(fmt.Sprintf(`[ \x{3000}]{%d,}`, p.MaxSpaces))

	return func(data types.Data) evaluator.Verdict {
		var reasons []string
		if newlines.MatchString(data.Content) {
			reasons = append(reasons, fmt.Sprintf("content has %d or more consecutive line breaks", p.MaxNewlines))
		}
		if spaces.MatchString(data.Content) {
			reasons = append(reasons, fmt.Sprintf("content has %d or more consecutive spaces", p.MaxSpaces))
		}
		if len(reasons) == 0 {
			return evaluator.Pass()
		}
		return evaluator.Verdict{
			Fail:   true,
			Name:   "RuleEnterAndSpace",
			Reason: reasons,
		}
	}, nil
}
