package evaluator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dataqa/internal/types"
)

func emptyCheck(data types.Data) Verdict {
	if strings.TrimSpace(data.Content) == "" {
		return Verdict{Fail: true, Type: "QUALITY_BAD_EFFECTIVENESS", Name: "EMPTY", Reason: []string{"content is empty"}}
	}
	return Pass()
}

func TestRule_Evaluate(t *testing.T) {
	rule := NewRule("empty", emptyCheck)
	assert.Equal(t, "empty", rule.Name())
	assert.Equal(t, types.KindRule, rule.Kind())

	tests := []struct {
		name     string
		data     types.Data
		expected types.Result
	}{
		{
			name: "pass",
			data: types.Data{ID: "1", Content: "hello, introduce the world"},
			expected: types.Result{
				DataID: "1", Evaluator: "empty", Kind: types.KindRule, Outcome: types.OutcomePass,
			},
		},
		{
			name: "fail",
			data: types.Data{ID: "2", Content: "  "},
			expected: types.Result{
				DataID: "2", Evaluator: "empty", Kind: types.KindRule, Outcome: types.OutcomeFail,
				Type: "QUALITY_BAD_EFFECTIVENESS", Name: "EMPTY", Reason: []string{"content is empty"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := rule.Evaluate(context.Background(), tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRule_PassDropsDetail(t *testing.T) {
	rule := NewRule("odd", func(types.Data) Verdict {
		return Verdict{Type: "ignored", Reason: []string{"ignored"}}
	})

	result, err := rule.Evaluate(context.Background(), types.Data{ID: "x"})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Empty(t, result.Type)
	assert.Empty(t, result.Reason)
}
