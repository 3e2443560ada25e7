package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_JSONFields(t *testing.T) {
	score := 0.0
	result := Result{
		DataID:    "123",
		Evaluator: "text_quality_detail",
		Kind:      KindLLM,
		Outcome:   OutcomeFail,
		Type:      "QUALITY_BAD_EFFECTIVENESS",
		Name:      "Repeat",
		Reason:    []string{"the sentence repeats"},
		Score:     &score,
	}

	jsonBytes, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"data_id":"123"`)
	assert.Contains(t, string(jsonBytes), `"kind":"llm"`)
	assert.Contains(t, string(jsonBytes), `"outcome":"fail"`)
	assert.Contains(t, string(jsonBytes), `"score":0`)
	assert.NotContains(t, string(jsonBytes), `"span"`)
	assert.True(t, result.Failed())
}

func TestData_Field(t *testing.T) {
	d := Data{ID: "1", Content: "x", Extra: map[string]any{"lang": "en", "n": 3}}

	assert.Equal(t, "en", d.Field("lang"))
	assert.Equal(t, "", d.Field("n"))
	assert.Equal(t, "", d.Field("missing"))
	assert.Equal(t, "", Data{}.Field("lang"))
}
