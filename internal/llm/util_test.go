package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"score\": 1}\n```",
			expected: `{"score": 1}`,
		},
		{
			name:     "generic code block with language",
			input:    "```jsonc\n{\"score\": 0, \"name\": \"REPEAT\"}\n```",
			expected: `{"score": 0, "name": "REPEAT"}`,
		},
		{
			name:     "plain verdict",
			input:    `{"score": 1, "reason": []}`,
			expected: `{"score": 1, "reason": []}`,
		},
		{
			name:     "preamble and trailing prose",
			input:    "Here is my assessment:\n{\"score\": 0, \"reason\": [\"repeats\"]}\nHope this helps.",
			expected: `{"score": 0, "reason": ["repeats"]}`,
		},
		{
			name:     "bracketed prose before the verdict",
			input:    "Score range [0-1]: {\"score\": 1}",
			expected: `{"score": 1}`,
		},
		{
			name:     "braces inside strings",
			input:    `Result: {"reason": "template {name} left unfilled", "score": 0}`,
			expected: `{"reason": "template {name} left unfilled", "score": 0}`,
		},
		{
			name:     "escaped quotes",
			input:    `{"reason": "the phrase \"as an AI\" appears", "score": 0}`,
			expected: `{"reason": "the phrase \"as an AI\" appears", "score": 0}`,
		},
		{
			name:     "array of verdicts",
			input:    "Verdicts:\n[{\"score\": 1}, {\"score\": 0}]",
			expected: `[{"score": 1}, {"score": 0}]`,
		},
		{
			name:     "unbalanced object is returned trimmed",
			input:    `  {"score": 1  `,
			expected: `{"score": 1`,
		},
		{
			name:     "no JSON",
			input:    "I cannot evaluate this text.",
			expected: "I cannot evaluate this text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name     string
		extract  func(string) string
		input    string
		expected string
	}{
		{"object with nested array", extractJSONObject, `{"reason": ["a", "b"]} tail`, `{"reason": ["a", "b"]}`},
		{"object closing brace in string", extractJSONObject, `{"span": "}"}`, `{"span": "}"}`},
		{"object not at start", extractJSONObject, `x{"a": 1}`, ""},
		{"object unterminated", extractJSONObject, `{"a": {"b": 1}`, ""},
		{"array of objects", extractJSONArray, `[{"id": 1}, {"id": 2}] extra`, `[{"id": 1}, {"id": 2}]`},
		{"array bracket in string", extractJSONArray, `["[", "]"]`, `["[", "]"]`},
		{"empty input", extractJSONArray, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.extract(tt.input))
		})
	}
}
