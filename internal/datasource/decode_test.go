package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		sourceType string
		raw        map[string]any
		expected   DataSource
	}{
		{
			name:       "local",
			sourceType: TypeLocal,
			raw:        map[string]any{"path": "a.jsonl", "format": "jsonl"},
			expected:   &LocalSource{Path: "a.jsonl", Format: "jsonl"},
		},
		{
			name:       "sql",
			sourceType: TypeSQL,
			raw:        map[string]any{"driver": "sqlite", "dsn": "x.db", "query": "SELECT 1"},
			expected:   &SQLSource{Driver: "sqlite", DSN: "x.db", Query: "SELECT 1"},
		},
		{
			name:       "web",
			sourceType: TypeWeb,
			raw:        map[string]any{"urls": []any{"https://example.com"}, "timeout": "5s", "selectors": []any{"main"}},
			expected:   &WebSource{URLs: []string{"https://example.com"}, Timeout: 5 * time.Second, Selectors: []string{"main"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Decode(tt.sourceType, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, src)
			assert.Equal(t, tt.sourceType, src.SourceType())
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		sourceType string
		raw        map[string]any
		errMsg     string
	}{
		{name: "unknown key", sourceType: TypeLocal, raw: map[string]any{"path": "a", "colour": "red"}, errMsg: "unknown field"},
		{name: "missing path", sourceType: TypeLocal, raw: map[string]any{"format": "json"}, errMsg: "path is required"},
		{name: "bad timeout", sourceType: TypeWeb, raw: map[string]any{"urls": []any{"https://a"}, "timeout": "soon"}, errMsg: "timeout"},
		{name: "unknown type", sourceType: "s3", raw: map[string]any{}, errMsg: "unknown source type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.sourceType, tt.raw)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
