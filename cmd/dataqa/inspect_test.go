package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	data := writeFixture(t, dir, "a.jsonl", evalData)
	cfg := writeFixture(t, dir, "run.yaml", fmt.Sprintf(`
dataset:
  type: local
  converter: plaintext
  source: {path: %q}
evaluators: [{kind: rule, type: content_null}]
`, data))

	stdout, _, err := executeCommand(t, "inspect", "--config", cfg, "--json", "--limit", "5")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(stdout))
	var info map[string]string
	require.NoError(t, dec.Decode(&info))
	assert.Equal(t, "local", info["source_type"])
	assert.Equal(t, "null", info["profile"])
	assert.Len(t, info["digest"], 8)
	assert.Contains(t, info["name"], "local-")

	assert.Contains(t, stdout, `"data_id":"1"`)
	assert.Contains(t, stdout, "# record 2 skipped")
}

func TestInspectCommand_Limit(t *testing.T) {
	dir := t.TempDir()
	data := writeFixture(t, dir, "a.txt", "one\ntwo\nthree\n")
	cfg := writeFixture(t, dir, "run.yaml", fmt.Sprintf(`
dataset:
  type: local
  name: lines
  converter: plaintext
  source: {path: %q, format: plaintext}
evaluators: [{kind: rule, type: content_null}]
`, data))

	stdout, _, err := executeCommand(t, "inspect", "--config", cfg, "-n", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "DATASET")
	assert.Contains(t, stdout, `"content":"one"`)
	assert.Contains(t, stdout, `"content":"two"`)
	assert.NotContains(t, stdout, `"content":"three"`)
}
