package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "types")
	require.NoError(t, err)

	assert.Contains(t, stdout, "REGISTERED TYPES")
	assert.Contains(t, stdout, "enter_and_space")
	assert.Contains(t, stdout, "text_quality_detail")
}

func TestTypesCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "types", "--json")
	require.NoError(t, err)

	var namespaces map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &namespaces))
	assert.Equal(t, []string{"local", "sql", "web"}, namespaces["dataset_type"])
	assert.Contains(t, namespaces["prompt_type"], "repeat")
}
