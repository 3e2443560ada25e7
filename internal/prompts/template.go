package prompts

import (
	"fmt"

	"github.com/jonathan/dataqa/internal/types"
)

// Template is a prompt registered under the "prompt_type" namespace.
// Body may reference {{.Content}}, {{.Prompt}} and {{.ID}}.
type Template struct {
	Key  string
	Body string
}

// TypeKey returns the registry key
func (t Template) TypeKey() string {
	return t.Key
}

// Render fills the template with the unit's fields
func (t Template) Render(data types.Data) (string, error) {
	if t.Body == "" {
		return "", fmt.Errorf("prompt %q has an empty body", t.Key)
	}
	return Format(t.Body, map[string]string{
		"ID":      data.ID,
		"Prompt":  data.Prompt,
		"Content": data.Content,
	}), nil
}

// Builtins returns one Template per key in the quality prompt file
func Builtins() ([]Template, error) {
	set, err := builtinSet(QualityFile)
	if err != nil {
		return nil, err
	}
	return set.Templates(), nil
}
