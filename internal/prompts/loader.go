// Package prompts provides the prompt templates used by LLM evaluators.
// Builtin templates are embedded at compile time; more can be loaded from
// JSON or YAML files mapping prompt keys to template bodies.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.json
var builtinFiles embed.FS

// QualityFile holds the builtin quality prompts
const QualityFile = "quality.json"

// Set maps prompt keys to template bodies
type Set map[string]string

// Keys returns the prompt keys, sorted
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Templates returns one Template per key, sorted by key
func (s Set) Templates() []Template {
	templates := make([]Template, 0, len(s))
	for _, key := range s.Keys() {
		templates = append(templates, Template{Key: key, Body: s[key]})
	}
	return templates
}

// builtin caches the parsed embedded files; they never change at runtime
var (
	builtin   = make(map[string]Set)
	builtinMu sync.RWMutex
)

func builtinSet(filename string) (Set, error) {
	builtinMu.RLock()
	set, ok := builtin[filename]
	builtinMu.RUnlock()
	if ok {
		return set, nil
	}

	set, err := Load(builtinFiles, filename)
	if err != nil {
		return nil, err
	}

	builtinMu.Lock()
	builtin[filename] = set
	builtinMu.Unlock()
	return set, nil
}

// Load parses a prompt file from fsys. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. Empty bodies are rejected.
func Load(fsys fs.FS, name string) (Set, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
	}

	var set Set
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		err = json.Unmarshal(data, &set)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("prompt file %s defines no prompts", name)
	}

	for key, body := range set {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("prompt file %s has an empty key", name)
		}
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("prompt %q in %s has an empty body", key, name)
		}
	}
	return set, nil
}

// LoadFile parses a prompt file from disk
func LoadFile(path string) (Set, error) {
	return Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Substitution is a single pass: placeholders inside substituted values are
// left as they are.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for _, key := range Set(data).Keys() {
		pairs = append(pairs, fmt.Sprintf("{{.%s}}", key), data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
