// Package convert provides the builtin converters that normalize raw records
// into canonical units. They are registered under the "converter_type" namespace.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/dataqa/internal/dataset"
	"github.com/jonathan/dataqa/internal/datasource"
	"github.com/jonathan/dataqa/internal/types"
)

// Default field names
const (
	DefaultIDField      = "id"
	DefaultContentField = "content"
	PlaintextField      = "text"
)

// Options maps record fields onto unit fields. Empty fields use the defaults.
type Options struct {
	IDField      string `json:"id,omitempty" yaml:"id,omitempty"`
	ContentField string `json:"content,omitempty" yaml:"content,omitempty"`
	PromptField  string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

func (o Options) withDefaults(content string) Options {
	if o.IDField == "" {
		o.IDField = DefaultIDField
	}
	if o.ContentField == "" {
		o.ContentField = content
	}
	return o
}

// Spec is a converter entry in the "converter_type" registry
type Spec struct {
	Key   string
	Build func(opts Options) dataset.Converter
}

// TypeKey returns the registry key
func (s Spec) TypeKey() string {
	return s.Key
}

// Builtins returns every builtin converter spec
func Builtins() []Spec {
	return []Spec{
		{Key: "plaintext", Build: Plaintext},
		{Key: "json", Build: JSON},
		{Key: "sentences", Build: Sentences},
		{Key: "html", Build: HTML},
	}
}

// Plaintext maps the text field (or the configured content field) to content.
// Other fields are dropped.
func Plaintext(opts Options) dataset.Converter {
	opts = opts.withDefaults(PlaintextField)
	return func(rec datasource.Record) (dataset.Conversion, error) {
		content, err := fieldString(rec, opts.ContentField)
		if err != nil {
			return dataset.Conversion{}, err
		}
		return dataset.One(types.Data{
			ID:      recordID(rec, opts.IDField),
			Content: content,
		}), nil
	}
}

// JSON maps configured fields onto the unit and keeps all remaining fields in Extra
func JSON(opts Options) dataset.Converter {
	opts = opts.withDefaults(DefaultContentField)
	return func(rec datasource.Record) (dataset.Conversion, error) {
		d, err := toData(rec, opts)
		if err != nil {
			return dataset.Conversion{}, err
		}
		return dataset.One(d), nil
	}
}

// Sentences fans one record out into one unit per sentence. Unit ids are
// "<record id>-<n>" with n starting at 0; the parent id is kept in Extra.
func Sentences(opts Options) dataset.Converter {
	opts = opts.withDefaults(DefaultContentField)
	return func(rec datasource.Record) (dataset.Conversion, error) {
		parent, err := toData(rec, opts)
		if err != nil {
			return dataset.Conversion{}, err
		}

		sentences := SplitSentences(parent.Content)
		units := make([]types.Data, 0, len(sentences))
		for i, sentence := range sentences {
			extra := make(map[string]any, len(parent.Extra)+1)
			for k, v := range parent.Extra {
				extra[k] = v
			}
			extra["parent_id"] = parent.ID
			units = append(units, types.Data{
				ID:      fmt.Sprintf("%s-%d", parent.ID, i),
				Prompt:  parent.Prompt,
				Content: sentence,
				Extra:   extra,
			})
		}
		return dataset.Many(units...), nil
	}
}

// HTML treats the content field as markup and keeps only its visible text
func HTML(opts Options) dataset.Converter {
	opts = opts.withDefaults(DefaultContentField)
	return func(rec datasource.Record) (dataset.Conversion, error) {
		d, err := toData(rec, opts)
		if err != nil {
			return dataset.Conversion{}, err
		}
		text, err := datasource.ExtractMainText(d.Content, nil)
		if err != nil {
			return dataset.Conversion{}, err
		}
		d.Content = text
		return dataset.One(d), nil
	}
}

func toData(rec datasource.Record, opts Options) (types.Data, error) {
	content, err := fieldString(rec, opts.ContentField)
	if err != nil {
		return types.Data{}, err
	}

	d := types.Data{
		ID:      recordID(rec, opts.IDField),
		Content: content,
	}
	if opts.PromptField != "" {
		if prompt, err := fieldString(rec, opts.PromptField); err == nil {
			d.Prompt = prompt
		}
	}

	for k, v := range rec {
		if k == opts.IDField || k == opts.ContentField || k == opts.PromptField {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any, len(rec))
		}
		d.Extra[k] = v
	}
	return d, nil
}

// recordID returns the record's id field, or a generated one
func recordID(rec datasource.Record, field string) string {
	if v, ok := rec[field]; ok && v != nil {
		if s := stringify(v); s != "" {
			return s
		}
	}
	return uuid.NewString()
}

func fieldString(rec datasource.Record, field string) (string, error) {
	v, ok := rec[field]
	if !ok || v == nil {
		return "", fmt.Errorf("record has no %q field", field)
	}
	return stringify(v), nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// SplitSentences splits text after sentence-ending punctuation followed by
// whitespace or end of text. Empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if !isSentenceEnd(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && !isFullWidthEnd(r) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return isFullWidthEnd(r)
}

func isFullWidthEnd(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}
