// Package config provides run configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/dataqa/internal/convert"
	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/schemas"
)

// Evaluator kinds accepted in configuration
const (
	KindRule = "rule"
	KindLLM  = "llm"
)

// DefaultConcurrency is used when the file does not set concurrency
const DefaultConcurrency = 4

// Config is a run configuration: one dataset and the evaluators applied to it
type Config struct {
	Dataset     DatasetConfig     `yaml:"dataset" json:"dataset" validate:"required"`
	Evaluators  []EvaluatorConfig `yaml:"evaluators" json:"evaluators" validate:"required,min=1,dive"`
	Concurrency int               `yaml:"concurrency,omitempty" json:"concurrency,omitempty" validate:"gte=0,lte=256"`
	FailFast    bool              `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	Output      string            `yaml:"output,omitempty" json:"output,omitempty"` // results file; stdout when empty or "-"
	Prompts     []string          `yaml:"prompts,omitempty" json:"prompts,omitempty" validate:"dive,required"` // extra prompt files
}

// DatasetConfig selects the dataset type, its source and how records are converted
type DatasetConfig struct {
	Type      string          `yaml:"type" json:"type" validate:"required"`
	Name      string          `yaml:"name,omitempty" json:"name,omitempty"`
	Digest    string          `yaml:"digest,omitempty" json:"digest,omitempty"`
	Converter string          `yaml:"converter,omitempty" json:"converter,omitempty"`
	Fields    convert.Options `yaml:"fields,omitempty" json:"fields,omitempty"`
	Source    map[string]any  `yaml:"source" json:"source" validate:"required"`
}

// EvaluatorConfig selects one evaluator
type EvaluatorConfig struct {
	Kind   string         `yaml:"kind" json:"kind" validate:"required,oneof=rule llm"`
	Type   string         `yaml:"type" json:"type" validate:"required"`
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"` // defaults to Type
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Prompt string         `yaml:"prompt,omitempty" json:"prompt,omitempty"` // prompt_type key; LLM default when empty
	LLM    llm.Config     `yaml:"llm,omitempty" json:"llm,omitempty"`
}

// DisplayName returns Name, or Type when Name is empty
func (e EvaluatorConfig) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Type
}

// ValidationError lists the fields that failed struct validation
type ValidationError struct {
	Fields []string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: %s", strings.Join(e.Fields, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

var validate = validator.New()

// Load reads a YAML or JSON run configuration, checks it against the embedded
// schema and validates the decoded struct.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Prompt files are relative to the configuration file
	for i, p := range cfg.Prompts {
		if !filepath.IsAbs(p) {
			cfg.Prompts[i] = filepath.Join(filepath.Dir(path), p)
		}
	}
	return cfg, nil
}

// Parse decodes and validates configuration content
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := schemas.ValidateRunConfig(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct-level constraints and evaluator name uniqueness
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return &ValidationError{Fields: fields, Cause: err}
		}
		return fmt.Errorf("config error: %w", err)
	}

	seen := make(map[string]bool, len(c.Evaluators))
	for _, e := range c.Evaluators {
		name := e.DisplayName()
		if seen[name] {
			return &ValidationError{Fields: []string{fmt.Sprintf("evaluator name %q is used twice", name)}}
		}
		seen[name] = true
	}
	return nil
}

// ApplyEnv fills empty LLM settings from the environment. Keys come from
// DATAQA_LLM_KEY, then OPENAI_API_KEY or GEMINI_API_KEY depending on the provider.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	for i := range c.Evaluators {
		e := &c.Evaluators[i]
		if e.Kind != KindLLM {
			continue
		}
		if e.LLM.Key == "" {
			e.LLM.Key = getenv("DATAQA_LLM_KEY")
		}
		if e.LLM.Key == "" {
			switch e.LLM.WithDefaults().Provider {
			case llm.ProviderGemini:
				e.LLM.Key = getenv("GEMINI_API_KEY")
			default:
				e.LLM.Key = getenv("OPENAI_API_KEY")
			}
		}
		if e.LLM.APIURL == "" {
			e.LLM.APIURL = getenv("DATAQA_LLM_API_URL")
		}
		if e.LLM.Model == "" {
			e.LLM.Model = getenv("DATAQA_LLM_MODEL")
		}
	}
}

// Overrides holds CLI flag values. Zero values leave the file's setting alone.
type Overrides struct {
	DatasetName string
	Concurrency int
	FailFast    bool
	Output      string
}

// MergeFlags applies CLI overrides. FailFast can only be switched on.
func (c *Config) MergeFlags(o Overrides) {
	if o.DatasetName != "" {
		c.Dataset.Name = o.DatasetName
	}
	if o.Concurrency > 0 {
		c.Concurrency = o.Concurrency
	}
	if o.FailFast {
		c.FailFast = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
}
