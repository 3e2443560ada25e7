// Package catalog owns the registries of a process. Entries are registered
// during initialization, then the catalog is frozen and only read.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/dataqa/internal/config"
	"github.com/jonathan/dataqa/internal/convert"
	"github.com/jonathan/dataqa/internal/dataset"
	"github.com/jonathan/dataqa/internal/datasource"
	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/logging"
	"github.com/jonathan/dataqa/internal/prompts"
	"github.com/jonathan/dataqa/internal/registry"
	"github.com/jonathan/dataqa/internal/rules"
)

// Registry namespaces
const (
	NamespaceDataset   = "dataset_type"
	NamespaceConverter = "converter_type"
	NamespaceRule      = "rule_type"
	NamespaceLLM       = "llm_type"
	NamespacePrompt    = "prompt_type"
)

// Catalog groups one registry per namespace
type Catalog struct {
	Datasets   *registry.Registry[dataset.Type]
	Converters *registry.Registry[convert.Spec]
	Rules      *registry.Registry[rules.Spec]
	LLMs       *registry.Registry[evaluator.LLMSpec]
	Prompts    *registry.Registry[prompts.Template]

	namer         *dataset.Namer
	clientFactory evaluator.ClientFactory
	promptFiles   []string
	logger        *slog.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithNamer sets the generator for dataset names
func WithNamer(n *dataset.Namer) Option {
	return func(c *Catalog) { c.namer = n }
}

// WithClientFactory sets how LLM evaluators build their clients
func WithClientFactory(f evaluator.ClientFactory) Option {
	return func(c *Catalog) { c.clientFactory = f }
}

// WithPromptFiles adds prompt files that Default registers after the builtins
func WithPromptFiles(paths ...string) Option {
	return func(c *Catalog) { c.promptFiles = append(c.promptFiles, paths...) }
}

// WithLogger sets the catalog logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New returns an empty catalog open for registration
func New(opts ...Option) *Catalog {
	c := &Catalog{
		Datasets:      registry.New[dataset.Type](NamespaceDataset),
		Converters:    registry.New[convert.Spec](NamespaceConverter),
		Rules:         registry.New[rules.Spec](NamespaceRule),
		LLMs:          registry.New[evaluator.LLMSpec](NamespaceLLM),
		Prompts:       registry.New[prompts.Template](NamespacePrompt),
		namer:         dataset.NewNamer(),
		clientFactory: llm.NewClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.New("catalog")
	}
	return c
}

// Default returns a frozen catalog holding every builtin and the prompts of
// any files passed with WithPromptFiles
func Default(opts ...Option) (*Catalog, error) {
	c := New(opts...)
	if err := c.RegisterBuiltins(); err != nil {
		return nil, err
	}
	if err := c.RegisterPromptFiles(c.promptFiles...); err != nil {
		return nil, err
	}
	c.Freeze()
	return c, nil
}

// RegisterBuiltins registers the builtin entries of every namespace
func (c *Catalog) RegisterBuiltins() error {
	for _, t := range []dataset.Type{dataset.LocalType(), dataset.SQLType(), dataset.WebType()} {
		if err := c.Datasets.RegisterTyped(t); err != nil {
			return err
		}
	}
	for _, s := range convert.Builtins() {
		if err := c.Converters.RegisterTyped(s); err != nil {
			return err
		}
	}
	for _, s := range rules.Builtins() {
		if err := c.Rules.RegisterTyped(s); err != nil {
			return err
		}
	}
	for _, s := range evaluator.LLMBuiltins() {
		if err := c.LLMs.RegisterTyped(s); err != nil {
			return err
		}
	}

	templates, err := prompts.Builtins()
	if err != nil {
		return fmt.Errorf("failed to load builtin prompts: %w", err)
	}
	for _, t := range templates {
		if err := c.Prompts.RegisterTyped(t); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPromptFiles registers every prompt of each file. A key that is
// already registered, builtin or not, is rejected.
func (c *Catalog) RegisterPromptFiles(paths ...string) error {
	for _, path := range paths {
		set, err := prompts.LoadFile(path)
		if err != nil {
			return err
		}
		for _, t := range set.Templates() {
			if err := c.Prompts.RegisterTyped(t); err != nil {
				return fmt.Errorf("prompt file %s: %w", path, err)
			}
		}
		c.logger.Debug("registered prompt file", "path", path, "prompts", len(set))
	}
	return nil
}

// Freeze ends the initialization phase of every registry
func (c *Catalog) Freeze() {
	c.Datasets.Freeze()
	c.Converters.Freeze()
	c.Rules.Freeze()
	c.LLMs.Freeze()
	c.Prompts.Freeze()
}

// Describe lists the registered keys per namespace
func (c *Catalog) Describe() map[string][]string {
	return map[string][]string{
		NamespaceDataset:   c.Datasets.Keys(),
		NamespaceConverter: c.Converters.Keys(),
		NamespaceRule:      c.Rules.Keys(),
		NamespaceLLM:       c.LLMs.Keys(),
		NamespacePrompt:    c.Prompts.Keys(),
	}
}

// OpenDataset resolves the dataset type, source and converter named in cfg
// and constructs the dataset.
func (c *Catalog) OpenDataset(ctx context.Context, cfg config.DatasetConfig) (*dataset.Dataset, error) {
	typ, err := c.Datasets.Get(cfg.Type)
	if err != nil {
		return nil, err
	}

	src, err := datasource.Decode(typ.SourceType, cfg.Source)
	if err != nil {
		return nil, err
	}

	convKey := cfg.Converter
	if convKey == "" {
		convKey = typ.DefaultConverter
	}
	conv, err := c.Converters.Get(convKey)
	if err != nil {
		return nil, err
	}

	ds, err := typ.Open(ctx, src, conv.Build(cfg.Fields), dataset.Options{
		Name:   cfg.Name,
		Digest: cfg.Digest,
		Namer:  c.namer,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("opened dataset", "name", ds.Name(), "type", ds.Type(), "converter", convKey)
	return ds, nil
}

// BuildEvaluators resolves every evaluator entry. LLM clients are not built here.
func (c *Catalog) BuildEvaluators(cfgs []config.EvaluatorConfig) ([]evaluator.Evaluator, error) {
	evaluators := make([]evaluator.Evaluator, 0, len(cfgs))
	for _, cfg := range cfgs {
		e, err := c.buildEvaluator(cfg)
		if err != nil {
			return nil, fmt.Errorf("evaluator %s: %w", cfg.DisplayName(), err)
		}
		evaluators = append(evaluators, e)
	}
	return evaluators, nil
}

func (c *Catalog) buildEvaluator(cfg config.EvaluatorConfig) (evaluator.Evaluator, error) {
	switch cfg.Kind {
	case config.KindRule:
		spec, err := c.Rules.Get(cfg.Type)
		if err != nil {
			return nil, err
		}
		return spec.New(cfg.DisplayName(), rules.Params(cfg.Params))

	case config.KindLLM:
		spec, err := c.LLMs.Get(cfg.Type)
		if err != nil {
			return nil, err
		}
		promptKey := cfg.Prompt
		if promptKey == "" {
			promptKey = spec.DefaultPrompt
		}
		tmpl, err := c.Prompts.Get(promptKey)
		if err != nil {
			return nil, err
		}
		caller := evaluator.NewClientCallerWith(cfg.LLM, c.clientFactory)
		c.logger.Debug("configured LLM evaluator", "name", cfg.DisplayName(), "prompt", promptKey, "llm", cfg.LLM.Redacted())
		return evaluator.NewLLM(cfg.DisplayName(), tmpl, caller, spec.Parse), nil

	default:
		return nil, fmt.Errorf("unknown evaluator kind %q", cfg.Kind)
	}
}
