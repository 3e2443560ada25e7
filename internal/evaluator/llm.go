package evaluator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/types"
)

// Renderer turns a unit into a prompt
type Renderer interface {
	Render(data types.Data) (string, error)
}

// Caller sends a prompt to a remote model and returns its raw response
type Caller interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// ResponseParser turns a raw response into a verdict. The returned result
// only needs Outcome and the detail fields; identity fields are filled by LLM.
type ResponseParser func(raw string) (types.Result, error)

// LLM evaluates units by rendering a prompt, calling a model and parsing the reply
type LLM struct {
	name     string
	renderer Renderer
	caller   Caller
	parse    ResponseParser
}

// NewLLM creates an LLM evaluator
func NewLLM(name string, renderer Renderer, caller Caller, parse ResponseParser) *LLM {
	return &LLM{
		name:     name,
		renderer: renderer,
		caller:   caller,
		parse:    parse,
	}
}

// Name returns the evaluator name
func (e *LLM) Name() string {
	return e.name
}

// Kind returns types.KindLLM
func (e *LLM) Kind() types.Kind {
	return types.KindLLM
}

// Evaluate renders, calls and parses. Call failures are *RemoteCallError and
// parse failures are *ResponseParseError.
func (e *LLM) Evaluate(ctx context.Context, data types.Data) (types.Result, error) {
	prompt, err := e.renderer.Render(data)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to render prompt for %s: %w", e.name, err)
	}

	raw, err := e.caller.Call(ctx, prompt)
	if err != nil {
		return types.Result{}, &RemoteCallError{Evaluator: e.name, DataID: data.ID, Cause: err}
	}

	result, err := e.parse(raw)
	if err != nil {
		return types.Result{}, &ResponseParseError{Evaluator: e.name, DataID: data.ID, Raw: raw, Cause: err}
	}

	result.DataID = data.ID
	result.Evaluator = e.name
	result.Kind = types.KindLLM
	return result, nil
}

// Close releases the caller's resources when it holds any
func (e *LLM) Close() error {
	if c, ok := e.caller.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ClientFactory builds an llm.Client from configuration
type ClientFactory func(ctx context.Context, config llm.Config) (llm.Client, error)

// ClientCaller is a Caller backed by an llm.Client that is built on first use.
// A failed construction is retried on the next call.
type ClientCaller struct {
	config  llm.Config
	factory ClientFactory

	mu     sync.Mutex
	client llm.Client
}

// NewClientCaller returns a caller that builds its client with llm.NewClient
func NewClientCaller(config llm.Config) *ClientCaller {
	return &ClientCaller{config: config, factory: llm.NewClient}
}

// NewClientCallerWith returns a caller that builds its client with factory
func NewClientCallerWith(config llm.Config, factory ClientFactory) *ClientCaller {
	return &ClientCaller{config: config, factory: factory}
}

// Call sends the prompt as a JSON request
func (c *ClientCaller) Call(ctx context.Context, prompt string) (string, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return "", err
	}
	return client.GenerateJSON(ctx, prompt)
}

func (c *ClientCaller) getClient(ctx context.Context) (llm.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := c.factory(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	c.client = client
	return client, nil
}

// Close closes the client if it was built
func (c *ClientCaller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
