package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion APIs
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. APIURL, when set, replaces the OpenAI base URL
// so self-hosted compatible servers can be used; those may not need a key.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	config = config.WithDefaults()
	if config.Key == "" && config.APIURL == "" {
		return nil, fmt.Errorf("API key or API URL is required")
	}

	clientConfig := openai.DefaultConfig(config.Key)
	if config.APIURL != "" {
		clientConfig.BaseURL = config.APIURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
	}, nil
}

// GenerateJSON requests a JSON object response
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return CleanJSONBlock(resp.Choices[0].Message.Content), nil
}

// Model returns the model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close is a no-op; the underlying HTTP client holds no per-client resources
func (c *OpenAIClient) Close() error {
	return nil
}
