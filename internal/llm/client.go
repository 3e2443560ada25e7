package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// temperature keeps verdicts stable across runs
const temperature = 0.1

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON asks for a JSON response and strips markdown wrappers from it
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Model returns the model name requests are sent to
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured provider
func NewClient(ctx context.Context, config Config) (Client, error) {
	config = config.WithDefaults()

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// BlockedError is returned when the provider refuses to answer a prompt,
// which happens for content its safety filters flag
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked by provider: %s", e.Reason)
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client    *genai.Client
	model     string
	jsonModel *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini client. A non-empty APIURL overrides the endpoint.
func NewGeminiClient(ctx context.Context, config Config) (*GeminiClient, error) {
	config = config.WithDefaults()
	if config.Key == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.Key)}
	if config.APIURL != "" {
		opts = append(opts, option.WithEndpoint(config.APIURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	jsonModel := client.GenerativeModel(config.Model)
	jsonModel.SetTemperature(temperature)
	jsonModel.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client:    client,
		model:     config.Model,
		jsonModel: jsonModel,
	}, nil
}

// GenerateJSON generates JSON content
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	text, err := generate(ctx, c.jsonModel, prompt)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Model returns the model name
func (c *GeminiClient) Model() string {
	return c.model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", &BlockedError{Reason: blockReason(blocked)}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

func blockReason(err *genai.BlockedError) string {
	switch {
	case err.PromptFeedback != nil:
		return err.PromptFeedback.BlockReason.String()
	case err.Candidate != nil:
		return err.Candidate.FinishReason.String()
	default:
		return "unknown"
	}
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &BlockedError{Reason: candidate.FinishReason.String()}
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
