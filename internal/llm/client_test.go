package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Routing(t *testing.T) {
	client, err := NewClient(context.Background(), Config{APIURL: "http://localhost:8000/v1"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, DefaultModels[ProviderOpenAI], client.Model())
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), Config{Provider: "claude", Key: "k"})
	assert.ErrorContains(t, err, `unsupported LLM provider "claude"`)

	_, err = NewClient(context.Background(), Config{Provider: ProviderGemini})
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(context.Background(), Config{})
	assert.ErrorContains(t, err, "API key or API URL is required")
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
		blocked bool
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: "no candidates",
		},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"score": `), genai.Text(`1}`)}},
			}}},
			want: `{"score": 1}`,
		},
		{
			name: "no text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
			}}},
			wantErr: "no text parts",
		},
		{
			name:    "missing content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: "no content",
		},
		{
			name: "safety stop",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			wantErr: "response blocked by provider",
			blocked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				if tt.blocked {
					var blocked *BlockedError
					assert.ErrorAs(t, err, &blocked)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockReason(t *testing.T) {
	assert.Equal(t, "unknown", blockReason(&genai.BlockedError{}))
	assert.Equal(t, genai.FinishReasonSafety.String(), blockReason(&genai.BlockedError{
		Candidate: &genai.Candidate{FinishReason: genai.FinishReasonSafety},
	}))
}
