package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/types"
)

func newTestLLM(client *MockClient, calls *int) *LLM {
	caller := NewClientCallerWith(llm.Config{}, mockFactory(client, calls))
	return NewLLM("text_quality_detail", staticRenderer{}, caller, ParseQualityDetail)
}

func TestLLM_EvaluatePass(t *testing.T) {
	var prompt string
	client := &MockClient{
		GenerateJSONFunc: func(_ context.Context, p string) (string, error) {
			prompt = p
			return `{"score": 1, "type": "", "name": "", "reason": []}`, nil
		},
	}
	calls := 0
	e := newTestLLM(client, &calls)

	result, err := e.Evaluate(context.Background(), types.Data{ID: "123", Content: "hello, introduce the world"})
	require.NoError(t, err)

	assert.Equal(t, "check: hello, introduce the world", prompt)
	assert.Equal(t, "123", result.DataID)
	assert.Equal(t, "text_quality_detail", result.Evaluator)
	assert.Equal(t, types.KindLLM, result.Kind)
	assert.Equal(t, types.OutcomePass, result.Outcome)
	require.NotNil(t, result.Score)
	assert.Equal(t, 1.0, *result.Score)
	assert.Empty(t, result.Type)
}

func TestLLM_EvaluateFail(t *testing.T) {
	client := &MockClient{
		GenerateJSONFunc: func(context.Context, string) (string, error) {
			return "```json\n{\"score\": 0, \"type\": \"QUALITY_BAD_EFFECTIVENESS\", \"name\": \"REPEAT\", \"reason\": \"world world world\"}\n```", nil
		},
	}
	calls := 0
	result, err := newTestLLM(client, &calls).Evaluate(context.Background(), types.Data{ID: "9", Content: "x"})
	require.NoError(t, err)

	assert.True(t, result.Failed())
	assert.Equal(t, "QUALITY_BAD_EFFECTIVENESS", result.Type)
	assert.Equal(t, "REPEAT", result.Name)
	assert.Equal(t, []string{"world world world"}, result.Reason)
}

func TestLLM_RemoteCallError(t *testing.T) {
	boom := errors.New("connection refused")
	client := &MockClient{
		GenerateJSONFunc: func(context.Context, string) (string, error) {
			return "", boom
		},
	}
	calls := 0
	_, err := newTestLLM(client, &calls).Evaluate(context.Background(), types.Data{ID: "1", Content: "x"})

	var callErr *RemoteCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "1", callErr.DataID)
	assert.ErrorIs(t, err, boom)
}

func TestLLM_ResponseParseError(t *testing.T) {
	client := &MockClient{
		GenerateJSONFunc: func(context.Context, string) (string, error) {
			return "I cannot rate this text.", nil
		},
	}
	calls := 0
	_, err := newTestLLM(client, &calls).Evaluate(context.Background(), types.Data{ID: "1", Content: "x"})

	var parseErr *ResponseParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "I cannot rate this text.", parseErr.Raw)
}

func TestClientCaller_BuildsClientOnce(t *testing.T) {
	client := &MockClient{}
	calls := 0
	caller := NewClientCallerWith(llm.Config{}, mockFactory(client, &calls))
	assert.Equal(t, 0, calls)

	for i := 0; i < 3; i++ {
		_, err := caller.Call(context.Background(), "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, caller.Close())
	assert.True(t, client.closed)
}

func TestClientCaller_EmptyConfigFailsAtCallTime(t *testing.T) {
	caller := NewClientCaller(llm.Config{})
	e := NewLLM("text_quality", staticRenderer{}, caller, ParseQuality)

	_, err := e.Evaluate(context.Background(), types.Data{ID: "1", Content: "x"})
	var callErr *RemoteCallError
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, err.Error(), "failed to create LLM client")
	assert.NoError(t, e.Close())
}

func TestClientCaller_FactoryErrorRetried(t *testing.T) {
	attempts := 0
	caller := NewClientCallerWith(llm.Config{}, func(context.Context, llm.Config) (llm.Client, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("not yet")
		}
		return &MockClient{}, nil
	})

	_, err := caller.Call(context.Background(), "p")
	require.Error(t, err)
	_, err = caller.Call(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
