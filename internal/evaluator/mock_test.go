package evaluator

import (
	"context"

	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/types"
)

// MockClient implements llm.Client for testing
type MockClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string) (string, error)
	CloseFunc        func() error
	closed           bool
}

var _ llm.Client = (*MockClient)(nil)

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt)
	}
	return `{"score": 1, "type": "", "name": "", "reason": []}`, nil
}

func (m *MockClient) Model() string {
	return "mock-model"
}

func (m *MockClient) Close() error {
	m.closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// staticRenderer renders every unit as its content
type staticRenderer struct{}

func (staticRenderer) Render(data types.Data) (string, error) {
	return "check: " + data.Content, nil
}

// mockFactory returns a factory that hands out client and counts calls
func mockFactory(client llm.Client, calls *int) ClientFactory {
	return func(_ context.Context, _ llm.Config) (llm.Client, error) {
		*calls++
		return client, nil
	}
}
