package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/netlens/netlens/pkg/types"
)

// MockAdapter is the test double. It records requests and answers with a
// canned response, optionally blocking until released so tests can observe
// in-flight state.
type MockAdapter struct {
	mu       sync.Mutex
	requests []*Request

	Response *Response
	Err      error
	// Gate, when non-nil, blocks Analyze until closed.
	Gate chan struct{}
}

// NewMockAdapter returns a mock answering with a minimal valid draft.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Response: &Response{
			AIDraftJSON: json.RawMessage(`{"summary":"mock draft"}`),
			AIDraftText: "mock draft",
			Metrics: types.LLMMetrics{
				ModelName:       "mock-model",
				InferenceTimeMS: 5,
				TokenUsage:      types.TokenUsage{Prompt: 10, Completion: 5, Total: 15},
			},
		},
	}
}

func (m *MockAdapter) Analyze(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// Requests returns a snapshot of everything Analyze has seen.
func (m *MockAdapter) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}
