package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/netlens/netlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAdapterAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind  types.AnalysisKind `json:"kind"`
			Model string             `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, types.KindProjectOverview, req.Kind)
		assert.Equal(t, "test-model", req.Model)

		json.NewEncoder(w).Encode(Response{
			AIDraftJSON: json.RawMessage(`{"summary":"ok"}`),
			AIDraftText: "ok",
			Metrics: types.LLMMetrics{
				TokenUsage: types.TokenUsage{Prompt: 3, Completion: 2, Total: 5},
			},
		})
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(srv.URL, "test-model")
	resp, err := adapter.Analyze(context.Background(), &Request{
		Kind:           types.KindProjectOverview,
		ProjectContext: json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.AIDraftText)
	assert.Equal(t, 5, resp.Metrics.TokenUsage.Total)
	// Model name and timing backfilled when the backend omits them.
	assert.Equal(t, "test-model", resp.Metrics.ModelName)
}

func TestHTTPAdapterErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(srv.URL, "test-model")
	_, err := adapter.Analyze(context.Background(), &Request{Kind: types.KindProjectOverview})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
