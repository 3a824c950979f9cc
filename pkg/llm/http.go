package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/netlens/netlens/pkg/log"
)

// DefaultTimeout bounds one adapter invocation end to end.
const DefaultTimeout = 5 * time.Minute

// HTTPAdapter talks to an OpenAI-compatible inference endpoint that accepts
// the Request JSON as-is and answers with Response JSON.
type HTTPAdapter struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewHTTPAdapter creates an adapter for the given endpoint URL. model is
// advisory; it is passed through in the request body and echoed into the
// metrics when the backend omits a model name.
func NewHTTPAdapter(endpoint, model string) *HTTPAdapter {
	return &HTTPAdapter{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

func (a *HTTPAdapter) Analyze(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(struct {
		*Request
		Model string `json:"model,omitempty"`
	}{Request: req, Model: a.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, string(data))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %v", err)
	}

	if out.Metrics.ModelName == "" {
		out.Metrics.ModelName = a.model
	}
	if out.Metrics.InferenceTimeMS == 0 {
		out.Metrics.InferenceTimeMS = time.Since(started).Milliseconds()
	}

	log.WithComponent("llm").Debug().
		Str("kind", string(req.Kind)).
		Str("model", out.Metrics.ModelName).
		Int64("inference_ms", out.Metrics.InferenceTimeMS).
		Msg("Inference call completed")

	return &out, nil
}
