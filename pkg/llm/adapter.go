package llm

import (
	"context"
	"encoding/json"

	"github.com/netlens/netlens/pkg/types"
)

// Request is the composed prompt handed to the adapter. ProjectContext is
// always set; DeviceContext only for device-scoped kinds. IncludeOriginal
// asks the model to consider raw configuration text carried inside the
// context payloads.
type Request struct {
	Kind            types.AnalysisKind `json:"kind"`
	ProjectContext  json.RawMessage    `json:"project_context"`
	DeviceContext   json.RawMessage    `json:"device_context,omitempty"`
	IncludeOriginal bool               `json:"include_original,omitempty"`
}

// Response is the adapter's draft output plus invocation accounting.
type Response struct {
	AIDraftJSON json.RawMessage  `json:"ai_draft_json"`
	AIDraftText string           `json:"ai_draft_text"`
	Metrics     types.LLMMetrics `json:"llm_metrics"`
}

// Adapter is the opaque model backend. Implementations enforce their own
// per-call timeout; callers cancel via ctx.
type Adapter interface {
	Analyze(ctx context.Context, req *Request) (*Response, error)
}
