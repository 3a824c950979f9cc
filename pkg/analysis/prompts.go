package analysis

import (
	"errors"
	"fmt"

	"encoding/json"

	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/summary"
	"github.com/netlens/netlens/pkg/types"
)

// projectContext is the project-wide payload handed to the adapter for
// every kind. Rows carry the structured state; the model never needs raw
// configuration for project kinds.
type projectContext struct {
	Project *types.Project     `json:"project"`
	Devices []types.SummaryRow `json:"devices"`
}

// deviceContext is the per-device payload for device-scoped kinds. The two
// config fields are set only for drift analysis.
type deviceContext struct {
	Record         *types.DeviceRecord `json:"record"`
	CurrentConfig  string              `json:"current_config,omitempty"`
	PreviousConfig string              `json:"previous_config,omitempty"`
}

// composeRequest gathers the context payloads for one admitted job.
func (c *Controller) composeRequest(projectID string, kind types.AnalysisKind, deviceName string) (*llm.Request, error) {
	project, err := c.store.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	rows, err := summary.NewProjector(c.store).Rows(projectID)
	if err != nil {
		return nil, err
	}

	pctx, err := json.Marshal(projectContext{Project: project, Devices: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project context: %v", err)
	}

	req := &llm.Request{
		Kind:           kind,
		ProjectContext: pctx,
	}
	if !kind.IsDeviceKind() {
		return req, nil
	}

	rec, err := c.store.GetDeviceRecord(projectID, deviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load device record: %w", err)
	}
	dctx := deviceContext{Record: rec}

	if kind == types.KindDeviceConfigDrift {
		current, previous, err := c.latestConfigPair(projectID, deviceName)
		if err != nil {
			return nil, err
		}
		dctx.CurrentConfig = current
		dctx.PreviousConfig = previous
		req.IncludeOriginal = true
	}

	raw, err := json.Marshal(dctx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device context: %v", err)
	}
	req.DeviceContext = raw
	return req, nil
}

// latestConfigPair returns the raw bytes of the two latest Config versions
// for the device. A single-version family returns an empty previous config.
func (c *Controller) latestConfigPair(projectID, deviceName string) (string, string, error) {
	docs, err := c.store.ListDocuments(projectID)
	if err != nil {
		return "", "", fmt.Errorf("failed to list documents: %v", err)
	}

	var doc *types.Document
	for _, d := range docs {
		if d.FolderID == types.FolderConfig && !d.Deleted && d.DeviceName == deviceName {
			doc = d
			break
		}
	}
	if doc == nil {
		return "", "", fmt.Errorf("no configuration document for device %s: %w", deviceName, storage.ErrNotFound)
	}

	current, err := c.versionContent(doc.ID, doc.LatestVersion)
	if err != nil {
		return "", "", err
	}
	if doc.LatestVersion < 2 {
		return current, "", nil
	}
	previous, err := c.versionContent(doc.ID, doc.LatestVersion-1)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", "", err
	}
	return current, previous, nil
}

func (c *Controller) versionContent(docID string, n int) (string, error) {
	ver, err := c.store.GetVersion(docID, n)
	if err != nil {
		return "", fmt.Errorf("failed to load version %d: %w", n, err)
	}
	data, err := c.store.GetBlob(ver.BlobHash)
	if err != nil {
		return "", fmt.Errorf("failed to load blob %s: %w", ver.BlobHash, err)
	}
	return string(data), nil
}
