package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/netlens/netlens/pkg/events"
	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/metrics"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// ErrBusy is returned by Submit while another job holds the project's slot.
var ErrBusy = errors.New("analysis job already in flight")

// Controller admits at most one LLM job per project at a time. The slot is
// held by a durable marker so a restart cannot double-admit; the in-process
// lock only serializes the admission decision itself.
type Controller struct {
	store   storage.Store
	adapter llm.Adapter
	broker  *events.Broker

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	wg    sync.WaitGroup
}

// NewController creates a controller. broker may be nil in tests.
func NewController(store storage.Store, adapter llm.Adapter, broker *events.Broker) *Controller {
	c := &Controller{
		store:   store,
		adapter: adapter,
		broker:  broker,
		locks:   map[string]*sync.Mutex{},
	}
	c.sweepStaleMarkers()
	return c
}

// sweepStaleMarkers drops markers left behind by a crash mid-job. The
// worker dies with the process, so any marker present when the controller
// opens can never clear itself and would block the project's slot forever.
func (c *Controller) sweepStaleMarkers() {
	markers, err := c.store.ListMarkers()
	if err != nil {
		log.WithComponent("analysis").Error().Err(err).Msg("Failed to list in-flight markers")
		return
	}
	for _, marker := range markers {
		logger := log.WithJob(marker.ProjectID, string(marker.Kind))
		logger.Warn().
			Time("started_at", marker.StartedAt).
			Msg("Discarding stale in-flight marker")
		if err := c.store.ClearMarker(marker.ProjectID); err != nil {
			logger.Error().Err(err).Msg("Failed to clear stale marker")
		}
	}
}

func (c *Controller) projectLock(projectID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[projectID] = lock
	}
	return lock
}

// Submit admits a job for (project, kind[, device]) and returns as soon as
// the marker is set. ErrBusy means a job of any kind already holds the
// project slot. The adapter call runs in the background; clients poll Get.
func (c *Controller) Submit(projectID string, kind types.AnalysisKind, deviceName string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown analysis kind %q", kind)
	}
	if kind.IsDeviceKind() && deviceName == "" {
		return fmt.Errorf("kind %s requires a device name", kind)
	}
	if !kind.IsDeviceKind() && deviceName != "" {
		return fmt.Errorf("kind %s is project-scoped", kind)
	}
	if kind.IsDeviceKind() {
		if _, err := c.store.GetDeviceRecord(projectID, deviceName); err != nil {
			return fmt.Errorf("failed to load device %s: %w", deviceName, err)
		}
	}

	lock := c.projectLock(projectID)
	lock.Lock()
	err := c.store.SetMarker(&types.InFlightMarker{
		ProjectID: projectID,
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	})
	lock.Unlock()
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			metrics.AnalysisBusyRejections.Inc()
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
		return fmt.Errorf("failed to set in-flight marker: %v", err)
	}

	c.publish(events.EventAnalysisStarted, projectID, kind, deviceName, "Analysis started")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(projectID, kind, deviceName)
	}()
	return nil
}

// run executes one admitted job and always clears the marker.
func (c *Controller) run(projectID string, kind types.AnalysisKind, deviceName string) {
	logger := log.WithJob(projectID, string(kind))
	timer := metrics.NewTimer()
	outcome := "failed"

	defer func() {
		metrics.AnalysisJobsTotal.WithLabelValues(string(kind), outcome).Inc()
		metrics.AnalysisDuration.WithLabelValues(string(kind)).Observe(timer.Duration().Seconds())
	}()
	defer func() {
		if err := c.store.ClearMarker(projectID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Error().Err(err).Msg("Failed to clear in-flight marker")
		}
	}()

	req, err := c.composeRequest(projectID, kind, deviceName)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to compose analysis request")
		c.publish(events.EventAnalysisFailed, projectID, kind, deviceName, err.Error())
		return
	}

	resp, err := c.adapter.Analyze(context.Background(), req)
	if err != nil {
		logger.Error().Err(err).Msg("Analysis job failed")
		c.publish(events.EventAnalysisFailed, projectID, kind, deviceName, err.Error())
		return
	}

	now := time.Now().UTC()
	artifact := &types.AnalysisArtifact{
		ProjectID:   projectID,
		Kind:        kind,
		DeviceName:  deviceName,
		AIDraftJSON: resp.AIDraftJSON,
		AIDraftText: resp.AIDraftText,
		Status:      types.StatusPendingReview,
		LLMMetrics:  &resp.Metrics,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Upsert keeps the original creation time on regeneration.
	if prev, err := c.store.GetArtifact(projectID, kind, deviceName); err == nil {
		artifact.CreatedAt = prev.CreatedAt
	}
	if err := c.store.PutArtifact(artifact); err != nil {
		logger.Error().Err(err).Msg("Failed to store analysis artifact")
		c.publish(events.EventAnalysisFailed, projectID, kind, deviceName, err.Error())
		return
	}

	outcome = "completed"
	logger.Info().
		Str("model", resp.Metrics.ModelName).
		Int("tokens", resp.Metrics.TokenUsage.Total).
		Msg("Analysis job completed")
	c.publish(events.EventAnalysisComplete, projectID, kind, deviceName, "Analysis completed")
}

// Get returns the latest artifact for (project, kind[, device]) or nil when
// no result exists yet.
func (c *Controller) Get(projectID string, kind types.AnalysisKind, deviceName string) (*types.AnalysisArtifact, error) {
	artifact, err := c.store.GetArtifact(projectID, kind, deviceName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %v", err)
	}
	return artifact, nil
}

// InFlight returns the project's current marker, or nil when idle.
func (c *Controller) InFlight(projectID string) (*types.InFlightMarker, error) {
	marker, err := c.store.GetMarker(projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load in-flight marker: %v", err)
	}
	return marker, nil
}

// Full returns every artifact the project holds.
func (c *Controller) Full(projectID string) ([]*types.AnalysisArtifact, error) {
	artifacts, err := c.store.ListArtifacts(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %v", err)
	}
	return artifacts, nil
}

// Verify writes the reviewer's verdict onto the artifact and computes the
// accuracy diff of verified_json against the AI draft.
func (c *Controller) Verify(projectID string, kind types.AnalysisKind, deviceName string,
	verifiedJSON json.RawMessage, comments, reviewer string, status types.ArtifactStatus) (*types.AnalysisArtifact, error) {

	if status != types.StatusVerified && status != types.StatusRejected {
		return nil, fmt.Errorf("invalid verification status %q", status)
	}

	artifact, err := c.store.GetArtifact(projectID, kind, deviceName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load artifact: %v", err)
	}

	metrics, err := DiffJSON(artifact.AIDraftJSON, verifiedJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to diff verified json: %v", err)
	}

	artifact.VerifiedJSON = verifiedJSON
	artifact.Comments = comments
	artifact.Reviewer = reviewer
	artifact.Status = status
	artifact.AccuracyMetrics = metrics
	artifact.UpdatedAt = time.Now().UTC()

	if err := c.store.PutArtifact(artifact); err != nil {
		return nil, fmt.Errorf("failed to store verified artifact: %v", err)
	}
	return artifact, nil
}

// Wait blocks until every background job has finished. Used on shutdown
// and in tests.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) publish(typ events.EventType, projectID string, kind types.AnalysisKind, deviceName, message string) {
	if c.broker == nil {
		return
	}
	meta := map[string]string{
		"project_id": projectID,
		"kind":       string(kind),
	}
	if deviceName != "" {
		meta["device"] = deviceName
	}
	c.broker.Publish(events.New(typ, message, meta))
}
