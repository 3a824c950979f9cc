package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, storage.Store, *llm.MockAdapter) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateProject(&types.Project{
		ID:        "p1",
		Name:      "NetA",
		CreatedBy: "admin",
		CreatedAt: time.Now().UTC(),
	}))

	adapter := llm.NewMockAdapter()
	return NewController(store, adapter, nil), store, adapter
}

func seedDevice(t *testing.T, store storage.Store, name string) {
	t.Helper()
	rec := parser.Parse("!\nhostname " + name + "\n!\n")
	rec.ProjectID = "p1"
	rec.DeviceName = name
	require.NoError(t, store.PutDeviceRecord(rec))
}

func TestStaleMarkerSweptOnStartup(t *testing.T) {
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateProject(&types.Project{ID: "p1", Name: "NetA"}))

	// A marker with no live worker, as left behind by a crash mid-job.
	require.NoError(t, store.SetMarker(&types.InFlightMarker{
		ProjectID: "p1",
		Kind:      types.KindProjectOverview,
		StartedAt: time.Now().UTC().Add(-time.Hour),
	}))

	adapter := llm.NewMockAdapter()
	ctrl := NewController(store, adapter, nil)

	marker, err := ctrl.InFlight("p1")
	require.NoError(t, err)
	assert.Nil(t, marker)

	// The slot is free again.
	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))
	ctrl.Wait()
}

func TestSubmitSingleSlot(t *testing.T) {
	ctrl, store, adapter := newTestController(t)
	adapter.Gate = make(chan struct{})

	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))

	// Slot is held across kinds for the same project.
	err := ctrl.Submit("p1", types.KindProjectRecommendations, "")
	require.ErrorIs(t, err, ErrBusy)

	marker, err := ctrl.InFlight("p1")
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, types.KindProjectOverview, marker.Kind)

	close(adapter.Gate)
	ctrl.Wait()

	marker, err = ctrl.InFlight("p1")
	require.NoError(t, err)
	assert.Nil(t, marker)

	artifact, err := ctrl.Get("p1", types.KindProjectOverview, "")
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, types.StatusPendingReview, artifact.Status)
	require.NotNil(t, artifact.LLMMetrics)
	assert.Equal(t, "mock-model", artifact.LLMMetrics.ModelName)
	assert.Equal(t, 15, artifact.LLMMetrics.TokenUsage.Total)

	// Slot is free again.
	adapter.Gate = nil
	require.NoError(t, ctrl.Submit("p1", types.KindProjectRecommendations, ""))
	ctrl.Wait()
	_ = store
}

func TestSubmitIndependentProjects(t *testing.T) {
	ctrl, store, adapter := newTestController(t)
	require.NoError(t, store.CreateProject(&types.Project{ID: "p2", Name: "NetB", CreatedBy: "admin"}))
	adapter.Gate = make(chan struct{})

	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))
	// A different project gets its own slot.
	require.NoError(t, ctrl.Submit("p2", types.KindProjectOverview, ""))

	close(adapter.Gate)
	ctrl.Wait()
}

func TestSubmitValidation(t *testing.T) {
	ctrl, store, _ := newTestController(t)
	seedDevice(t, store, "core-sw1")

	assert.Error(t, ctrl.Submit("p1", "bogus", ""))
	assert.Error(t, ctrl.Submit("p1", types.KindDeviceOverview, ""))
	assert.Error(t, ctrl.Submit("p1", types.KindProjectOverview, "core-sw1"))

	// Unknown device rejects before taking the slot.
	err := ctrl.Submit("p1", types.KindDeviceOverview, "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, ctrl.Submit("p1", types.KindDeviceOverview, "core-sw1"))
	ctrl.Wait()
}

func TestFailureClearsMarker(t *testing.T) {
	ctrl, _, adapter := newTestController(t)
	adapter.Err = assert.AnError

	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))
	ctrl.Wait()

	marker, err := ctrl.InFlight("p1")
	require.NoError(t, err)
	assert.Nil(t, marker)

	// No artifact recorded on failure; polling clients observe no result.
	artifact, err := ctrl.Get("p1", types.KindProjectOverview, "")
	require.NoError(t, err)
	assert.Nil(t, artifact)
}

func TestRegenerateKeepsCreationTime(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))
	ctrl.Wait()
	first, err := ctrl.Get("p1", types.KindProjectOverview, "")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, ctrl.Submit("p1", types.KindProjectOverview, ""))
	ctrl.Wait()
	second, err := ctrl.Get("p1", types.KindProjectOverview, "")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestDriftKindComposesConfigPair(t *testing.T) {
	ctrl, store, adapter := newTestController(t)
	seedDevice(t, store, "core-sw1")

	doc := &types.Document{
		ID:         "d1",
		ProjectID:  "p1",
		Filename:   "core-sw1.txt",
		FolderID:   types.FolderConfig,
		DeviceName: "core-sw1",
		CreatedBy:  "tester",
	}
	require.NoError(t, store.CreateDocument(doc))
	for _, content := range []string{"!\nhostname core-sw1\n!\n", "!\nhostname core-sw1\nvlan 30\n!\n"} {
		hash, err := store.PutBlob([]byte(content))
		require.NoError(t, err)
		require.NoError(t, store.AppendVersion(doc, &types.DocumentVersion{
			DocumentID: doc.ID,
			BlobHash:   hash,
			Size:       int64(len(content)),
			UploadedBy: "tester",
		}))
	}

	require.NoError(t, ctrl.Submit("p1", types.KindDeviceConfigDrift, "core-sw1"))
	ctrl.Wait()

	reqs := adapter.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].IncludeOriginal)

	var dctx struct {
		CurrentConfig  string `json:"current_config"`
		PreviousConfig string `json:"previous_config"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].DeviceContext, &dctx))
	assert.Contains(t, dctx.CurrentConfig, "vlan 30")
	assert.NotContains(t, dctx.PreviousConfig, "vlan 30")
	assert.NotEmpty(t, dctx.PreviousConfig)
}
