package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netlens/netlens/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedProject(t *testing.T, store *BoltStore) *types.Project {
	t.Helper()
	project := &types.Project{
		ID:        "p1",
		Name:      "lab",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateProject(project))
	return project
}

func seedDocument(t *testing.T, store *BoltStore, projectID, docID, filename string) *types.Document {
	t.Helper()
	doc := &types.Document{
		ID:        docID,
		ProjectID: projectID,
		Filename:  filename,
		FolderID:  types.FolderOther,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateDocument(doc))
	return doc
}

func appendVersion(t *testing.T, store *BoltStore, doc *types.Document, content string) *types.DocumentVersion {
	t.Helper()
	hash, err := store.PutBlob([]byte(content))
	require.NoError(t, err)
	ver := &types.DocumentVersion{
		BlobHash:  hash,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AppendVersion(doc, ver))
	return ver
}

func TestVersionChainInvariants(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	doc := seedDocument(t, store, "p1", "d1", "notes.txt")

	for i, content := range []string{"one", "two", "three"} {
		ver := appendVersion(t, store, doc, content)
		assert.Equal(t, i+1, ver.VersionNumber)
		assert.True(t, ver.IsLatest)
		assert.Equal(t, i+1, doc.LatestVersion)
	}

	versions, err := store.ListVersions("d1")
	require.NoError(t, err)
	require.Len(t, versions, 3)

	// Contiguous from 1, exactly one latest.
	latest := 0
	for i, ver := range versions {
		assert.Equal(t, i+1, ver.VersionNumber)
		if ver.IsLatest {
			latest++
			assert.Equal(t, 3, ver.VersionNumber)
		}
	}
	assert.Equal(t, 1, latest)
}

func TestBlobDedupAndRefcount(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	a := seedDocument(t, store, "p1", "d1", "a.txt")
	b := seedDocument(t, store, "p1", "d2", "b.txt")

	// Same content from two families shares one blob.
	verA := appendVersion(t, store, a, "shared payload")
	verB := appendVersion(t, store, b, "shared payload")
	assert.Equal(t, verA.BlobHash, verB.BlobHash)

	data, err := store.GetBlob(verA.BlobHash)
	require.NoError(t, err)
	assert.Equal(t, "shared payload", string(data))

	// One unref keeps the blob alive, the second collects it.
	require.NoError(t, store.UnrefBlob(verA.BlobHash))
	_, err = store.GetBlob(verA.BlobHash)
	assert.NoError(t, err)

	require.NoError(t, store.UnrefBlob(verA.BlobHash))
	_, err = store.GetBlob(verA.BlobHash)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutBlobIdempotent(t *testing.T) {
	store := newTestStore(t)

	h1, err := store.PutBlob([]byte("payload"))
	require.NoError(t, err)
	h2, err := store.PutBlob([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestSetMarkerConflict(t *testing.T) {
	store := newTestStore(t)

	marker := &types.InFlightMarker{
		ProjectID: "p1",
		Kind:      types.KindProjectOverview,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SetMarker(marker))

	err := store.SetMarker(&types.InFlightMarker{
		ProjectID: "p1",
		Kind:      types.KindProjectRecommendations,
		StartedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Another project is unaffected.
	require.NoError(t, store.SetMarker(&types.InFlightMarker{
		ProjectID: "p2",
		Kind:      types.KindProjectOverview,
		StartedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.ClearMarker("p1"))
	require.NoError(t, store.SetMarker(marker))
}

func TestClearMarkerIdempotent(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.ClearMarker("never-set"))
}

func TestListMarkers(t *testing.T) {
	store := newTestStore(t)

	markers, err := store.ListMarkers()
	require.NoError(t, err)
	assert.Empty(t, markers)

	require.NoError(t, store.SetMarker(&types.InFlightMarker{
		ProjectID: "p1",
		Kind:      types.KindProjectOverview,
		StartedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.SetMarker(&types.InFlightMarker{
		ProjectID: "p2",
		Kind:      types.KindDeviceOverview,
		StartedAt: time.Now().UTC(),
	}))

	markers, err = store.ListMarkers()
	require.NoError(t, err)
	require.Len(t, markers, 2)
}

func TestUserRoundTripKeepsHash(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(&types.User{
		Username:     "alice",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    time.Now().UTC(),
	}))

	// The hash must survive the bolt round trip, and a reopen.
	user, err := store.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", user.PasswordHash)

	require.NoError(t, store.Close())
	reopened, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	user, err = reopened.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", user.PasswordHash)
}

func TestFindDocumentIncludesDeleted(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	doc := seedDocument(t, store, "p1", "d1", "notes.txt")
	appendVersion(t, store, doc, "v1")

	doc.Deleted = true
	require.NoError(t, store.UpdateDocument(doc))

	found, err := store.FindDocument("p1", "notes.txt", types.FolderOther)
	require.NoError(t, err)
	assert.Equal(t, "d1", found.ID)
	assert.True(t, found.Deleted)

	_, err = store.FindDocument("p1", "other.txt", types.FolderOther)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	doc := seedDocument(t, store, "p1", "d1", "notes.txt")
	ver := appendVersion(t, store, doc, "payload")

	require.NoError(t, store.PutMember(&types.Member{ProjectID: "p1", Username: "alice", Role: types.RoleAdmin}))
	require.NoError(t, store.PutDeviceRecord(&types.DeviceRecord{ProjectID: "p1", DeviceName: "core-sw1"}))
	require.NoError(t, store.PutArtifact(&types.AnalysisArtifact{
		ProjectID: "p1",
		Kind:      types.KindProjectOverview,
	}))
	require.NoError(t, store.PutTopology(&types.TopologyState{
		ProjectID: "p1",
		Positions: map[string]types.Position{"core-sw1": {X: 1, Y: 2}},
	}))

	require.NoError(t, store.DeleteProject("p1"))

	_, err := store.GetProject("p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetDocument("p1", "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetVersion("d1", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetBlob(ver.BlobHash)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetMember("p1", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetDeviceRecord("p1", "core-sw1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetArtifact("p1", types.KindProjectOverview, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetTopology("p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProjectKeepsSharedBlobs(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	require.NoError(t, store.CreateProject(&types.Project{ID: "p2", Name: "other"}))

	docA := seedDocument(t, store, "p1", "d1", "a.txt")
	docB := &types.Document{ID: "d2", ProjectID: "p2", Filename: "b.txt", FolderID: types.FolderOther}
	require.NoError(t, store.CreateDocument(docB))

	verA := appendVersion(t, store, docA, "shared payload")
	appendVersion(t, store, docB, "shared payload")

	require.NoError(t, store.DeleteProject("p1"))

	// p2 still references the blob.
	data, err := store.GetBlob(verA.BlobHash)
	require.NoError(t, err)
	assert.Equal(t, "shared payload", string(data))
}

func TestReopenStorePersists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.CreateProject(&types.Project{ID: "p1", Name: "lab"}))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	project, err := reopened.GetProject("p1")
	require.NoError(t, err)
	assert.Equal(t, "lab", project.Name)
}
