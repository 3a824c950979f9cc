package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

const testConfig = `hostname core-sw1
!
vlan 10
 name USERS
vlan 20
 name VOICE
!
interface GigabitEthernet1/0/24
 switchport mode trunk
 switchport trunk allowed vlan 10,20
!
end
`

const testHuaweiConfig = `sysname dist-sw2
#
vlan batch 30
#
interface GigabitEthernet0/0/1
 port link-type access
 port default vlan 30
#
return
`

type testServer struct {
	*Server
	mgr     *manager.Manager
	adapter *llm.MockAdapter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	mgr := manager.NewManagerWithStore(store)
	t.Cleanup(func() { mgr.Close() })

	adapter := llm.NewMockAdapter()
	s := NewServer(mgr, adapter)
	return &testServer{Server: s, mgr: mgr, adapter: adapter}
}

// login creates the user if needed and returns a bearer token.
func (ts *testServer) login(t *testing.T, username string, isAdmin bool) string {
	t.Helper()
	if _, err := ts.mgr.GetUser(username); err != nil {
		_, err = ts.mgr.CreateUser(username, "test-password", isAdmin)
		require.NoError(t, err)
	}
	rec := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "test-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

// upload posts one file as multipart form data.
func (ts *testServer) upload(t *testing.T, token, projectID, folderID, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder_id", folderID))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="files"; filename=%q`, filename)},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/documents", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createProject(t *testing.T, token, name string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/projects", token, map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rec.Code)
	var project types.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	return project.ID
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.mgr.CreateUser("alice", "test-password", false)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)

	rec := ts.do(t, http.MethodPost, "/change-password", token, map[string]string{
		"current_password": "test-password",
		"new_password":     "rotated-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserEndpointsAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.login(t, "alice", false)
	adminToken := ts.login(t, "root", true)

	rec := ts.do(t, http.MethodGet, "/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/users", adminToken, map[string]any{
		"username": "bob",
		"password": "bobs-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestViewerCannotUpload(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.login(t, "alice", false)
	projectID := ts.createProject(t, ownerToken, "NetA")

	viewerToken := ts.login(t, "victor", false)
	rec := ts.do(t, http.MethodPost, "/projects/"+projectID+"/members", ownerToken, map[string]string{
		"username": "victor",
		"role":     "viewer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/documents", viewerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.upload(t, viewerToken, projectID, types.FolderOther, "notes.txt", "text/plain", []byte("x"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Viewers cannot manage members either.
	rec = ts.do(t, http.MethodDelete, "/projects/"+projectID+"/members/victor", viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPrivateProjectHiddenFromNonMembers(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.login(t, "alice", false)
	projectID := ts.createProject(t, ownerToken, "NetA")

	otherToken := ts.login(t, "mallory", false)
	rec := ts.do(t, http.MethodGet, "/projects/"+projectID+"/documents", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadAndConfigSummary(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.upload(t, token, projectID, types.FolderConfig,
		"core-sw1_20251001.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.upload(t, token, projectID, types.FolderConfig,
		"dist-sw2_20251001.txt", "text/plain", []byte(testHuaweiConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/config-summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []types.SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "core-sw1", rows[0].Device)
	assert.Equal(t, 2, rows[0].VLANCount)
	assert.Equal(t, types.SummaryStatusOK, rows[0].Status)
	assert.Equal(t, "dist-sw2", rows[1].Device)
	assert.Equal(t, 1, rows[1].VLANCount)
	assert.Equal(t, types.SummaryStatusOK, rows[1].Status)
}

func TestConfigSummaryExportCSV(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.upload(t, token, projectID, types.FolderConfig,
		"core-sw1.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/config-summary/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "core-sw1")
}

func TestFolderRulesOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	// Reserved name is a conflict.
	rec := ts.do(t, http.MethodPost, "/projects/"+projectID+"/folders", token, map[string]any{
		"name": "Config",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Config cannot parent folders.
	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/folders", token, map[string]any{
		"name":      "MyDocs",
		"parent_id": "Config",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/folders", token, map[string]any{
		"name": "MyDocs",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var folder types.Folder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folder))

	rec = ts.upload(t, token, projectID, folder.ID, "plan.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, rec.Code)

	docs := ts.listDocuments(t, token, projectID, folder.ID)
	require.Len(t, docs, 1)

	// Moving into Config is role-denied regardless of type.
	rec = ts.do(t, http.MethodPost,
		"/projects/"+projectID+"/documents/"+docs[0].ID+"/move", token,
		map[string]string{"folder_id": "Config"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func (ts *testServer) listDocuments(t *testing.T, token, projectID, folderID string) []types.Document {
	t.Helper()
	rec := ts.do(t, http.MethodGet, "/projects/"+projectID+"/documents?folder_id="+folderID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []types.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	return docs
}

func TestAnalysisSingleSlotOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.upload(t, token, projectID, types.FolderConfig,
		"core-sw1.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	gate := make(chan struct{})
	ts.adapter.Gate = gate

	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/overview", token, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// The slot is held, any kind is rejected.
	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/recommendations", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var apiErr apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "BUSY", apiErr.Code)

	close(gate)
	ts.Controller().Wait()

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/analyze/overview", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var artifact types.AnalysisArtifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
	assert.Equal(t, types.StatusPendingReview, artifact.Status)

	// The slot is free again.
	ts.adapter.Gate = nil
	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/recommendations", token, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	ts.Controller().Wait()
}

func TestUnknownAnalysisKind(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/config-drift", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/analyze/overview", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/overview", token, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	ts.Controller().Wait()

	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/analyze/overview/verify", token, map[string]any{
		"verified_json": map[string]string{"summary": "mock draft"},
		"status":        "verified",
		"comments":      "looks right",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var artifact types.AnalysisArtifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
	assert.Equal(t, types.StatusVerified, artifact.Status)
	require.NotNil(t, artifact.AccuracyMetrics)
	assert.Equal(t, 0, artifact.AccuracyMetrics.TotalChanges)
	assert.Equal(t, 100.0, artifact.AccuracyMetrics.AccuracyScore)
	assert.Equal(t, "alice", artifact.Reviewer)
}

func TestTopologyRoundTripOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.upload(t, token, projectID, types.FolderConfig,
		"core-sw1.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPut, "/projects/"+projectID+"/topology/layout", token, map[string]any{
		"positions":   map[string]types.Position{"core-sw1": {X: 10, Y: 20}},
		"node_labels": map[string]string{"core-sw1": "Core Switch 1"},
		"node_roles":  map[string]string{"core-sw1": "core"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The PUT body uses the same keys the GET emits, so a client can
	// round-trip the layout unchanged.
	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/topology", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Layout types.TopologyState `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, types.Position{X: 10, Y: 20}, view.Layout.Positions["core-sw1"])
	assert.Equal(t, "Core Switch 1", view.Layout.NodeLabels["core-sw1"])
	assert.Equal(t, types.RoleCore, view.Layout.NodeRoles["core-sw1"])

	// Unknown roles are rejected.
	rec = ts.do(t, http.MethodPut, "/projects/"+projectID+"/topology/layout", token, map[string]any{
		"node_roles": map[string]string{"core-sw1": "mainframe"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeviceDeleteRequiresManager(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.login(t, "alice", false)
	projectID := ts.createProject(t, ownerToken, "NetA")

	rec := ts.upload(t, ownerToken, projectID, types.FolderConfig,
		"core-sw1.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	engToken := ts.login(t, "erin", false)
	rec = ts.do(t, http.MethodPost, "/projects/"+projectID+"/members", ownerToken, map[string]string{
		"username": "erin",
		"role":     "engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Engineers upload configs but do not delete devices.
	rec = ts.do(t, http.MethodDelete, "/projects/"+projectID+"/devices/core-sw1", engToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/projects/"+projectID+"/devices/core-sw1", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+projectID+"/devices/core-sw1", engToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceImageTooLargeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", false)
	projectID := ts.createProject(t, token, "NetA")

	rec := ts.upload(t, token, projectID, types.FolderConfig,
		"core-sw1.txt", "text/plain", []byte(testConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	big := bytes.Repeat([]byte("a"), 2*1024*1024)
	rec = ts.do(t, http.MethodPut, "/projects/"+projectID+"/devices/core-sw1/image", token, map[string]string{
		"content_type": "image/png",
		"data":         base64Encode(big),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
