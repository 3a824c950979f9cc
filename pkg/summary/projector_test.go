package summary

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configV1 = `!
hostname core-sw1
!
vlan 10
!
vlan 20
!
interface GigabitEthernet1/0/1
 switchport mode access
 switchport access vlan 10
!
interface GigabitEthernet1/0/24
 switchport mode trunk
 switchport trunk allowed vlan 10,20
!
`

const configV2 = `!
hostname core-sw1
!
vlan 10
!
vlan 20
!
vlan 30
!
interface GigabitEthernet1/0/1
 switchport mode access
 switchport access vlan 10
!
interface GigabitEthernet1/0/24
 switchport mode trunk
 switchport trunk allowed vlan 10,20,30
!
`

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ingestConfig(t *testing.T, store storage.Store, projectID, filename string, versions ...string) *types.Document {
	t.Helper()
	doc := &types.Document{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Filename:   filename,
		FolderID:   types.FolderConfig,
		DeviceName: parser.DeviceNameFromFilename(filename),
		CreatedBy:  "tester",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateDocument(doc))

	for _, content := range versions {
		hash, err := store.PutBlob([]byte(content))
		require.NoError(t, err)
		ver := &types.DocumentVersion{
			DocumentID: doc.ID,
			BlobHash:   hash,
			Size:       int64(len(content)),
			UploadedBy: "tester",
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, store.AppendVersion(doc, ver))
		rec := parser.Parse(content)
		rec.ProjectID = projectID
		rec.DeviceName = doc.DeviceName
		rec.SourceVersion = ver.VersionNumber
		require.NoError(t, store.PutDeviceRecord(rec))
	}
	return doc
}

func TestRowProjection(t *testing.T) {
	rec := parser.Parse(configV1)
	rec.DeviceName = "core-sw1"

	row := Row(rec)

	assert.Equal(t, "core-sw1", row.Device)
	assert.Equal(t, 2, row.Ifaces.Total)
	assert.Equal(t, 2, row.Ifaces.Up)
	assert.Equal(t, 1, row.AccessPorts)
	assert.Equal(t, 1, row.TrunkPorts)
	assert.Equal(t, 0, row.UnusedPorts)
	assert.Equal(t, 2, row.VLANCount)
	assert.Equal(t, "10,20", row.TrunkAllowed)
	require.NotNil(t, row.NativeVLAN)
	assert.Equal(t, 1, *row.NativeVLAN)
	assert.Nil(t, row.CPU)
	assert.Equal(t, types.SummaryStatusOK, row.Status)
}

func TestRowStatusWarnings(t *testing.T) {
	empty := parser.Parse("")
	empty.DeviceName = "ghost"
	assert.Equal(t, types.SummaryStatusEmpty, Row(empty).Status)

	garbage := parser.Parse("complete nonsense with no structure\n")
	garbage.DeviceName = "noise"
	assert.Equal(t, types.SummaryStatusParseFailed, Row(garbage).Status)
}

func TestRowsSingleVersionNoDrift(t *testing.T) {
	store := newTestStore(t)
	projector := NewProjector(store)

	ingestConfig(t, store, "p1", "core-sw1_20251001.txt", configV1)

	rows, err := projector.Rows("p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "core-sw1", rows[0].Device)
	assert.Equal(t, types.SummaryStatusOK, rows[0].Status)
}

func TestRowsDriftOnChangedUpload(t *testing.T) {
	store := newTestStore(t)
	projector := NewProjector(store)

	doc := ingestConfig(t, store, "p1", "core-sw1_20251001.txt", configV1, configV2)
	assert.Equal(t, 2, doc.LatestVersion)

	rows, err := projector.Rows("p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.SummaryStatusDrift, rows[0].Status)
	assert.Equal(t, 3, rows[0].VLANCount)
}

func TestRowsDriftClearsOnIdenticalUpload(t *testing.T) {
	store := newTestStore(t)
	projector := NewProjector(store)

	ingestConfig(t, store, "p1", "core-sw1_20251001.txt", configV1, configV2, configV2)

	rows, err := projector.Rows("p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.SummaryStatusOK, rows[0].Status)
}

func TestMetricsRollup(t *testing.T) {
	store := newTestStore(t)
	projector := NewProjector(store)

	ingestConfig(t, store, "p1", "core-sw1.txt", configV1)
	ingestConfig(t, store, "p1", "access-sw3.txt", strings.ReplaceAll(configV1, "core-sw1", "access-sw3"))

	m, err := projector.Metrics("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalDevices)
	assert.Equal(t, 1, m.ByRole[types.RoleCore])
	assert.Equal(t, 1, m.ByRole[types.RoleAccess])
	assert.Equal(t, 4, m.TotalPorts)
	assert.Equal(t, 4, m.PortsUp)
	assert.Equal(t, 2, m.TotalVLANs)
	assert.Equal(t, 2, m.HealthyCount)
	assert.Equal(t, 0, m.DriftDevices)
}

func TestWriteCSV(t *testing.T) {
	rec := parser.Parse(configV1)
	rec.DeviceName = "core-sw1"
	row := Row(rec)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []types.SummaryRow{row}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "device,model,serial"))
	assert.Contains(t, lines[1], "core-sw1")
	assert.Contains(t, lines[1], "2/2/0/0")
	assert.Contains(t, lines[1], "—")
	assert.Contains(t, lines[1], types.SummaryStatusOK)
}
