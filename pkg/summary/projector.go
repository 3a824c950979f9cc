package summary

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// Projector builds the per-project summary table and dashboard rollups
// from stored device records.
type Projector struct {
	store storage.Store
}

// NewProjector creates a projector backed by the given store.
func NewProjector(store storage.Store) *Projector {
	return &Projector{store: store}
}

// Row projects a single device record onto its summary row. The returned
// status never reflects drift; drift needs version history and is layered
// on by Rows.
func Row(rec *types.DeviceRecord) types.SummaryRow {
	row := types.SummaryRow{
		Device: rec.DeviceName,
		Model:  rec.DeviceOverview.Model,
		Serial: rec.DeviceOverview.SerialNumber,
		OSVer:  rec.DeviceOverview.OSVersion,
		MgmtIP: rec.DeviceOverview.MgmtIP,
		CPU:    rec.DeviceOverview.CPUUtilization,
		Mem:    rec.DeviceOverview.MemoryUsage,
		Status: baseStatus(rec),
	}

	for _, iface := range rec.Interfaces {
		row.Ifaces.Total++
		adminDown := iface.AdminStatus == "down"
		operDown := iface.OperStatus == "down"
		switch {
		case adminDown:
			row.Ifaces.AdminDown++
		case operDown:
			row.Ifaces.Down++
		default:
			row.Ifaces.Up++
		}
		if adminDown && operDown {
			row.UnusedPorts++
		}
		switch iface.PortMode {
		case types.PortModeAccess:
			row.AccessPorts++
		case types.PortModeTrunk:
			row.TrunkPorts++
			// First trunk wins for the single-value columns.
			if row.TrunkAllowed == "" {
				row.TrunkAllowed = iface.AllowedVLANs
			}
			if row.NativeVLAN == nil {
				row.NativeVLAN = iface.NativeVLAN
			}
		}
	}

	row.VLANCount = len(rec.VLANs.VLANList)

	row.STP = rec.STP.Mode
	if rec.STP.Mode != "" {
		if rec.STP.RootBridgeStatus {
			row.STPRole = "root"
		} else {
			row.STPRole = "non-root"
		}
	}

	if rec.Routing.OSPF != nil {
		row.OSPFNeighbors = len(rec.Routing.OSPF.Neighbors)
	}
	if rec.Routing.BGP != nil {
		row.BGPASN = rec.Routing.BGP.ASNumber
	}
	row.RTProto = routingProtocols(rec.Routing)

	return row
}

// Rows projects every device record in the project, with drift detection
// layered on from the two latest Config versions of each device's document.
func (p *Projector) Rows(projectID string) ([]types.SummaryRow, error) {
	records, err := p.store.ListDeviceRecords(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device records: %w", err)
	}

	docs, err := p.store.ListDocuments(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	configDocs := map[string]*types.Document{}
	for _, doc := range docs {
		if doc.FolderID == types.FolderConfig && !doc.Deleted && doc.DeviceName != "" {
			configDocs[doc.DeviceName] = doc
		}
	}

	rows := make([]types.SummaryRow, 0, len(records))
	for _, rec := range records {
		row := Row(rec)
		if row.Status == types.SummaryStatusOK {
			if doc, ok := configDocs[rec.DeviceName]; ok && p.hasDrift(doc) {
				row.Status = types.SummaryStatusDrift
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Device < rows[j].Device })
	return rows, nil
}

// Metrics rolls the project's rows up into the dashboard counters.
func (p *Projector) Metrics(projectID string) (*types.SummaryMetrics, error) {
	records, err := p.store.ListDeviceRecords(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device records: %w", err)
	}
	rows, err := p.Rows(projectID)
	if err != nil {
		return nil, err
	}

	m := &types.SummaryMetrics{
		TotalDevices: len(rows),
		ByRole:       map[types.DeviceRole]int{},
	}
	for _, rec := range records {
		m.ByRole[rec.DeviceOverview.Role]++
	}

	vlanSet := map[int]struct{}{}
	for _, rec := range records {
		for _, id := range rec.VLANs.VLANList {
			vlanSet[id] = struct{}{}
		}
	}
	m.TotalVLANs = len(vlanSet)

	for _, row := range rows {
		m.TotalPorts += row.Ifaces.Total
		m.PortsUp += row.Ifaces.Up
		switch row.Status {
		case types.SummaryStatusOK:
			m.HealthyCount++
		case types.SummaryStatusDrift:
			m.DriftDevices++
		}
	}

	return m, nil
}

// hasDrift re-parses the document's two latest versions and reports whether
// their projected rows differ. Families with fewer than two versions never
// drift. Storage trouble is treated as no drift; the row still renders.
func (p *Projector) hasDrift(doc *types.Document) bool {
	if doc.LatestVersion < 2 {
		return false
	}
	latest, err := p.rowForVersion(doc, doc.LatestVersion)
	if err != nil {
		return false
	}
	prior, err := p.rowForVersion(doc, doc.LatestVersion-1)
	if err != nil {
		return false
	}
	// Compare structured fields only.
	latest.Status = ""
	prior.Status = ""
	return !reflect.DeepEqual(latest, prior)
}

func (p *Projector) rowForVersion(doc *types.Document, n int) (types.SummaryRow, error) {
	ver, err := p.store.GetVersion(doc.ID, n)
	if err != nil {
		return types.SummaryRow{}, err
	}
	data, err := p.store.GetBlob(ver.BlobHash)
	if err != nil {
		return types.SummaryRow{}, err
	}
	rec := parser.Parse(string(data))
	rec.DeviceName = doc.DeviceName
	return Row(rec), nil
}

func baseStatus(rec *types.DeviceRecord) string {
	if strings.TrimSpace(rec.OriginalContent) == "" {
		return types.SummaryStatusEmpty
	}
	if rec.DeviceOverview.Hostname == "" && len(rec.Interfaces) == 0 {
		return types.SummaryStatusParseFailed
	}
	return types.SummaryStatusOK
}

func routingProtocols(r types.RoutingInfo) string {
	var protos []string
	if len(r.Static) > 0 {
		protos = append(protos, "static")
	}
	if r.OSPF != nil {
		protos = append(protos, "ospf")
	}
	if r.EIGRP != nil {
		protos = append(protos, "eigrp")
	}
	if r.BGP != nil {
		protos = append(protos, "bgp")
	}
	if r.RIP != nil {
		protos = append(protos, "rip")
	}
	return strings.Join(protos, ",")
}
