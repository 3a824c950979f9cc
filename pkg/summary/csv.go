package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/netlens/netlens/pkg/types"
)

var csvHeader = []string{
	"device", "model", "serial", "os_ver", "mgmt_ip", "ifaces",
	"access_ports", "trunk_ports", "unused_ports", "vlan_count",
	"native_vlan", "trunk_allowed", "stp", "stp_role", "ospf_neigh",
	"bgp_asn", "rt_proto", "cpu", "mem", "status",
}

// WriteCSV renders rows in table column order. The iface rollup is
// serialized as total/up/down/adminDown; absent values render as a dash.
func WriteCSV(w io.Writer, rows []types.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			dash(row.Device),
			dash(row.Model),
			dash(row.Serial),
			dash(row.OSVer),
			dash(row.MgmtIP),
			fmt.Sprintf("%d/%d/%d/%d", row.Ifaces.Total, row.Ifaces.Up, row.Ifaces.Down, row.Ifaces.AdminDown),
			strconv.Itoa(row.AccessPorts),
			strconv.Itoa(row.TrunkPorts),
			strconv.Itoa(row.UnusedPorts),
			strconv.Itoa(row.VLANCount),
			dashInt(row.NativeVLAN),
			dash(row.TrunkAllowed),
			dash(row.STP),
			dash(row.STPRole),
			strconv.Itoa(row.OSPFNeighbors),
			dashInt(row.BGPASN),
			dash(row.RTProto),
			dashFloat(row.CPU),
			dashFloat(row.Mem),
			row.Status,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func dashInt(v *int) string {
	if v == nil {
		return "—"
	}
	return strconv.Itoa(*v)
}

func dashFloat(v *float64) string {
	if v == nil {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
