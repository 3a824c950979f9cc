package parser

import (
	"strings"
	"time"

	"github.com/netlens/netlens/pkg/types"
)

// Parser is one vendor-specific extraction variant. All variants fill the
// same normalized DeviceRecord; adding a vendor means adding a variant and
// a detection rule, callers never change.
type Parser interface {
	Vendor() types.Vendor
	Parse(content string) *types.DeviceRecord
}

// Detect picks a vendor from content heuristics, first match wins.
// Vendor detection beats hostname conventions when they disagree.
func Detect(content string) types.Vendor {
	if strings.Contains(content, "display version") ||
		strings.Contains(content, "display current-configuration") ||
		strings.Contains(content, "\nsysname ") ||
		strings.HasPrefix(content, "sysname ") {
		return types.VendorHuawei
	}
	if strings.Contains(content, "Cisco IOS") ||
		strings.Contains(content, "NX-OS") ||
		strings.Contains(content, "Cisco Nexus") ||
		(strings.Contains(content, "show version") && strings.Contains(content, "Cisco")) ||
		strings.Contains(content, "\nhostname ") ||
		strings.HasPrefix(content, "hostname ") {
		return types.VendorCisco
	}
	return types.VendorUnknown
}

// forVendor returns the parser variant for a detected vendor.
func forVendor(vendor types.Vendor) Parser {
	switch vendor {
	case types.VendorHuawei:
		return &HuaweiParser{}
	case types.VendorCisco:
		return &CiscoParser{}
	default:
		return &genericParser{}
	}
}

// Parse dispatches on vendor detection and returns a fully-populated
// record. It never fails: malformed input yields empty arrays and nil
// numerics. OriginalContent is preserved byte-for-byte for the raw view,
// and identical bytes always produce identical records (modulo ParsedAt).
func Parse(content string) *types.DeviceRecord {
	vendor := Detect(content)
	rec := forVendor(vendor).Parse(content)
	rec.Vendor = vendor
	rec.OriginalContent = content
	rec.ParsedAt = time.Now().UTC()
	if rec.DeviceOverview.Role == "" {
		rec.DeviceOverview.Role = ClassifyRole(rec.DeviceOverview.Hostname)
	}
	return rec
}

// newRecord returns a record with every collection non-nil so the JSON
// surface always renders arrays, even for empty input.
func newRecord() *types.DeviceRecord {
	return &types.DeviceRecord{
		Interfaces: []types.Interface{},
		VLANs: types.VLANInfo{
			VLANList:   []int{},
			VLANNames:  map[string]string{},
			VLANStatus: map[string]string{},
		},
		STP: types.STPInfo{
			PortRoles:  map[string]string{},
			PortStates: map[string]string{},
		},
		Routing: types.RoutingInfo{
			Static: []types.StaticRoute{},
		},
		Neighbors: []types.Neighbor{},
		MACARP: types.MACARPInfo{
			MACTable: []types.MACEntry{},
			ARPTable: []types.ARPEntry{},
		},
		Security: types.SecurityInfo{
			UserAccounts: []types.UserAccount{},
			ACLs:         []types.ACL{},
		},
		HA: types.HAInfo{
			EtherChannel: []types.PortChannel{},
			HSRP:         types.FHRPGroups{Groups: []types.FHRPGroup{}},
			VRRP:         types.FHRPGroups{Groups: []types.FHRPGroup{}},
		},
	}
}
