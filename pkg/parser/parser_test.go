package parser

import (
	"testing"

	"github.com/netlens/netlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ciscoSample = `!
version 15.2
hostname core-sw1
!
vlan 10
 name USERS
!
vlan 20
 name SERVERS
!
interface GigabitEthernet1/0/1
 description user port
 switchport mode access
 switchport access vlan 10
 spanning-tree portfast
!
interface GigabitEthernet1/0/2
 shutdown
!
interface GigabitEthernet1/0/24
 description uplink to dist
 switchport mode trunk
 switchport trunk allowed vlan 10,20
!
interface Vlan10
 description mgmt SVI
 ip address 10.0.10.2 255.255.255.0
!
spanning-tree mode rapid-pvst
spanning-tree vlan 1-4094 priority 4096
!
ip route 0.0.0.0 0.0.0.0 10.0.10.1
router ospf 1
 router-id 1.1.1.1
 network 10.0.10.0 0.0.0.255 area 0
!
username admin privilege 15 secret 5 $1$abcd
snmp-server community public RO
ntp server 10.0.0.5
logging host 10.0.0.9
!
`

const huaweiSample = `#
sysname dist-sw2
#
vlan batch 30
#
interface GigabitEthernet0/0/1
 port link-type access
 port default vlan 30
#
interface GigabitEthernet0/0/24
 port link-type trunk
 port trunk pvid vlan 99
 port trunk allow-pass vlan 10 20 to 30
#
interface Vlanif30
 ip address 10.0.30.2 255.255.255.0
#
stp mode mstp
stp priority 8192
#
ip route-static 0.0.0.0 0.0.0.0 10.0.30.1
#
display version
VRP (R) software, Version 8.180
#
`

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected types.Vendor
	}{
		{"huawei display marker", "display current-configuration\nsysname x\n", types.VendorHuawei},
		{"huawei sysname only", "#\nsysname sw1\n#\n", types.VendorHuawei},
		{"cisco ios banner", "Cisco IOS Software, Version 15.2\nhostname sw1\n", types.VendorCisco},
		{"cisco hostname only", "!\nhostname sw1\n!\n", types.VendorCisco},
		{"nxos banner", "Cisco Nexus Operating System (NX-OS) Software\n", types.VendorCisco},
		{"unknown", "some random text\n", types.VendorUnknown},
		{"empty", "", types.VendorUnknown},
		// Vendor detection wins over hostname conventions.
		{"huawei beats cisco-looking hostname", "display current-configuration\nsysname cisco-core\n", types.VendorHuawei},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.content))
		})
	}
}

func TestDeviceNameFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"core-sw1_20251001.txt", "core-sw1"},
		{"core-sw1.txt", "core-sw1"},
		{"dist sw2_20251001.cfg", "dist-sw2"},
		{"edge-rtr_v2.conf", "edge-rtr"},
		{"access-sw3_20251001123045.log", "access-sw3"},
		{"sw1 (1).txt", "sw1"},
		{"sw1_2025-10-01.txt", "sw1"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeviceNameFromFilename(tt.filename))
		})
	}
}

func TestClassifyRole(t *testing.T) {
	assert.Equal(t, types.RoleCore, ClassifyRole("core-sw1"))
	assert.Equal(t, types.RoleDistribution, ClassifyRole("dist-sw2"))
	assert.Equal(t, types.RoleDistribution, ClassifyRole("DISTRIBUTION-A"))
	assert.Equal(t, types.RoleAccess, ClassifyRole("access-sw3"))
	assert.Equal(t, types.RoleRouter, ClassifyRole("edge-router-1"))
	assert.Equal(t, types.RoleUnknownDev, ClassifyRole("sw9"))
	assert.Equal(t, types.RoleUnknownDev, ClassifyRole(""))
}

func TestExpandVLANRange(t *testing.T) {
	ids, all := ExpandVLANRange("10-20,30")
	assert.False(t, all)
	assert.Len(t, ids, 12)
	assert.Equal(t, 10, ids[0])
	assert.Equal(t, 30, ids[11])

	_, all = ExpandVLANRange("all")
	assert.True(t, all)

	_, all = ExpandVLANRange("1-4094")
	assert.True(t, all)

	ids, all = ExpandVLANRange("")
	assert.False(t, all)
	assert.Empty(t, ids)

	// Garbage segments are skipped, valid ones kept.
	ids, _ = ExpandVLANRange("10,abc,20")
	assert.Equal(t, []int{10, 20}, ids)
}

func TestVLANCount(t *testing.T) {
	assert.Equal(t, 4094, VLANCount("all"))
	assert.Equal(t, 4094, VLANCount("1-4094"))
	assert.Equal(t, 3, VLANCount("10,20,30"))
	assert.Equal(t, 0, VLANCount(""))
}

func TestParseCisco(t *testing.T) {
	rec := Parse(ciscoSample)

	assert.Equal(t, types.VendorCisco, rec.Vendor)
	assert.Equal(t, "core-sw1", rec.DeviceOverview.Hostname)
	assert.Equal(t, types.RoleCore, rec.DeviceOverview.Role)
	assert.Equal(t, "10.0.10.2", rec.DeviceOverview.MgmtIP)
	assert.Nil(t, rec.DeviceOverview.CPUUtilization)

	assert.Equal(t, []int{10, 20}, rec.VLANs.VLANList)
	assert.Equal(t, "USERS", rec.VLANs.VLANNames["10"])

	require.Len(t, rec.Interfaces, 4)
	byName := map[string]types.Interface{}
	for _, iface := range rec.Interfaces {
		byName[iface.Name] = iface
	}

	access := byName["GigabitEthernet1/0/1"]
	assert.Equal(t, types.PortModeAccess, access.PortMode)
	require.NotNil(t, access.AccessVLAN)
	assert.Equal(t, 10, *access.AccessVLAN)
	require.NotNil(t, access.STPEdgedPort)
	assert.True(t, *access.STPEdgedPort)

	down := byName["GigabitEthernet1/0/2"]
	assert.Equal(t, "down", down.AdminStatus)
	assert.Equal(t, "down", down.OperStatus)

	trunk := byName["GigabitEthernet1/0/24"]
	assert.Equal(t, types.PortModeTrunk, trunk.PortMode)
	assert.Equal(t, "10,20", trunk.AllowedVLANs)
	// No explicit native VLAN on a trunk defaults to 1.
	require.NotNil(t, trunk.NativeVLAN)
	assert.Equal(t, 1, *trunk.NativeVLAN)

	assert.Equal(t, "RPVST", rec.STP.Mode)
	require.NotNil(t, rec.STP.BridgePriority)
	assert.Equal(t, 4096, *rec.STP.BridgePriority)

	require.Len(t, rec.Routing.Static, 1)
	assert.Equal(t, "10.0.10.1", rec.Routing.Static[0].NextHop)
	require.NotNil(t, rec.Routing.OSPF)
	assert.Equal(t, "1.1.1.1", rec.Routing.OSPF.RouterID)
	assert.Equal(t, []string{"0"}, rec.Routing.OSPF.Areas)

	require.Len(t, rec.Security.UserAccounts, 1)
	assert.Equal(t, "admin", rec.Security.UserAccounts[0].Username)
	require.NotNil(t, rec.Security.UserAccounts[0].Privilege)
	assert.Equal(t, 15, *rec.Security.UserAccounts[0].Privilege)
	assert.True(t, rec.Security.SNMP.Enabled)
	assert.Contains(t, rec.Security.SNMP.Communities, "public")
	assert.True(t, rec.Security.NTP.Enabled)
	assert.True(t, rec.Security.Syslog.Enabled)

	assert.Equal(t, ciscoSample, rec.OriginalContent)
}

func TestParseHuawei(t *testing.T) {
	rec := Parse(huaweiSample)

	assert.Equal(t, types.VendorHuawei, rec.Vendor)
	assert.Equal(t, "dist-sw2", rec.DeviceOverview.Hostname)
	assert.Equal(t, types.RoleDistribution, rec.DeviceOverview.Role)
	assert.Equal(t, "8.180", rec.DeviceOverview.OSVersion)
	assert.Equal(t, "10.0.30.2", rec.DeviceOverview.MgmtIP)

	assert.Equal(t, []int{30}, rec.VLANs.VLANList)

	byName := map[string]types.Interface{}
	for _, iface := range rec.Interfaces {
		byName[iface.Name] = iface
	}

	access := byName["GigabitEthernet0/0/1"]
	assert.Equal(t, types.PortModeAccess, access.PortMode)
	require.NotNil(t, access.AccessVLAN)
	assert.Equal(t, 30, *access.AccessVLAN)

	trunk := byName["GigabitEthernet0/0/24"]
	assert.Equal(t, types.PortModeTrunk, trunk.PortMode)
	require.NotNil(t, trunk.NativeVLAN)
	assert.Equal(t, 99, *trunk.NativeVLAN)
	// "10 20 to 30" normalizes to comma/range form.
	assert.Equal(t, "10,20-30", trunk.AllowedVLANs)
	assert.Equal(t, 12, VLANCount(trunk.AllowedVLANs))

	assert.Equal(t, "MSTP", rec.STP.Mode)
	require.Len(t, rec.Routing.Static, 1)
}

func TestInterfaceErrorCounters(t *testing.T) {
	cisco := ciscoSample + `show interfaces
GigabitEthernet1/0/24 is up, line protocol is up
     1523 packets input, 104332 bytes
     5 input errors, 0 CRC, 0 frame, 0 overrun, 0 ignored
     2048 packets output, 220101 bytes
     3 output errors, 0 collisions, 1 interface resets
`
	rec := Parse(cisco)
	byName := map[string]types.Interface{}
	for _, iface := range rec.Interfaces {
		byName[iface.Name] = iface
	}

	trunk := byName["GigabitEthernet1/0/24"]
	require.NotNil(t, trunk.Errors.Input)
	assert.Equal(t, int64(5), *trunk.Errors.Input)
	require.NotNil(t, trunk.Errors.Output)
	assert.Equal(t, int64(3), *trunk.Errors.Output)

	// Interfaces without show output keep null counters, never zero.
	access := byName["GigabitEthernet1/0/1"]
	assert.Nil(t, access.Errors.Input)
	assert.Nil(t, access.Errors.Output)

	huawei := huaweiSample + `display interface GigabitEthernet0/0/24
GigabitEthernet0/0/24 current state : UP
Line protocol current state : UP
  Input error: 7
  Output error: 0
`
	rec = Parse(huawei)
	for _, iface := range rec.Interfaces {
		byName[iface.Name] = iface
	}
	trunk = byName["GigabitEthernet0/0/24"]
	require.NotNil(t, trunk.Errors.Input)
	assert.Equal(t, int64(7), *trunk.Errors.Input)
	require.NotNil(t, trunk.Errors.Output)
	assert.Equal(t, int64(0), *trunk.Errors.Output)
}

func TestParseEmptyInput(t *testing.T) {
	rec := Parse("")

	assert.Equal(t, types.VendorUnknown, rec.Vendor)
	assert.Empty(t, rec.DeviceOverview.Hostname)
	assert.Nil(t, rec.DeviceOverview.CPUUtilization)
	assert.Nil(t, rec.DeviceOverview.MemoryUsage)
	assert.NotNil(t, rec.Interfaces)
	assert.Empty(t, rec.Interfaces)
	assert.NotNil(t, rec.Neighbors)
	assert.NotNil(t, rec.VLANs.VLANList)
	assert.NotNil(t, rec.MACARP.MACTable)
	assert.NotNil(t, rec.Security.UserAccounts)
	assert.Equal(t, "", rec.OriginalContent)
}

func TestParseIdempotent(t *testing.T) {
	a := Parse(ciscoSample)
	b := Parse(ciscoSample)
	// Identical bytes parse identically apart from the timestamp.
	a.ParsedAt = b.ParsedAt
	assert.Equal(t, a, b)
}

func TestNeighborArtifactFiltering(t *testing.T) {
	content := "!\nhostname sw1\n!\nshow cdp neighbors detail\nDevice ID: dist-sw2\n  IP address: 10.0.0.2\n  Platform: cisco WS-C3750,  Capabilities: Switch IGMP\n  Interface: GigabitEthernet1/0/24,  Port ID (outgoing port): GigabitEthernet0/1\n"
	rec := Parse(content)

	require.Len(t, rec.Neighbors, 1)
	n := rec.Neighbors[0]
	assert.Equal(t, "dist-sw2", n.DeviceName)
	assert.Equal(t, "10.0.0.2", n.IPAddress)
	assert.Equal(t, "GigabitEthernet1/0/24", n.LocalPort)
	assert.Equal(t, "GigabitEthernet0/1", n.RemotePort)
	assert.Equal(t, types.ProtocolCDP, n.Protocol)

	assert.False(t, isNeighborArtifact("dist-sw2"))
	assert.True(t, isNeighborArtifact("Device"))
	assert.True(t, isNeighborArtifact("Port"))
	assert.True(t, isNeighborArtifact("(R)"))
	assert.True(t, isNeighborArtifact(""))
}
