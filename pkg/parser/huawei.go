package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

// HuaweiParser extracts VRP configuration dumps (display
// current-configuration) and the display command output shipped with them.
type HuaweiParser struct{}

func (p *HuaweiParser) Vendor() types.Vendor { return types.VendorHuawei }

var (
	huaweiSysname  = regexp.MustCompile(`(?m)^sysname (\S+)`)
	huaweiVersion  = regexp.MustCompile(`VRP \(R\) [Ss]oftware, Version (\S+)`)
	huaweiModel    = regexp.MustCompile(`(?mi)^HUAWEI (\S+)|Quidway (\S+)`)
	huaweiSerial   = regexp.MustCompile(`(?mi)^(?:ESN|SerialNumber|Serial Number)\s*[:of]*\s*(\S+)`)
	huaweiUptime   = regexp.MustCompile(`uptime is (.+)$`)
	huaweiCPU      = regexp.MustCompile(`CPU Usage\s*:\s*(\d+)%`)
	huaweiMemory   = regexp.MustCompile(`Memory Usage\s*:\s*(\d+)%`)
	huaweiVlanB    = regexp.MustCompile(`(?m)^vlan batch (.+)$`)
	huaweiStatic   = regexp.MustCompile(`(?m)^ip route-static (\S+) (\S+) (\S+)`)
	huaweiIPAddr   = regexp.MustCompile(`^ip address (\d+\.\d+\.\d+\.\d+)\s+(\S+)`)
	huaweiSTPMode  = regexp.MustCompile(`(?m)^stp mode (\S+)`)
	huaweiSTPPri   = regexp.MustCompile(`(?m)^stp priority (\d+)`)
	huaweiSNMP     = regexp.MustCompile(`(?m)^snmp-agent community (?:read|write) (?:cipher )?(\S+)`)
	huaweiNTP      = regexp.MustCompile(`(?m)^ntp-service unicast-server (\S+)`)
	huaweiSyslog   = regexp.MustCompile(`(?m)^info-center loghost (\S+)`)
	huaweiUser     = regexp.MustCompile(`(?m)^local-user (\S+?)(?: privilege level (\d+))?(?: password| service-type|$)`)
	huaweiACL      = regexp.MustCompile(`(?m)^acl (?:number )?(\d+)`)
	huaweiSTPBrief = regexp.MustCompile(`(?m)^\s*(\d+)\s+(\S+)\s+(ROOT|DESI|ALTE|BACK|MAST)\w*\s+(FORWARDING|DISCARDING|LEARNING)`)
	huaweiLLDPNbr  = regexp.MustCompile(`(?m)^(\S+) has \d+ neighbor`)
	huaweiIfState  = regexp.MustCompile(`^(\S+) current state\s*:`)
	huaweiInErr    = regexp.MustCompile(`^Input error[s]?\s*:\s*(\d+)`)
	huaweiOutErr   = regexp.MustCompile(`^Output error[s]?\s*:\s*(\d+)`)
)

func (p *HuaweiParser) Parse(content string) *types.DeviceRecord {
	rec := newRecord()
	lines := splitLines(content)

	p.parseOverview(content, rec)
	p.parseInterfaces(lines, rec)
	p.parseCounters(lines, rec)
	p.parseVLANs(content, lines, rec)
	p.parseSTP(content, rec)
	p.parseRouting(content, lines, rec)
	p.parseNeighbors(lines, rec)
	p.parseSecurity(content, rec)
	p.parseHA(lines, rec)
	p.resolveMgmtIP(rec)

	return rec
}

func (p *HuaweiParser) parseOverview(content string, rec *types.DeviceRecord) {
	ov := &rec.DeviceOverview
	if m := huaweiSysname.FindStringSubmatch(content); m != nil {
		ov.Hostname = m[1]
	}
	if m := huaweiVersion.FindStringSubmatch(content); m != nil {
		ov.OSVersion = m[1]
	}
	if m := huaweiModel.FindStringSubmatch(content); m != nil {
		if m[1] != "" {
			ov.Model = m[1]
		} else {
			ov.Model = m[2]
		}
	}
	if m := huaweiSerial.FindStringSubmatch(content); m != nil {
		ov.SerialNumber = m[1]
	}
	if m := huaweiUptime.FindStringSubmatch(content); m != nil {
		ov.Uptime = strings.TrimSpace(m[1])
	}
	if m := huaweiCPU.FindStringSubmatch(content); m != nil {
		ov.CPUUtilization = atofPtr(m[1])
	}
	if m := huaweiMemory.FindStringSubmatch(content); m != nil {
		ov.MemoryUsage = atofPtr(m[1])
	}
	ov.Role = ClassifyRole(ov.Hostname)
}

func (p *HuaweiParser) parseInterfaces(lines []string, rec *types.DeviceRecord) {
	for _, b := range collectBlocks(lines, "interface") {
		iface := types.Interface{
			Name:        b.header,
			Type:        huaweiInterfaceType(b.header),
			AdminStatus: "up",
			PortMode:    types.PortModeUnknown,
		}
		for _, line := range b.lines {
			switch {
			case line == "shutdown":
				iface.AdminStatus = "down"
				iface.OperStatus = "down"
			case line == "undo shutdown":
				iface.AdminStatus = "up"
			case strings.HasPrefix(line, "description "):
				iface.Description = strings.TrimPrefix(line, "description ")
			case strings.HasPrefix(line, "port link-type access"):
				iface.PortMode = types.PortModeAccess
			case strings.HasPrefix(line, "port link-type trunk"):
				iface.PortMode = types.PortModeTrunk
			case strings.HasPrefix(line, "port default vlan "):
				iface.AccessVLAN = atoiPtr(strings.TrimPrefix(line, "port default vlan "))
			case strings.HasPrefix(line, "port trunk pvid vlan "):
				iface.NativeVLAN = atoiPtr(strings.TrimPrefix(line, "port trunk pvid vlan "))
			case strings.HasPrefix(line, "port trunk allow-pass vlan "):
				expr := normalizeHuaweiVLANList(strings.TrimPrefix(line, "port trunk allow-pass vlan "))
				if iface.AllowedVLANs != "" && iface.AllowedVLANs != "all" {
					iface.AllowedVLANs += "," + expr
				} else {
					iface.AllowedVLANs = expr
				}
			case strings.HasPrefix(line, "speed "):
				iface.Speed = strings.TrimPrefix(line, "speed ")
			case strings.HasPrefix(line, "duplex "):
				iface.Duplex = strings.TrimPrefix(line, "duplex ")
			case strings.HasPrefix(line, "stp edged-port enable"):
				iface.STPEdgedPort = boolPtr(true)
			case strings.HasPrefix(line, "ip address "):
				if m := huaweiIPAddr.FindStringSubmatch(line); m != nil {
					iface.IPv4Address = m[1]
				}
			}
		}
		if iface.PortMode == types.PortModeTrunk {
			if iface.NativeVLAN == nil {
				iface.NativeVLAN = intPtr(1)
			}
			if iface.AllowedVLANs == "" {
				iface.AllowedVLANs = "all"
			}
		}
		rec.Interfaces = append(rec.Interfaces, iface)
	}
}

// parseCounters attaches input/output error counters from display
// interface output to the matching configured interface.
func (p *HuaweiParser) parseCounters(lines []string, rec *types.DeviceRecord) {
	current := -1
	for _, raw := range lines {
		if m := huaweiIfState.FindStringSubmatch(raw); m != nil {
			current = findInterface(rec, m[1])
			continue
		}
		if current < 0 {
			continue
		}
		line := strings.TrimSpace(raw)
		if m := huaweiInErr.FindStringSubmatch(line); m != nil {
			rec.Interfaces[current].Errors.Input = atoi64Ptr(m[1])
		}
		if m := huaweiOutErr.FindStringSubmatch(line); m != nil {
			rec.Interfaces[current].Errors.Output = atoi64Ptr(m[1])
		}
	}
}

func huaweiInterfaceType(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "vlanif"):
		return "svi"
	case strings.HasPrefix(n, "loopback"):
		return "loopback"
	case strings.HasPrefix(n, "eth-trunk"):
		return "port-channel"
	case strings.HasPrefix(n, "meth"), strings.HasPrefix(n, "mgmt"):
		return "management"
	case strings.HasPrefix(n, "null"):
		return "null"
	default:
		return "ethernet"
	}
}

func (p *HuaweiParser) parseVLANs(content string, lines []string, rec *types.DeviceRecord) {
	seen := map[int]bool{}

	for _, m := range huaweiVlanB.FindAllStringSubmatch(content, -1) {
		ids, _ := ExpandVLANRange(normalizeHuaweiVLANList(m[1]))
		for _, id := range ids {
			seen[id] = true
		}
	}
	for _, b := range collectBlocks(lines, "vlan") {
		if strings.HasPrefix(b.header, "batch") {
			continue
		}
		id, err := strconv.Atoi(strings.Fields(b.header)[0])
		if err != nil || id < 1 || id > maxVLAN {
			continue
		}
		seen[id] = true
		for _, line := range b.lines {
			if strings.HasPrefix(line, "name ") {
				rec.VLANs.VLANNames[strconv.Itoa(id)] = strings.TrimPrefix(line, "name ")
			}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rec.VLANs.VLANList = ids
}

func (p *HuaweiParser) parseSTP(content string, rec *types.DeviceRecord) {
	stp := &rec.STP
	if m := huaweiSTPMode.FindStringSubmatch(content); m != nil {
		stp.Mode = strings.ToUpper(m[1])
	}
	if m := huaweiSTPPri.FindStringSubmatch(content); m != nil {
		stp.BridgePriority = atoiPtr(m[1])
	}
	stp.BPDUGuard = strings.Contains(content, "stp bpdu-protection")
	stp.PortfastEnabled = strings.Contains(content, "stp edged-port enable")
	if strings.Contains(content, "The bridge is the root") ||
		strings.Contains(content, "This bridge is the root") {
		stp.RootBridgeStatus = true
	}

	// display stp brief rows: MSTID Port Role State
	for _, m := range huaweiSTPBrief.FindAllStringSubmatch(content, -1) {
		port, role, state := m[2], m[3], m[4]
		stp.PortRoles[port] = role
		stp.PortStates[port] = state
		for i := range rec.Interfaces {
			if interfaceNameMatches(rec.Interfaces[i].Name, port) {
				rec.Interfaces[i].STPRole = role
				rec.Interfaces[i].STPState = state
			}
		}
	}
}

func (p *HuaweiParser) parseRouting(content string, lines []string, rec *types.DeviceRecord) {
	for _, m := range huaweiStatic.FindAllStringSubmatch(content, -1) {
		rec.Routing.Static = append(rec.Routing.Static, types.StaticRoute{
			Prefix:  m[1] + " " + m[2],
			NextHop: m[3],
		})
	}

	for _, b := range collectBlocks(lines, "ospf") {
		ospf := &types.OSPFInfo{}
		fields := strings.Fields(b.header)
		if len(fields) > 0 {
			ospf.ProcessID = fields[0]
		}
		for i, f := range fields {
			if f == "router-id" && i+1 < len(fields) {
				ospf.RouterID = fields[i+1]
			}
		}
		areas := map[string]bool{}
		for _, line := range b.lines {
			if strings.HasPrefix(line, "area ") {
				areas[strings.TrimPrefix(line, "area ")] = true
			}
		}
		for a := range areas {
			ospf.Areas = append(ospf.Areas, a)
		}
		sort.Strings(ospf.Areas)
		rec.Routing.OSPF = ospf
	}

	for _, b := range collectBlocks(lines, "bgp") {
		bgp := &types.BGPInfo{ASNumber: atoiPtr(b.header)}
		for _, line := range b.lines {
			fields := strings.Fields(line)
			if len(fields) >= 4 && fields[0] == "peer" && fields[2] == "as-number" {
				bgp.Peers = append(bgp.Peers, types.BGPPeer{
					Address:  fields[1],
					RemoteAS: atoiPtr(fields[3]),
				})
			}
			if len(fields) >= 2 && fields[0] == "router-id" {
				bgp.RouterID = fields[1]
			}
		}
		rec.Routing.BGP = bgp
	}

	for _, b := range collectBlocks(lines, "rip") {
		rip := &types.RIPInfo{}
		for _, line := range b.lines {
			if strings.HasPrefix(line, "version ") {
				rip.Version = atoiPtr(strings.TrimPrefix(line, "version "))
			}
			if strings.HasPrefix(line, "network ") {
				rip.Networks = append(rip.Networks, strings.TrimPrefix(line, "network "))
			}
		}
		rec.Routing.RIP = rip
	}
}

func (p *HuaweiParser) parseNeighbors(lines []string, rec *types.DeviceRecord) {
	// display lldp neighbor output: one stanza per local port.
	var current types.Neighbor
	var localPort string
	flush := func() {
		if current.DeviceName != "" && !isNeighborArtifact(current.DeviceName) {
			current.LocalPort = localPort
			current.Protocol = types.ProtocolLLDP
			rec.Neighbors = append(rec.Neighbors, current)
		}
		current = types.Neighbor{}
	}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if m := huaweiLLDPNbr.FindStringSubmatch(raw); m != nil {
			flush()
			localPort = m[1]
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.TrimSpace(k) {
		case "System name", "SysName":
			current.DeviceName = v
		case "Port ID", "PortId":
			current.RemotePort = v
		case "Management address", "Management-address":
			current.IPAddress = v
		case "System description", "SysDesc":
			if current.Platform == "" {
				current.Platform = v
			}
		}
	}
	flush()
}

func (p *HuaweiParser) parseSecurity(content string, rec *types.DeviceRecord) {
	sec := &rec.Security
	for _, m := range huaweiUser.FindAllStringSubmatch(content, -1) {
		acct := types.UserAccount{Username: m[1]}
		if m[2] != "" {
			acct.Privilege = atoiPtr(m[2])
		}
		sec.UserAccounts = append(sec.UserAccounts, acct)
	}

	sec.AAA.Authentication = strings.Contains(content, "authentication-scheme")
	sec.AAA.Authorization = strings.Contains(content, "authorization-scheme")
	sec.AAA.Accounting = strings.Contains(content, "accounting-scheme")

	if strings.Contains(content, "stelnet server enable") || strings.Contains(content, "ssh user") {
		sec.SSH.Enabled = true
		sec.SSH.Version = "2"
	}

	for _, m := range huaweiSNMP.FindAllStringSubmatch(content, -1) {
		sec.SNMP.Enabled = true
		sec.SNMP.Communities = append(sec.SNMP.Communities, m[1])
	}
	if sec.SNMP.Enabled {
		sec.SNMP.Version = "2c"
	}

	for _, m := range huaweiNTP.FindAllStringSubmatch(content, -1) {
		sec.NTP.Enabled = true
		sec.NTP.Servers = append(sec.NTP.Servers, m[1])
	}
	sec.NTP.Synchronized = strings.Contains(content, "clock status: synchronized")

	for _, m := range huaweiSyslog.FindAllStringSubmatch(content, -1) {
		sec.Syslog.Enabled = true
		sec.Syslog.Hosts = append(sec.Syslog.Hosts, m[1])
	}

	for _, m := range huaweiACL.FindAllStringSubmatch(content, -1) {
		sec.ACLs = append(sec.ACLs, types.ACL{Name: m[1], Type: "numbered"})
	}
}

func (p *HuaweiParser) parseHA(lines []string, rec *types.DeviceRecord) {
	channels := map[string]*types.PortChannel{}
	for _, b := range collectBlocks(lines, "interface") {
		name := b.header
		if strings.HasPrefix(strings.ToLower(name), "eth-trunk") {
			id := strings.TrimPrefix(strings.ToLower(name), "eth-trunk")
			if channels[id] == nil {
				channels[id] = &types.PortChannel{ID: name}
			}
			continue
		}
		for _, line := range b.lines {
			fields := strings.Fields(line)
			switch {
			case len(fields) >= 2 && fields[0] == "eth-trunk":
				id := fields[1]
				ch := channels[id]
				if ch == nil {
					ch = &types.PortChannel{ID: "Eth-Trunk" + id}
					channels[id] = ch
				}
				ch.Members = append(ch.Members, name)
			case len(fields) >= 5 && fields[0] == "vrrp" && fields[1] == "vrid" && fields[3] == "virtual-ip":
				rec.HA.VRRP.Groups = append(rec.HA.VRRP.Groups, types.FHRPGroup{
					Group:     fields[2],
					VirtualIP: fields[4],
					Interface: name,
				})
			}
		}
	}
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec.HA.EtherChannel = append(rec.HA.EtherChannel, *channels[id])
	}
}

func (p *HuaweiParser) resolveMgmtIP(rec *types.DeviceRecord) {
	if rec.DeviceOverview.MgmtIP != "" {
		return
	}
	var firstSVI, firstLoopback string
	for _, iface := range rec.Interfaces {
		if iface.IPv4Address == "" {
			continue
		}
		lower := strings.ToLower(iface.Name + " " + iface.Description)
		switch iface.Type {
		case "svi":
			if strings.Contains(lower, "mgmt") || strings.Contains(lower, "management") {
				rec.DeviceOverview.MgmtIP = iface.IPv4Address
				return
			}
			if firstSVI == "" {
				firstSVI = iface.IPv4Address
			}
		case "management":
			rec.DeviceOverview.MgmtIP = iface.IPv4Address
			return
		case "loopback":
			if firstLoopback == "" {
				firstLoopback = iface.IPv4Address
			}
		}
	}
	if firstSVI != "" {
		rec.DeviceOverview.MgmtIP = firstSVI
	} else {
		rec.DeviceOverview.MgmtIP = firstLoopback
	}
}
