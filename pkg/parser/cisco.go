package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

// CiscoParser extracts IOS/IOS-XE/NX-OS configuration dumps and common
// show-command output that operators paste into the same file.
type CiscoParser struct{}

func (p *CiscoParser) Vendor() types.Vendor { return types.VendorCisco }

var (
	ciscoHostname  = regexp.MustCompile(`(?m)^hostname (\S+)`)
	ciscoVersion   = regexp.MustCompile(`Cisco (?:IOS|NX-OS).*?Version ([^,\s]+)`)
	ciscoVerLine   = regexp.MustCompile(`(?m)^version (\S+)`)
	ciscoModel     = regexp.MustCompile(`(?mi)^(?:Model [Nn]umber\s*:|cisco)\s+((?:WS|C|N|ISR|ASR|catalyst)[\w-]+)`)
	ciscoSerial    = regexp.MustCompile(`(?mi)^(?:System [Ss]erial [Nn]umber\s*:\s*|Processor board ID )(\S+)`)
	ciscoUptime    = regexp.MustCompile(`(?m)uptime is (.+)$`)
	ciscoCPU       = regexp.MustCompile(`CPU utilization for five seconds: (\d+)%`)
	ciscoMemory    = regexp.MustCompile(`Processor Pool Total:\s*(\d+) Used:\s*(\d+)`)
	ciscoIPAddr    = regexp.MustCompile(`^ip address (\d+\.\d+\.\d+\.\d+)(?:[ /](\S+))?`)
	ciscoStaticRt  = regexp.MustCompile(`(?m)^ip route (\S+) (\S+) (\S+)`)
	ciscoSTPMode   = regexp.MustCompile(`(?m)^spanning-tree mode (\S+)`)
	ciscoSTPPri    = regexp.MustCompile(`(?m)^spanning-tree vlan [\d,-]+ priority (\d+)`)
	ciscoSNMP      = regexp.MustCompile(`(?m)^snmp-server community (\S+)`)
	ciscoNTP       = regexp.MustCompile(`(?m)^ntp server (\S+)`)
	ciscoLogging   = regexp.MustCompile(`(?m)^logging (?:host )?(\d+\.\d+\.\d+\.\d+)`)
	ciscoUsername  = regexp.MustCompile(`(?m)^username (\S+)(?: privilege (\d+))?`)
	ciscoACLNum    = regexp.MustCompile(`(?m)^access-list (\d+) (.+)$`)
	ciscoMACRow    = regexp.MustCompile(`(?m)^[* ]*(\d+)\s+([0-9a-fA-F]{4}\.[0-9a-fA-F]{4}\.[0-9a-fA-F]{4})\s+(\S+)\s+(?:\S+\s+)?(\S+)\s*$`)
	ciscoARPRow    = regexp.MustCompile(`(?m)^Internet\s+(\d+\.\d+\.\d+\.\d+)\s+(\S+)\s+([0-9a-fA-F.]+)\s+\S+\s+(\S+)`)
	ciscoOSPFNbr   = regexp.MustCompile(`(?m)^(\d+\.\d+\.\d+\.\d+)\s+\d+\s+(\S+)\s+[\d:.]+\s+(\d+\.\d+\.\d+\.\d+)\s+(\S+)`)
	ciscoSTPPort   = regexp.MustCompile(`(?m)^(\S+)\s+(Root|Desg|Altn|Back|Mstr)\s+(FWD|BLK|LRN|LIS|DIS)\s+`)
	ciscoSTPRootID = regexp.MustCompile(`Root ID\s+Priority\s+(\d+)\s+Address\s+([0-9a-fA-F.]+)`)
	ciscoSTPBrID   = regexp.MustCompile(`Bridge ID\s+Priority\s+(\d+)\s+.*?Address\s+([0-9a-fA-F.]+)`)
	ciscoVlanBrief = regexp.MustCompile(`(?m)^(\d+)\s+(\S+)\s+(active|act/unsup|suspended|shutdown)`)
	ciscoShowIface = regexp.MustCompile(`^(\S+) is (?:up|down|administratively down), line protocol is`)
	ciscoInErrors  = regexp.MustCompile(`^(\d+) input errors`)
	ciscoOutErrors = regexp.MustCompile(`^(\d+) output errors`)
)

func (p *CiscoParser) Parse(content string) *types.DeviceRecord {
	rec := newRecord()
	lines := splitLines(content)

	p.parseOverview(content, rec)
	p.parseInterfaces(lines, rec)
	p.parseCounters(lines, rec)
	p.parseVLANs(content, lines, rec)
	p.parseSTP(content, rec)
	p.parseRouting(content, lines, rec)
	p.parseNeighbors(content, lines, rec)
	p.parseMACARP(content, rec)
	p.parseSecurity(content, lines, rec)
	p.parseHA(lines, rec)
	p.resolveMgmtIP(rec)

	return rec
}

func (p *CiscoParser) parseOverview(content string, rec *types.DeviceRecord) {
	ov := &rec.DeviceOverview
	if m := ciscoHostname.FindStringSubmatch(content); m != nil {
		ov.Hostname = m[1]
	}
	if m := ciscoVersion.FindStringSubmatch(content); m != nil {
		ov.OSVersion = m[1]
	} else if m := ciscoVerLine.FindStringSubmatch(content); m != nil {
		ov.OSVersion = m[1]
	}
	if m := ciscoModel.FindStringSubmatch(content); m != nil {
		ov.Model = m[1]
	}
	if m := ciscoSerial.FindStringSubmatch(content); m != nil {
		ov.SerialNumber = m[1]
	}
	if m := ciscoUptime.FindStringSubmatch(content); m != nil {
		ov.Uptime = strings.TrimSpace(m[1])
	}
	if m := ciscoCPU.FindStringSubmatch(content); m != nil {
		ov.CPUUtilization = atofPtr(m[1])
	}
	if m := ciscoMemory.FindStringSubmatch(content); m != nil {
		total, err1 := strconv.ParseFloat(m[1], 64)
		used, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && total > 0 {
			ov.MemoryUsage = floatPtr(used / total * 100)
		}
	}
	ov.Role = ClassifyRole(ov.Hostname)
}

func (p *CiscoParser) parseInterfaces(lines []string, rec *types.DeviceRecord) {
	for _, b := range collectBlocks(lines, "interface") {
		iface := types.Interface{
			Name:        b.header,
			Type:        interfaceType(b.header),
			AdminStatus: "up",
			PortMode:    types.PortModeUnknown,
		}
		for _, line := range b.lines {
			switch {
			case line == "shutdown":
				iface.AdminStatus = "down"
				iface.OperStatus = "down"
			case strings.HasPrefix(line, "description "):
				iface.Description = strings.TrimPrefix(line, "description ")
			case strings.HasPrefix(line, "switchport mode access"):
				iface.PortMode = types.PortModeAccess
			case strings.HasPrefix(line, "switchport mode trunk"):
				iface.PortMode = types.PortModeTrunk
			case strings.HasPrefix(line, "switchport access vlan "):
				iface.AccessVLAN = atoiPtr(strings.TrimPrefix(line, "switchport access vlan "))
			case strings.HasPrefix(line, "switchport trunk native vlan "):
				iface.NativeVLAN = atoiPtr(strings.TrimPrefix(line, "switchport trunk native vlan "))
			case strings.HasPrefix(line, "switchport trunk allowed vlan add "):
				expr := strings.TrimPrefix(line, "switchport trunk allowed vlan add ")
				if iface.AllowedVLANs != "" && iface.AllowedVLANs != "all" {
					iface.AllowedVLANs += "," + expr
				} else {
					iface.AllowedVLANs = expr
				}
			case strings.HasPrefix(line, "switchport trunk allowed vlan "):
				iface.AllowedVLANs = strings.TrimPrefix(line, "switchport trunk allowed vlan ")
			case strings.HasPrefix(line, "speed "):
				iface.Speed = strings.TrimPrefix(line, "speed ")
			case strings.HasPrefix(line, "duplex "):
				iface.Duplex = strings.TrimPrefix(line, "duplex ")
			case strings.HasPrefix(line, "spanning-tree portfast"):
				iface.STPEdgedPort = boolPtr(true)
			case strings.HasPrefix(line, "ip address "):
				if m := ciscoIPAddr.FindStringSubmatch(line); m != nil {
					iface.IPv4Address = m[1]
				}
			case strings.HasPrefix(line, "power inline "):
				// e.g. "power inline static max 15400" (milliwatts)
				fields := strings.Fields(line)
				if v := atofPtr(fields[len(fields)-1]); v != nil {
					iface.PoEPower = floatPtr(*v / 1000)
				}
			}
		}
		// A trunk with no explicit native VLAN defaults to 1.
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

// parseCounters attaches input/output error counters from show interfaces
// detail output to the matching configured interface.
func (p *CiscoParser) parseCounters(lines []string, rec *types.DeviceRecord) {
	current := -1
	for _, raw := range lines {
		if m := ciscoShowIface.FindStringSubmatch(raw); m != nil {
			current = findInterface(rec, m[1])
			continue
		}
		if current < 0 {
			continue
		}
		line := strings.TrimSpace(raw)
		if m := ciscoInErrors.FindStringSubmatch(line); m != nil {
			rec.Interfaces[current].Errors.Input = atoi64Ptr(m[1])
		}
		if m := ciscoOutErrors.FindStringSubmatch(line); m != nil {
			rec.Interfaces[current].Errors.Output = atoi64Ptr(m[1])
		}
	}
}

func (p *CiscoParser) parseVLANs(content string, lines []string, rec *types.DeviceRecord) {
	seen := map[int]bool{}
	add := func(id int, name, status string) {
		if id < 1 || id > maxVLAN {
			return
		}
		seen[id] = true
		k := strconv.Itoa(id)
		if name != "" && name != "VLAN"+fmt4(id) {
			rec.VLANs.VLANNames[k] = name
		}
		if status != "" {
			rec.VLANs.VLANStatus[k] = status
		}
	}

	// Config form: "vlan 10" (optionally "vlan 10,20,30-40") with "name".
	for _, b := range collectBlocks(lines, "vlan") {
		ids, _ := ExpandVLANRange(b.header)
		var name string
		for _, line := range b.lines {
			if strings.HasPrefix(line, "name ") {
				name = strings.TrimPrefix(line, "name ")
			}
		}
		for _, id := range ids {
			if len(ids) == 1 {
				add(id, name, "")
			} else {
				add(id, "", "")
			}
		}
	}

	// show vlan brief rows win for names and status.
	for _, m := range ciscoVlanBrief.FindAllStringSubmatch(content, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		add(id, m[2], m[3])
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rec.VLANs.VLANList = ids
}

func fmt4(id int) string {
	s := strconv.Itoa(id)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func (p *CiscoParser) parseSTP(content string, rec *types.DeviceRecord) {
	stp := &rec.STP
	if m := ciscoSTPMode.FindStringSubmatch(content); m != nil {
		switch m[1] {
		case "rapid-pvst":
			stp.Mode = "RPVST"
		case "pvst":
			stp.Mode = "PVST"
		case "mst":
			stp.Mode = "MSTP"
		default:
			stp.Mode = strings.ToUpper(m[1])
		}
	}
	if m := ciscoSTPPri.FindStringSubmatch(content); m != nil {
		stp.BridgePriority = atoiPtr(m[1])
	}
	if m := ciscoSTPRootID.FindStringSubmatch(content); m != nil {
		stp.RootBridgeID = m[2]
	}
	if m := ciscoSTPBrID.FindStringSubmatch(content); m != nil {
		stp.BridgeID = m[2]
		if stp.BridgePriority == nil {
			stp.BridgePriority = atoiPtr(m[1])
		}
	}
	if strings.Contains(content, "This bridge is the root") {
		stp.RootBridgeStatus = true
	} else if stp.BridgeID != "" && stp.BridgeID == stp.RootBridgeID {
		stp.RootBridgeStatus = true
	}
	stp.PortfastEnabled = strings.Contains(content, "spanning-tree portfast default") ||
		strings.Contains(content, "spanning-tree portfast")
	stp.BPDUGuard = strings.Contains(content, "bpduguard")

	// show spanning-tree rows take precedence over mode-wide defaults.
	for _, m := range ciscoSTPPort.FindAllStringSubmatch(content, -1) {
		port, role, state := m[1], m[2], m[3]
		if strings.EqualFold(port, "Interface") {
			continue
		}
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

// interfaceNameMatches compares a configured name against a show-output
// abbreviation ("GigabitEthernet1/0/24" vs "Gi1/0/24").
func interfaceNameMatches(full, abbrev string) bool {
	if strings.EqualFold(full, abbrev) {
		return true
	}
	fl, al := strings.ToLower(full), strings.ToLower(abbrev)
	fi := strings.IndexFunc(fl, isDigitByte)
	ai := strings.IndexFunc(al, isDigitByte)
	if fi <= 0 || ai <= 0 || fl[fi:] != al[ai:] {
		return false
	}
	return strings.HasPrefix(fl[:fi], al[:ai]) || strings.HasPrefix(al[:ai], fl[:fi])
}

func isDigitByte(r rune) bool { return r >= '0' && r <= '9' }

func (p *CiscoParser) parseRouting(content string, lines []string, rec *types.DeviceRecord) {
	for _, m := range ciscoStaticRt.FindAllStringSubmatch(content, -1) {
		rec.Routing.Static = append(rec.Routing.Static, types.StaticRoute{
			Prefix:  m[1] + " " + m[2],
			NextHop: m[3],
		})
	}

	for _, b := range collectBlocks(lines, "router") {
		fields := strings.Fields(b.header)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "ospf":
			ospf := &types.OSPFInfo{}
			if len(fields) > 1 {
				ospf.ProcessID = fields[1]
			}
			areas := map[string]bool{}
			for _, line := range b.lines {
				if strings.HasPrefix(line, "router-id ") {
					ospf.RouterID = strings.TrimPrefix(line, "router-id ")
				}
				if strings.HasPrefix(line, "network ") {
					nf := strings.Fields(line)
					if len(nf) >= 5 && nf[3] == "area" {
						areas[nf[4]] = true
					}
				}
				if strings.HasPrefix(line, "passive-interface ") {
					ospf.Interfaces = append(ospf.Interfaces, strings.TrimPrefix(line, "passive-interface "))
				}
			}
			for a := range areas {
				ospf.Areas = append(ospf.Areas, a)
			}
			sort.Strings(ospf.Areas)
			rec.Routing.OSPF = ospf
		case "bgp":
			bgp := &types.BGPInfo{}
			if len(fields) > 1 {
				bgp.ASNumber = atoiPtr(fields[1])
			}
			for _, line := range b.lines {
				if strings.HasPrefix(line, "bgp router-id ") {
					bgp.RouterID = strings.TrimPrefix(line, "bgp router-id ")
				}
				nf := strings.Fields(line)
				if len(nf) >= 4 && nf[0] == "neighbor" && nf[2] == "remote-as" {
					bgp.Peers = append(bgp.Peers, types.BGPPeer{
						Address:  nf[1],
						RemoteAS: atoiPtr(nf[3]),
					})
				}
			}
			rec.Routing.BGP = bgp
		case "eigrp":
			eigrp := &types.EIGRPInfo{}
			if len(fields) > 1 {
				eigrp.ASNumber = atoiPtr(fields[1])
			}
			for _, line := range b.lines {
				if strings.HasPrefix(line, "network ") {
					eigrp.Networks = append(eigrp.Networks, strings.TrimPrefix(line, "network "))
				}
			}
			rec.Routing.EIGRP = eigrp
		case "rip":
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

	// show ip ospf neighbor rows
	if rec.Routing.OSPF != nil || strings.Contains(content, "ospf") {
		for _, m := range ciscoOSPFNbr.FindAllStringSubmatch(content, -1) {
			if rec.Routing.OSPF == nil {
				rec.Routing.OSPF = &types.OSPFInfo{}
			}
			rec.Routing.OSPF.Neighbors = append(rec.Routing.OSPF.Neighbors, types.OSPFNeighbor{
				NeighborID: m[1],
				State:      m[2],
				Address:    m[3],
				Interface:  m[4],
			})
		}
	}
}

func (p *CiscoParser) parseNeighbors(content string, lines []string, rec *types.DeviceRecord) {
	// show cdp neighbors detail blocks
	for _, chunk := range strings.Split(content, "Device ID:")[1:] {
		n := types.Neighbor{Protocol: types.ProtocolCDP}
		chunkLines := splitLines(chunk)
		if len(chunkLines) == 0 {
			continue
		}
		n.DeviceName = strings.TrimSpace(chunkLines[0])
		for _, line := range chunkLines {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "IP address:"):
				if n.IPAddress == "" {
					n.IPAddress = strings.TrimSpace(strings.TrimPrefix(line, "IP address:"))
				}
			case strings.HasPrefix(line, "Platform:"):
				rest := strings.TrimPrefix(line, "Platform:")
				platform, caps, _ := strings.Cut(rest, ",")
				n.Platform = strings.TrimSpace(platform)
				if _, c, ok := strings.Cut(caps, "Capabilities:"); ok {
					for _, cap := range strings.Fields(c) {
						n.Capabilities = append(n.Capabilities, strings.TrimSpace(cap))
					}
				}
			case strings.HasPrefix(line, "Interface:"):
				rest := strings.TrimPrefix(line, "Interface:")
				local, remote, _ := strings.Cut(rest, ",")
				n.LocalPort = strings.TrimSpace(local)
				if _, r, ok := strings.Cut(remote, ":"); ok {
					n.RemotePort = strings.TrimSpace(r)
				}
			}
		}
		if !isNeighborArtifact(n.DeviceName) {
			rec.Neighbors = append(rec.Neighbors, n)
		}
	}

	// show lldp neighbors table rows: Device Local-Intf Hold Capability Port
	inLLDP := false
	for _, line := range lines {
		if strings.Contains(line, "show lldp neighbors") {
			inLLDP = true
			continue
		}
		if !inLLDP {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || isNeighborArtifact(fields[0]) {
			if len(fields) == 0 {
				inLLDP = false
			}
			continue
		}
		rec.Neighbors = append(rec.Neighbors, types.Neighbor{
			DeviceName: fields[0],
			LocalPort:  fields[1],
			RemotePort: fields[len(fields)-1],
			Protocol:   types.ProtocolLLDP,
		})
	}
}

func (p *CiscoParser) parseMACARP(content string, rec *types.DeviceRecord) {
	for _, m := range ciscoMACRow.FindAllStringSubmatch(content, -1) {
		rec.MACARP.MACTable = append(rec.MACARP.MACTable, types.MACEntry{
			VLAN: atoiPtr(m[1]),
			MAC:  strings.ToLower(m[2]),
			Type: strings.ToUpper(m[3]),
			Port: m[4],
		})
	}
	for _, m := range ciscoARPRow.FindAllStringSubmatch(content, -1) {
		rec.MACARP.ARPTable = append(rec.MACARP.ARPTable, types.ARPEntry{
			IPAddress: m[1],
			Age:       m[2],
			MAC:       strings.ToLower(m[3]),
			Interface: m[4],
		})
	}
}

func (p *CiscoParser) parseSecurity(content string, lines []string, rec *types.DeviceRecord) {
	sec := &rec.Security
	for _, m := range ciscoUsername.FindAllStringSubmatch(content, -1) {
		acct := types.UserAccount{Username: m[1]}
		if m[2] != "" {
			acct.Privilege = atoiPtr(m[2])
		}
		sec.UserAccounts = append(sec.UserAccounts, acct)
	}

	sec.AAA.Authentication = strings.Contains(content, "aaa authentication")
	sec.AAA.Authorization = strings.Contains(content, "aaa authorization")
	sec.AAA.Accounting = strings.Contains(content, "aaa accounting")

	if strings.Contains(content, "transport input ssh") || strings.Contains(content, "ip ssh") {
		sec.SSH.Enabled = true
		if strings.Contains(content, "ip ssh version 2") {
			sec.SSH.Version = "2"
		}
	}

	for _, m := range ciscoSNMP.FindAllStringSubmatch(content, -1) {
		sec.SNMP.Enabled = true
		sec.SNMP.Communities = append(sec.SNMP.Communities, m[1])
	}
	if strings.Contains(content, "snmp-server") && strings.Contains(content, "v3") {
		sec.SNMP.Version = "3"
	} else if sec.SNMP.Enabled {
		sec.SNMP.Version = "2c"
	}

	for _, m := range ciscoNTP.FindAllStringSubmatch(content, -1) {
		sec.NTP.Enabled = true
		sec.NTP.Servers = append(sec.NTP.Servers, m[1])
	}
	if m := regexp.MustCompile(`stratum (\d+)`).FindStringSubmatch(content); m != nil {
		sec.NTP.Stratum = atoiPtr(m[1])
	}
	sec.NTP.Synchronized = strings.Contains(content, "Clock is synchronized")

	for _, m := range ciscoLogging.FindAllStringSubmatch(content, -1) {
		sec.Syslog.Enabled = true
		sec.Syslog.Hosts = append(sec.Syslog.Hosts, m[1])
	}

	// Named ACL blocks, then classic numbered lines.
	for _, b := range collectBlocks(lines, "ip access-list") {
		fields := strings.Fields(b.header)
		if len(fields) < 2 {
			continue
		}
		sec.ACLs = append(sec.ACLs, types.ACL{
			Type:  fields[0],
			Name:  fields[1],
			Rules: b.lines,
		})
	}
	numbered := map[string][]string{}
	for _, m := range ciscoACLNum.FindAllStringSubmatch(content, -1) {
		numbered[m[1]] = append(numbered[m[1]], m[2])
	}
	nums := make([]string, 0, len(numbered))
	for n := range numbered {
		nums = append(nums, n)
	}
	sort.Strings(nums)
	for _, n := range nums {
		sec.ACLs = append(sec.ACLs, types.ACL{Name: n, Type: "numbered", Rules: numbered[n]})
	}
}

func (p *CiscoParser) parseHA(lines []string, rec *types.DeviceRecord) {
	channels := map[string]*types.PortChannel{}
	for _, b := range collectBlocks(lines, "interface") {
		name := b.header
		for _, line := range b.lines {
			fields := strings.Fields(line)
			switch {
			case len(fields) >= 2 && fields[0] == "channel-group":
				id := fields[1]
				ch := channels[id]
				if ch == nil {
					ch = &types.PortChannel{ID: "Port-channel" + id}
					channels[id] = ch
				}
				ch.Members = append(ch.Members, name)
				if len(fields) >= 4 && fields[2] == "mode" {
					ch.Mode = fields[3]
				}
			case len(fields) >= 4 && fields[0] == "standby" && fields[2] == "ip":
				rec.HA.HSRP.Groups = append(rec.HA.HSRP.Groups, types.FHRPGroup{
					Group:     fields[1],
					VirtualIP: fields[3],
					Interface: name,
				})
			case len(fields) >= 4 && fields[0] == "vrrp" && fields[2] == "ip":
				rec.HA.VRRP.Groups = append(rec.HA.VRRP.Groups, types.FHRPGroup{
					Group:     fields[1],
					VirtualIP: fields[3],
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

// resolveMgmtIP picks the management address: an SVI whose name or
// description smells like management, else the first SVI, else a loopback.
func (p *CiscoParser) resolveMgmtIP(rec *types.DeviceRecord) {
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

func boolPtr(v bool) *bool { return &v }
