package parser

import (
	"regexp"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

// genericParser is the best-effort fallback when vendor detection fails.
// It recognizes the structures that look the same everywhere (hostname-ish
// lines, interface blocks with addresses) and leaves the rest empty.
type genericParser struct{}

func (p *genericParser) Vendor() types.Vendor { return types.VendorUnknown }

var genericHostname = regexp.MustCompile(`(?m)^\s*(?:hostname|sysname|host-name|set system host-name)\s+(\S+)`)

func (p *genericParser) Parse(content string) *types.DeviceRecord {
	rec := newRecord()

	if m := genericHostname.FindStringSubmatch(content); m != nil {
		rec.DeviceOverview.Hostname = strings.TrimSuffix(m[1], ";")
	}
	rec.DeviceOverview.Role = ClassifyRole(rec.DeviceOverview.Hostname)

	lines := splitLines(content)
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
			case strings.HasPrefix(line, "ip address "):
				fields := strings.Fields(line)
				if len(fields) >= 3 {
					iface.IPv4Address = fields[2]
				}
			}
		}
		rec.Interfaces = append(rec.Interfaces, iface)
	}

	return rec
}
