package parser

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

// atoiPtr parses s into *int, nil when s is not a number. Absent numerics
// stay null, never zero.
func atoiPtr(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func atofPtr(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func atoi64Ptr(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return int64Ptr(v)
}

// findInterface locates the configured interface matching a show-output
// name, tolerating abbreviations. Returns -1 when unknown.
func findInterface(rec *types.DeviceRecord, name string) int {
	for i := range rec.Interfaces {
		if interfaceNameMatches(rec.Interfaces[i].Name, name) {
			return i
		}
	}
	return -1
}

// splitLines splits content preserving order, tolerating CRLF.
func splitLines(content string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

// block is one indented configuration section with its header arguments.
type block struct {
	header string
	lines  []string
}

// collectBlocks gathers sections that start with prefix and run while lines
// are indented (or until a terminator like "!" or "#"). The header keeps
// everything after the prefix.
func collectBlocks(lines []string, prefix string) []block {
	var out []block
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, prefix+" ") {
			continue
		}
		b := block{header: strings.TrimSpace(strings.TrimPrefix(line, prefix))}
		for j := i + 1; j < len(lines); j++ {
			body := lines[j]
			if body == "!" || body == "#" || (body != "" && !strings.HasPrefix(body, " ")) {
				break
			}
			b.lines = append(b.lines, strings.TrimSpace(body))
		}
		out = append(out, b)
	}
	return out
}

// interfaceType buckets a port by its name prefix.
func interfaceType(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "vlan"):
		return "svi"
	case strings.HasPrefix(n, "lo"):
		return "loopback"
	case strings.HasPrefix(n, "po") && !strings.HasPrefix(n, "pos"):
		return "port-channel"
	case strings.HasPrefix(n, "tunnel"):
		return "tunnel"
	case strings.HasPrefix(n, "mgmt"), strings.HasPrefix(n, "meth"):
		return "management"
	case strings.HasPrefix(n, "null"):
		return "null"
	default:
		return "ethernet"
	}
}

// neighborHeaderArtifacts are tokens that CDP/LLDP table parsing can
// mistake for device names; entries matching them are dropped.
var neighborHeaderArtifacts = map[string]bool{
	"Device":          true,
	"Device-ID":       true,
	"Device ID":       true,
	"Port":            true,
	"Port ID":         true,
	"(R)":             true,
	"Capability":      true,
	"Local":           true,
	"Total":           true,
	"Neighbor":        true,
	"System":          true,
	"Chassis":         true,
	"Interface":       true,
	"Exp":             true,
	"Holdtme":         true,
	"Hold-time":       true,
}

func isNeighborArtifact(name string) bool {
	if name == "" {
		return true
	}
	return neighborHeaderArtifacts[name] || neighborHeaderArtifacts[strings.TrimSuffix(name, ":")]
}
