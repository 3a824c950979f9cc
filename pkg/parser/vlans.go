package parser

import (
	"sort"
	"strconv"
	"strings"
)

// maxVLAN is the highest valid 802.1Q VLAN id.
const maxVLAN = 4094

// ExpandVLANRange expands a textual allowed-VLAN expression ("10-20,30")
// into a sorted unique integer set. "all" (or the full 1-4094 range) is
// reported through the second return instead of materializing 4094 ids.
func ExpandVLANRange(expr string) ([]int, bool) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" {
		return nil, false
	}
	if expr == "all" || expr == "1-4094" {
		return nil, true
	}

	seen := map[int]bool{}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(strings.TrimSpace(lo))
			b, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || a > b {
				continue
			}
			for v := a; v <= b && v <= maxVLAN; v++ {
				if v >= 1 {
					seen[v] = true
				}
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 1 || v > maxVLAN {
			continue
		}
		seen[v] = true
	}

	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	if len(out) == maxVLAN {
		return nil, true
	}
	return out, false
}

// VLANCount counts the VLANs an allowed expression admits; "all" and the
// full range both count 4094.
func VLANCount(expr string) int {
	ids, all := ExpandVLANRange(expr)
	if all {
		return maxVLAN
	}
	return len(ids)
}

// normalizeHuaweiVLANList rewrites VRP "10 20 to 30 40" syntax into the
// canonical comma/range form "10,20-30,40".
func normalizeHuaweiVLANList(expr string) string {
	fields := strings.Fields(expr)
	var parts []string
	for i := 0; i < len(fields); i++ {
		if fields[i] == "to" {
			continue
		}
		if i+2 < len(fields) && fields[i+1] == "to" {
			parts = append(parts, fields[i]+"-"+fields[i+2])
			i += 2
			continue
		}
		parts = append(parts, fields[i])
	}
	return strings.Join(parts, ",")
}
