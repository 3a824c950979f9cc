package parser

import (
	"regexp"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

var (
	extPattern       = regexp.MustCompile(`(?i)\.(txt|cfg|conf|log|text)$`)
	timestampPattern = regexp.MustCompile(`[_-](20\d{6}(\d{6})?|20\d{2}-\d{2}-\d{2})$`)
	versionPattern   = regexp.MustCompile(`(?i)[_-]v\d+$|\s*\(\d+\)$`)
	separatorRun     = regexp.MustCompile(`[_\s]+`)
)

// DeviceNameFromFilename derives the device name a Config upload feeds the
// parser under: extension, version suffix, and timestamp suffix stripped,
// separators normalized. "core-sw1_20251001.txt" becomes "core-sw1".
func DeviceNameFromFilename(filename string) string {
	name := extPattern.ReplaceAllString(strings.TrimSpace(filename), "")
	name = versionPattern.ReplaceAllString(name, "")
	name = timestampPattern.ReplaceAllString(name, "")
	name = versionPattern.ReplaceAllString(name, "")
	name = separatorRun.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// ClassifyRole maps a device name to a role by substring. Stored role
// overrides always win over this default; callers must not re-derive once
// an override exists.
func ClassifyRole(name string) types.DeviceRole {
	n := strings.ToLower(name)
	switch {
	case n == "":
		return types.RoleUnknownDev
	case strings.Contains(n, "core"):
		return types.RoleCore
	case strings.Contains(n, "dist"):
		return types.RoleDistribution
	case strings.Contains(n, "access"):
		return types.RoleAccess
	case strings.Contains(n, "router"):
		return types.RoleRouter
	default:
		return types.RoleUnknownDev
	}
}
