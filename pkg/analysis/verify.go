package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/netlens/netlens/pkg/types"
)

// Diff weights. Edits to existing fields count full; reviewer additions
// weigh less since they extend rather than correct the draft.
const (
	weightModified = 1.0
	weightAdded    = 0.5
	weightRemoved  = 1.0
)

// DiffJSON compares the reviewer's verified document against the AI draft
// field by field and summarizes the differences. Identical documents yield
// zero changes and a score of 100.
func DiffJSON(draft, verified json.RawMessage) (*types.AccuracyMetrics, error) {
	var a, b interface{}
	if len(draft) > 0 {
		if err := json.Unmarshal(draft, &a); err != nil {
			return nil, fmt.Errorf("invalid draft json: %v", err)
		}
	}
	if len(verified) > 0 {
		if err := json.Unmarshal(verified, &b); err != nil {
			return nil, fmt.Errorf("invalid verified json: %v", err)
		}
	}

	var changes []types.KeyChange
	walkDiff("", a, b, &changes)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	metrics := &types.AccuracyMetrics{
		TotalChanges:  len(changes),
		ChangesByType: map[string][]types.KeyChange{},
		KeyChanges:    changes,
	}

	var weighted float64
	for _, ch := range changes {
		field := leafName(ch.Path)
		metrics.ChangesByType[field] = append(metrics.ChangesByType[field], ch)
		switch ch.ChangeType {
		case "added":
			weighted += weightAdded
		case "removed":
			weighted += weightRemoved
		default:
			weighted += weightModified
		}
	}

	total := leafCount(a)
	if total == 0 {
		total = 1
	}
	score := 100 - 100*weighted/float64(total)
	if score < 0 {
		score = 0
	}
	metrics.AccuracyScore = score
	return metrics, nil
}

// walkDiff descends both trees in lockstep, recording leaf-level changes.
func walkDiff(path string, a, b interface{}, changes *[]types.KeyChange) {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			record(changes, path, "modified", a, b)
			return
		}
		keys := map[string]struct{}{}
		for k := range av {
			keys[k] = struct{}{}
		}
		for k := range bv {
			keys[k] = struct{}{}
		}
		for k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			ac, inA := av[k]
			bc, inB := bv[k]
			switch {
			case !inA:
				record(changes, childPath, "added", nil, bc)
			case !inB:
				record(changes, childPath, "removed", ac, nil)
			default:
				walkDiff(childPath, ac, bc, changes)
			}
		}
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok {
			record(changes, path, "modified", a, b)
			return
		}
		max := len(av)
		if len(bv) > max {
			max = len(bv)
		}
		for i := 0; i < max; i++ {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case i >= len(av):
				record(changes, childPath, "added", nil, bv[i])
			case i >= len(bv):
				record(changes, childPath, "removed", av[i], nil)
			default:
				walkDiff(childPath, av[i], bv[i], changes)
			}
		}
	default:
		if !scalarEqual(a, b) {
			record(changes, path, "modified", a, b)
		}
	}
}

func record(changes *[]types.KeyChange, path, changeType string, before, after interface{}) {
	*changes = append(*changes, types.KeyChange{
		Path:       path,
		ChangeType: changeType,
		Before:     renderValue(before),
		After:      renderValue(after),
	})
}

func scalarEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	return renderValue(a) == renderValue(b) && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// renderValue flattens any JSON value to a short display string.
func renderValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case float64, bool:
		return fmt.Sprintf("%v", tv)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// leafName extracts the field name a change is bucketed under, dropping
// array indexes. "items[1].recommendation" buckets as "recommendation".
func leafName(path string) string {
	name := path
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// leafCount counts scalar fields in a JSON tree, the denominator of the
// accuracy ratio.
func leafCount(v interface{}) int {
	switch tv := v.(type) {
	case map[string]interface{}:
		n := 0
		for _, c := range tv {
			n += leafCount(c)
		}
		return n
	case []interface{}:
		n := 0
		for _, c := range tv {
			n += leafCount(c)
		}
		return n
	case nil:
		return 0
	default:
		return 1
	}
}
