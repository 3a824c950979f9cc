package topology

import (
	"math"
	"sort"

	"github.com/netlens/netlens/pkg/types"
)

// Relaxation parameters for synthesized layouts. Nodes closer than
// minNodeDistance are pushed apart, up to maxRelaxPasses iterations.
// Separation overshoots slightly so chains of overlapping nodes settle
// above the minimum within the pass budget.
const (
	minNodeDistance = 14.0
	maxRelaxPasses  = 8
	relaxOvershoot  = 1.1
)

// roleTier maps a role onto a vertical band of the 0-100 plane so the
// first render reads top-down as core, distribution, access.
func roleTier(role types.DeviceRole) float64 {
	switch role {
	case types.RoleCore:
		return 15
	case types.RoleRouter:
		return 15
	case types.RoleDistribution:
		return 50
	case types.RoleAccess:
		return 85
	default:
		return 50
	}
}

// placeMissing synthesizes positions for nodes the state does not place
// yet, preferring coordinates proposed by the topology draft, then relaxes
// every synthesized position away from its neighbors. Stored positions are
// never moved. Returns true when the state changed.
func (s *Service) placeMissing(state *types.TopologyState, nodes []types.TopologyNode, proposed map[string]types.Position) bool {
	var missing []types.TopologyNode
	for _, node := range nodes {
		if _, ok := state.Positions[node.ID]; !ok {
			missing = append(missing, node)
		}
	}
	if len(missing) == 0 {
		return false
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].ID < missing[j].ID })

	// Count tier occupancy for the nodes with no proposed coordinate.
	perTier := map[float64]int{}
	for _, node := range missing {
		if _, ok := proposed[node.ID]; ok {
			continue
		}
		perTier[roleTier(node.Role)]++
	}
	placed := map[float64]int{}
	for _, node := range missing {
		if pos, ok := proposed[node.ID]; ok {
			state.Positions[node.ID] = pos
			continue
		}
		tier := roleTier(node.Role)
		n := perTier[tier]
		i := placed[tier]
		placed[tier]++
		state.Positions[node.ID] = types.Position{
			X: 100 * float64(i+1) / float64(n+1),
			Y: tier,
		}
	}

	relax(state.Positions, pinnedSet(state, missing))
	return true
}

// pinnedSet marks positions that predate this placement; relax must not
// move them.
func pinnedSet(state *types.TopologyState, missing []types.TopologyNode) map[string]bool {
	movable := map[string]bool{}
	for _, node := range missing {
		movable[node.ID] = true
	}
	pinned := map[string]bool{}
	for id := range state.Positions {
		if !movable[id] {
			pinned[id] = true
		}
	}
	return pinned
}

// relax iteratively pushes overlapping nodes apart until every pair is at
// least minNodeDistance apart or the pass budget runs out. Iteration order
// is sorted for determinism.
func relax(positions map[string]types.Position, pinned map[string]bool) {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for pass := 0; pass < maxRelaxPasses; pass++ {
		moved := false
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := positions[ids[i]], positions[ids[j]]
				dx, dy := b.X-a.X, b.Y-a.Y
				dist := math.Hypot(dx, dy)
				if dist >= minNodeDistance {
					continue
				}
				// Coincident nodes separate along x, ordered by id.
				if dist == 0 {
					dx, dy, dist = 1, 0, 1
				}
				push := (minNodeDistance*relaxOvershoot - dist) / 2
				ux, uy := dx/dist, dy/dist
				aPinned, bPinned := pinned[ids[i]], pinned[ids[j]]
				switch {
				case aPinned && bPinned:
					continue
				case aPinned:
					b.X += 2 * push * ux
					b.Y += 2 * push * uy
					positions[ids[j]] = b
				case bPinned:
					a.X -= 2 * push * ux
					a.Y -= 2 * push * uy
					positions[ids[i]] = a
				default:
					a.X -= push * ux
					a.Y -= push * uy
					b.X += push * ux
					b.Y += push * uy
					positions[ids[i]] = a
					positions[ids[j]] = b
				}
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}
