package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// ErrInvalidRole rejects layout saves carrying an unknown node role.
var ErrInvalidRole = errors.New("invalid node role")

// View is the merged topology returned to clients: every known node, the
// edge set, and the persisted layout.
type View struct {
	Nodes  []types.TopologyNode `json:"nodes"`
	Edges  []types.TopologyLink `json:"edges"`
	Layout *types.TopologyState `json:"layout"`
}

// Service merges parser-derived devices, AI topology drafts and stored
// layout state into one view.
type Service struct {
	store storage.Store
}

// NewService creates a topology service backed by the given store.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// artifactTopology is the shape expected inside a project_topology draft.
// Unknown fields are ignored; a draft that does not parse contributes
// nothing.
type artifactTopology struct {
	Nodes []struct {
		ID    string           `json:"id"`
		Label string           `json:"label"`
		Role  types.DeviceRole `json:"role"`
		X     *float64         `json:"x"`
		Y     *float64         `json:"y"`
	} `json:"nodes"`
	Links []types.TopologyLink `json:"links"`
}

// proposedPositions extracts whatever coordinates the draft suggested.
func (t *artifactTopology) proposedPositions() map[string]types.Position {
	out := map[string]types.Position{}
	if t == nil {
		return out
	}
	for _, n := range t.Nodes {
		if n.X != nil && n.Y != nil {
			out[n.ID] = types.Position{X: *n.X, Y: *n.Y}
		}
	}
	return out
}

// Get returns the full merged view. Nodes are the union of parsed device
// records and ids introduced by the latest topology artifact; stored label
// and role overrides always win. Nodes without a stored position get a
// synthesized one, relaxed apart and persisted so the first render is
// usable.
func (s *Service) Get(projectID string) (*View, error) {
	records, err := s.store.ListDeviceRecords(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device records: %w", err)
	}

	state, err := s.loadState(projectID)
	if err != nil {
		return nil, err
	}

	var draft *artifactTopology
	artifact, err := s.store.GetArtifact(projectID, types.KindProjectTopology, "")
	if err == nil && len(artifact.AIDraftJSON) > 0 {
		var t artifactTopology
		if jsonErr := json.Unmarshal(artifact.AIDraftJSON, &t); jsonErr == nil {
			draft = &t
		}
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load topology artifact: %v", err)
	}

	nodes := s.mergeNodes(records, draft, state)
	edges := s.mergeEdges(nodes, draft, state)

	if s.placeMissing(state, nodes, draft.proposedPositions()) {
		state.UpdatedAt = time.Now().UTC()
		if err := s.store.PutTopology(state); err != nil {
			return nil, fmt.Errorf("failed to persist synthesized layout: %v", err)
		}
	}

	return &View{Nodes: nodes, Edges: edges, Layout: state}, nil
}

// NetworkTopology is the fast variant: parsed devices and stored state
// only, no artifact merge and no layout synthesis.
func (s *Service) NetworkTopology(projectID string) (*View, error) {
	records, err := s.store.ListDeviceRecords(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device records: %w", err)
	}
	state, err := s.loadState(projectID)
	if err != nil {
		return nil, err
	}
	nodes := s.mergeNodes(records, nil, state)
	return &View{Nodes: nodes, Edges: s.mergeEdges(nodes, nil, state), Layout: state}, nil
}

// SaveLayout replaces the whole layout, last writer wins. Positions are
// stored exactly as supplied.
func (s *Service) SaveLayout(projectID string, positions map[string]types.Position,
	links []types.TopologyLink, labels map[string]string, roles map[string]types.DeviceRole) (*types.TopologyState, error) {

	for role := range rolesIndex(roles) {
		if !validRole(role) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
	}

	state := &types.TopologyState{
		ProjectID:  projectID,
		Positions:  positions,
		Links:      links,
		NodeLabels: labels,
		NodeRoles:  roles,
		UpdatedAt:  time.Now().UTC(),
	}
	if state.Positions == nil {
		state.Positions = map[string]types.Position{}
	}
	if state.Links == nil {
		state.Links = []types.TopologyLink{}
	}
	if state.NodeLabels == nil {
		state.NodeLabels = map[string]string{}
	}
	if state.NodeRoles == nil {
		state.NodeRoles = map[string]types.DeviceRole{}
	}

	if err := s.store.PutTopology(state); err != nil {
		return nil, fmt.Errorf("failed to store topology layout: %v", err)
	}
	return state, nil
}

// RemoveNode drops a device from the stored layout. Called from the device
// deletion cascade.
func (s *Service) RemoveNode(projectID, deviceName string) error {
	state, err := s.loadState(projectID)
	if err != nil {
		return err
	}
	delete(state.Positions, deviceName)
	delete(state.NodeLabels, deviceName)
	delete(state.NodeRoles, deviceName)
	kept := state.Links[:0]
	for _, link := range state.Links {
		if link.A != deviceName && link.B != deviceName {
			kept = append(kept, link)
		}
	}
	state.Links = kept
	state.UpdatedAt = time.Now().UTC()
	if err := s.store.PutTopology(state); err != nil {
		return fmt.Errorf("failed to store topology layout: %v", err)
	}
	return nil
}

func (s *Service) loadState(projectID string) (*types.TopologyState, error) {
	state, err := s.store.GetTopology(projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return &types.TopologyState{
			ProjectID:  projectID,
			Positions:  map[string]types.Position{},
			Links:      []types.TopologyLink{},
			NodeLabels: map[string]string{},
			NodeRoles:  map[string]types.DeviceRole{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load topology state: %v", err)
	}
	if state.Positions == nil {
		state.Positions = map[string]types.Position{}
	}
	if state.NodeLabels == nil {
		state.NodeLabels = map[string]string{}
	}
	if state.NodeRoles == nil {
		state.NodeRoles = map[string]types.DeviceRole{}
	}
	return state, nil
}

// mergeNodes unions parsed devices with draft-introduced ids. Overrides
// from the stored state win over both the classifier and the draft.
func (s *Service) mergeNodes(records []*types.DeviceRecord, draft *artifactTopology, state *types.TopologyState) []types.TopologyNode {
	byID := map[string]*types.TopologyNode{}
	order := []string{}

	add := func(id string, role types.DeviceRole, label string, parsed bool) {
		if id == "" {
			return
		}
		if existing, ok := byID[id]; ok {
			existing.Parsed = existing.Parsed || parsed
			return
		}
		if label == "" {
			label = id
		}
		byID[id] = &types.TopologyNode{ID: id, Label: label, Role: role, Parsed: parsed}
		order = append(order, id)
	}

	for _, rec := range records {
		role := rec.DeviceOverview.Role
		if role == "" {
			role = parser.ClassifyRole(rec.DeviceName)
		}
		add(rec.DeviceName, role, "", true)
	}
	if draft != nil {
		for _, n := range draft.Nodes {
			role := n.Role
			if !validRole(role) {
				role = parser.ClassifyRole(n.ID)
			}
			add(n.ID, role, n.Label, false)
		}
	}

	nodes := make([]types.TopologyNode, 0, len(order))
	for _, id := range order {
		node := *byID[id]
		if label, ok := state.NodeLabels[id]; ok && label != "" {
			node.Label = label
		}
		if role, ok := state.NodeRoles[id]; ok && validRole(role) {
			node.Role = role
		}
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// mergeEdges prefers stored links, then draft links, then the role-based
// fallback wiring core nodes to everything downstream.
func (s *Service) mergeEdges(nodes []types.TopologyNode, draft *artifactTopology, state *types.TopologyState) []types.TopologyLink {
	if len(state.Links) > 0 {
		return state.Links
	}
	if draft != nil && len(draft.Links) > 0 {
		return draft.Links
	}
	return fallbackEdges(nodes)
}

// fallbackEdges is the deterministic no-artifact wiring: every core node
// links to every distribution and access node.
func fallbackEdges(nodes []types.TopologyNode) []types.TopologyLink {
	edges := []types.TopologyLink{}
	for _, a := range nodes {
		if a.Role != types.RoleCore {
			continue
		}
		for _, b := range nodes {
			if b.Role == types.RoleDistribution || b.Role == types.RoleAccess {
				edges = append(edges, types.TopologyLink{
					A:        a.ID,
					B:        b.ID,
					Type:     "inferred",
					Evidence: "role",
				})
			}
		}
	}
	return edges
}

func validRole(r types.DeviceRole) bool {
	switch r {
	case types.RoleCore, types.RoleDistribution, types.RoleAccess, types.RoleRouter, types.RoleUnknownDev:
		return true
	}
	return false
}

func rolesIndex(roles map[string]types.DeviceRole) map[types.DeviceRole]struct{} {
	idx := map[types.DeviceRole]struct{}{}
	for _, r := range roles {
		idx[r] = struct{}{}
	}
	return idx
}
