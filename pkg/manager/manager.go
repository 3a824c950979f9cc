package manager

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netlens/netlens/pkg/auth"
	"github.com/netlens/netlens/pkg/events"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/topology"
	"github.com/netlens/netlens/pkg/types"
)

// Sentinel errors mapped onto API status codes by the HTTP layer.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrTooLarge   = errors.New("too large")
)

// Manager is the orchestration layer binding storage, the folder and
// document rules, the parser pipeline and the cascades together.
type Manager struct {
	store    storage.Store
	broker   *events.Broker
	topology *topology.Service
}

// Config holds configuration for creating a Manager
type Config struct {
	DataDir string
}

// NewManager creates a Manager with its own BoltDB store and event broker.
func NewManager(cfg *Config) (*Manager, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %v", err)
	}

	broker := events.NewBroker()
	broker.Start()

	return &Manager{
		store:    store,
		broker:   broker,
		topology: topology.NewService(store),
	}, nil
}

// NewManagerWithStore wires a Manager over an existing store. Used by
// tests.
func NewManagerWithStore(store storage.Store) *Manager {
	broker := events.NewBroker()
	broker.Start()
	return &Manager{
		store:    store,
		broker:   broker,
		topology: topology.NewService(store),
	}
}

// Store exposes the underlying store to the API layer.
func (m *Manager) Store() storage.Store { return m.store }

// EventBroker exposes the broker for subscribers.
func (m *Manager) EventBroker() *events.Broker { return m.broker }

// Topology exposes the topology service.
func (m *Manager) Topology() *topology.Service { return m.topology }

// Close stops the broker and closes the store.
func (m *Manager) Close() error {
	m.broker.Stop()
	return m.store.Close()
}

// --- Users ---

// CreateUser registers a user with a bcrypt-hashed password.
func (m *Manager) CreateUser(username, password string, isAdmin bool) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := &types.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.store.CreateUser(user); err != nil {
		return nil, err
	}
	log.WithComponent("manager").Info().Str("username", username).Msg("User created")
	return user, nil
}

// Authenticate verifies the password and returns the user.
func (m *Manager) Authenticate(username, password string) (*types.User, error) {
	user, err := m.store.GetUser(username)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (m *Manager) ChangePassword(username, current, next string) error {
	user, err := m.store.GetUser(username)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password does not match", ErrForbidden)
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	user.PasswordHash = hash
	return m.store.UpdateUser(user)
}

// GetUser returns one user.
func (m *Manager) GetUser(username string) (*types.User, error) {
	return m.store.GetUser(username)
}

// ListUsers returns every user.
func (m *Manager) ListUsers() ([]*types.User, error) {
	return m.store.ListUsers()
}

// DeleteUser removes a user. Their project memberships stay behind as
// dangling rows and are skipped on listing.
func (m *Manager) DeleteUser(username string) error {
	return m.store.DeleteUser(username)
}

// --- Projects ---

// CreateProject creates a project and grants the creator the protected
// admin membership.
func (m *Manager) CreateProject(name, description string, visibility types.Visibility, creator string) (*types.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name must not be empty", ErrValidation)
	}
	if visibility == "" {
		visibility = types.VisibilityPrivate
	}
	if visibility != types.VisibilityPrivate && visibility != types.VisibilityShared {
		return nil, fmt.Errorf("%w: invalid visibility %q", ErrValidation, visibility)
	}

	now := time.Now().UTC()
	project := &types.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Visibility:  visibility,
		CreatedBy:   creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.CreateProject(project); err != nil {
		return nil, err
	}
	if err := m.store.PutMember(&types.Member{
		ProjectID: project.ID,
		Username:  creator,
		Role:      types.RoleAdmin,
		AddedAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("failed to add creator membership: %v", err)
	}

	m.publish(events.EventProjectCreated, "Project created", map[string]string{"project_id": project.ID})
	return project, nil
}

// ProjectPatch carries the mutable project fields. Nil means unchanged.
type ProjectPatch struct {
	Name           *string
	Description    *string
	Visibility     *types.Visibility
	TopoURL        *string
	BackupInterval *string
}

// UpdateProject applies a patch.
func (m *Manager) UpdateProject(projectID string, patch ProjectPatch) (*types.Project, error) {
	project, err := m.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name must not be empty", ErrValidation)
		}
		project.Name = name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Visibility != nil {
		if *patch.Visibility != types.VisibilityPrivate && *patch.Visibility != types.VisibilityShared {
			return nil, fmt.Errorf("%w: invalid visibility %q", ErrValidation, *patch.Visibility)
		}
		project.Visibility = *patch.Visibility
	}
	if patch.TopoURL != nil {
		project.TopoURL = *patch.TopoURL
	}
	if patch.BackupInterval != nil {
		project.BackupInterval = *patch.BackupInterval
	}
	project.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateProject(project); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject returns one project.
func (m *Manager) GetProject(projectID string) (*types.Project, error) {
	return m.store.GetProject(projectID)
}

// ListProjectsFor returns the projects visible to the user: all of them
// for platform admins, otherwise memberships plus shared projects.
func (m *Manager) ListProjectsFor(username string, isAdmin bool) ([]*types.Project, error) {
	projects, err := m.store.ListProjects()
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return projects, nil
	}

	visible := []*types.Project{}
	for _, project := range projects {
		if project.Visibility == types.VisibilityShared {
			visible = append(visible, project)
			continue
		}
		if _, err := m.store.GetMember(project.ID, username); err == nil {
			visible = append(visible, project)
		}
	}
	return visible, nil
}

// DeleteProject cascades to every owned entity.
func (m *Manager) DeleteProject(projectID string) error {
	if _, err := m.store.GetProject(projectID); err != nil {
		return err
	}
	if err := m.store.DeleteProject(projectID); err != nil {
		return err
	}
	m.publish(events.EventProjectDeleted, "Project deleted", map[string]string{"project_id": projectID})
	log.WithProject(projectID).Info().Msg("Project deleted")
	return nil
}

// RoleFor resolves the caller's effective role in a project. Platform
// admins act as project admins everywhere; non-members get viewer access
// to shared projects only.
func (m *Manager) RoleFor(projectID, username string, isAdmin bool) (types.Role, error) {
	if isAdmin {
		return types.RoleAdmin, nil
	}
	member, err := m.store.GetMember(projectID, username)
	if err == nil {
		return member.Role, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	project, err := m.store.GetProject(projectID)
	if err != nil {
		return "", err
	}
	if project.Visibility == types.VisibilityShared {
		return types.RoleViewer, nil
	}
	return "", fmt.Errorf("%w: not a member", ErrForbidden)
}

// --- Members ---

// AddMember grants a role to a user in a project.
func (m *Manager) AddMember(projectID, username string, role types.Role) (*types.Member, error) {
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	if _, err := m.store.GetUser(username); err != nil {
		return nil, err
	}
	if _, err := m.store.GetMember(projectID, username); err == nil {
		return nil, fmt.Errorf("%w: already a member", storage.ErrConflict)
	}

	member := &types.Member{
		ProjectID: projectID,
		Username:  username,
		Role:      role,
		AddedAt:   time.Now().UTC(),
	}
	if err := m.store.PutMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberRole changes a member's role. The admin membership is
// protected.
func (m *Manager) UpdateMemberRole(projectID, username string, role types.Role) (*types.Member, error) {
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	member, err := m.store.GetMember(projectID, username)
	if err != nil {
		return nil, err
	}
	if member.Role == types.RoleAdmin {
		return nil, fmt.Errorf("%w: admin membership cannot be changed", ErrForbidden)
	}
	member.Role = role
	if err := m.store.PutMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember drops a membership. The admin membership is protected.
func (m *Manager) RemoveMember(projectID, username string) error {
	member, err := m.store.GetMember(projectID, username)
	if err != nil {
		return err
	}
	if member.Role == types.RoleAdmin {
		return fmt.Errorf("%w: admin membership cannot be removed", ErrForbidden)
	}
	return m.store.DeleteMember(projectID, username)
}

// ListMembers returns a project's memberships.
func (m *Manager) ListMembers(projectID string) ([]*types.Member, error) {
	return m.store.ListMembers(projectID)
}

// SaveTopologyLayout stores a layout wholesale and announces the save.
func (m *Manager) SaveTopologyLayout(projectID string, positions map[string]types.Position,
	links []types.TopologyLink, labels map[string]string, roles map[string]types.DeviceRole) (*types.TopologyState, error) {

	state, err := m.topology.SaveLayout(projectID, positions, links, labels, roles)
	if err != nil {
		return nil, err
	}
	m.publish(events.EventTopologySaved, "Topology layout saved", map[string]string{"project_id": projectID})
	return state, nil
}

// --- Options ---

// AddOption remembers an upload-form dropdown value. Duplicates are
// silently absorbed by the store.
func (m *Manager) AddOption(projectID string, category types.OptionCategory, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: option value must not be empty", ErrValidation)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: invalid option category %q", ErrValidation, category)
	}
	return m.store.AddOption(&types.ProjectOption{
		ProjectID: projectID,
		Category:  category,
		Value:     value,
	})
}

// ListOptions returns a project's remembered dropdown values.
func (m *Manager) ListOptions(projectID string) ([]*types.ProjectOption, error) {
	return m.store.ListOptions(projectID)
}

func (m *Manager) publish(typ events.EventType, message string, meta map[string]string) {
	if m.broker == nil {
		return
	}
	m.broker.Publish(events.New(typ, message, meta))
}
