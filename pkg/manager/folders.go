package manager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// ListFolders returns the live folder tree with the reserved Config and
// Other entries synthesized at the front.
func (m *Manager) ListFolders(projectID string) ([]*types.Folder, error) {
	stored, err := m.store.ListFolders(projectID)
	if err != nil {
		return nil, err
	}

	folders := []*types.Folder{
		{ID: types.FolderConfig, ProjectID: projectID, Name: types.FolderConfig},
		{ID: types.FolderOther, ProjectID: projectID, Name: types.FolderOther},
	}
	for _, folder := range stored {
		if folder.Deleted {
			continue
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// CreateFolder adds a folder under parentID (nil means root). Reserved
// names collide; Config cannot parent new folders.
func (m *Manager) CreateFolder(projectID, name string, parentID *string) (*types.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name must not be empty", ErrValidation)
	}
	if types.IsReservedFolder(name) {
		return nil, fmt.Errorf("%w: folder name %q is reserved", storage.ErrConflict, name)
	}
	if parentID != nil {
		if *parentID == types.FolderConfig {
			return nil, fmt.Errorf("%w: folders cannot be created inside %s", ErrValidation, types.FolderConfig)
		}
		if *parentID != types.FolderOther {
			parent, err := m.store.GetFolder(projectID, *parentID)
			if err != nil {
				return nil, err
			}
			if parent.Deleted {
				return nil, fmt.Errorf("%w: parent folder is deleted", ErrValidation)
			}
		}
	}

	folder := &types.Folder{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// RenameFolder updates name and/or parent. Reserved folders are immutable
// and reparenting must not introduce a cycle.
func (m *Manager) RenameFolder(projectID, folderID string, name *string, parentID *string, reparent bool) (*types.Folder, error) {
	if types.IsReservedFolder(folderID) {
		return nil, fmt.Errorf("%w: reserved folder cannot be renamed", ErrForbidden)
	}
	folder, err := m.store.GetFolder(projectID, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Deleted {
		return nil, fmt.Errorf("folder %s: %w", folderID, storage.ErrNotFound)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: folder name must not be empty", ErrValidation)
		}
		if types.IsReservedFolder(trimmed) {
			return nil, fmt.Errorf("%w: folder name %q is reserved", storage.ErrConflict, trimmed)
		}
		folder.Name = trimmed
	}
	if reparent {
		if parentID != nil {
			if *parentID == types.FolderConfig || *parentID == types.FolderOther {
				return nil, fmt.Errorf("%w: cannot move folders under %s", ErrValidation, *parentID)
			}
			if err := m.checkFolderCycle(projectID, folderID, *parentID); err != nil {
				return nil, err
			}
		}
		folder.ParentID = parentID
	}

	if err := m.store.UpdateFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// checkFolderCycle walks up from newParent and rejects if it reaches the
// folder being moved.
func (m *Manager) checkFolderCycle(projectID, folderID, newParent string) error {
	current := newParent
	for current != "" {
		if current == folderID {
			return fmt.Errorf("%w: folder move would create a cycle", storage.ErrConflict)
		}
		parent, err := m.store.GetFolder(projectID, current)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("parent folder %s: %w", current, storage.ErrNotFound)
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return nil
}

// DeleteFolder soft-deletes a folder and every descendant. Their documents
// surface under Other afterwards. Reserved folders cannot be deleted.
func (m *Manager) DeleteFolder(projectID, folderID string) error {
	if types.IsReservedFolder(folderID) {
		return fmt.Errorf("%w: reserved folder cannot be deleted", ErrForbidden)
	}
	folder, err := m.store.GetFolder(projectID, folderID)
	if err != nil {
		return err
	}
	if folder.Deleted {
		return fmt.Errorf("folder %s: %w", folderID, storage.ErrNotFound)
	}

	all, err := m.store.ListFolders(projectID)
	if err != nil {
		return err
	}
	doomed := map[string]bool{folderID: true}
	for changed := true; changed; {
		changed = false
		for _, f := range all {
			if f.Deleted || doomed[f.ID] || f.ParentID == nil {
				continue
			}
			if doomed[*f.ParentID] {
				doomed[f.ID] = true
				changed = true
			}
		}
	}
	for _, f := range all {
		if !doomed[f.ID] || f.Deleted {
			continue
		}
		f.Deleted = true
		if err := m.store.UpdateFolder(f); err != nil {
			return err
		}
	}
	return nil
}

// folderResolvable reports whether the folder id points at a live
// destination for documents.
func (m *Manager) folderResolvable(projectID, folderID string) bool {
	if types.IsReservedFolder(folderID) {
		return true
	}
	folder, err := m.store.GetFolder(projectID, folderID)
	return err == nil && !folder.Deleted
}
