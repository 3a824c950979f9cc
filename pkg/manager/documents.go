package manager

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netlens/netlens/pkg/events"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/metrics"
	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// configExtensions are the text-like suffixes accepted into Config.
var configExtensions = map[string]bool{
	".txt":  true,
	".cfg":  true,
	".conf": true,
	".log":  true,
}

// configUploadAllowed enforces the text-like rule for the Config folder.
func configUploadAllowed(filename, contentType string) bool {
	if configExtensions[strings.ToLower(filepath.Ext(filename))] {
		return true
	}
	return strings.HasPrefix(contentType, "text/")
}

// Upload runs the ingest pipeline: destination check, blob write, version
// append, and for Config uploads the parse into the device record.
func (m *Manager) Upload(projectID, folderID, filename, contentType string, data []byte,
	uploader string, meta types.VersionMetadata) (*types.Document, *types.DocumentVersion, error) {

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, nil, fmt.Errorf("%w: filename must not be empty", ErrValidation)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty upload", ErrValidation)
	}
	if _, err := m.store.GetProject(projectID); err != nil {
		return nil, nil, err
	}
	if folderID == "" {
		folderID = types.FolderOther
	}
	if !m.folderResolvable(projectID, folderID) {
		return nil, nil, fmt.Errorf("folder %s: %w", folderID, storage.ErrNotFound)
	}
	if folderID == types.FolderConfig && !configUploadAllowed(filename, contentType) {
		return nil, nil, fmt.Errorf("%w: Config accepts text configuration files only", ErrValidation)
	}

	doc, err := m.store.FindDocument(projectID, filename, folderID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		doc = &types.Document{
			ID:          uuid.New().String(),
			ProjectID:   projectID,
			Filename:    filename,
			FolderID:    folderID,
			ContentType: contentType,
			CreatedBy:   uploader,
			CreatedAt:   time.Now().UTC(),
		}
		if folderID == types.FolderConfig {
			doc.DeviceName = parser.DeviceNameFromFilename(filename)
		}
		if err := m.store.CreateDocument(doc); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	case doc.Deleted:
		// Re-upload resurrects a soft-deleted family.
		doc.Deleted = false
		if err := m.store.UpdateDocument(doc); err != nil {
			return nil, nil, err
		}
	}

	hash, err := m.store.PutBlob(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store blob: %v", err)
	}

	ver := &types.DocumentVersion{
		DocumentID: doc.ID,
		BlobHash:   hash,
		Size:       int64(len(data)),
		UploadedBy: uploader,
		CreatedAt:  time.Now().UTC(),
		Metadata:   meta,
	}
	if err := m.store.AppendVersion(doc, ver); err != nil {
		return nil, nil, err
	}

	metrics.UploadsTotal.WithLabelValues(folderLabel(folderID)).Inc()
	metrics.UploadBytes.Add(float64(len(data)))
	m.publish(events.EventDocumentUploaded, "Document uploaded", map[string]string{
		"project_id":  projectID,
		"document_id": doc.ID,
		"filename":    filename,
	})

	if doc.FolderID == types.FolderConfig {
		m.ingestConfig(doc, ver, data)
	}

	return doc, ver, nil
}

// ingestConfig parses a Config upload and overwrites the device record.
// Parse trouble never fails the upload; the summary row carries the
// warning instead.
func (m *Manager) ingestConfig(doc *types.Document, ver *types.DocumentVersion, data []byte) {
	timer := metrics.NewTimer()
	rec := parser.Parse(string(data))
	rec.ProjectID = doc.ProjectID
	rec.DeviceName = doc.DeviceName
	rec.SourceVersion = ver.VersionNumber
	metrics.ParseDuration.WithLabelValues(string(rec.Vendor)).Observe(timer.Duration().Seconds())

	if err := m.store.PutDeviceRecord(rec); err != nil {
		log.WithDevice(doc.ProjectID, doc.DeviceName).Error().Err(err).Msg("Failed to store device record")
		return
	}

	log.WithDevice(doc.ProjectID, doc.DeviceName).Info().
		Str("vendor", string(rec.Vendor)).
		Int("interfaces", len(rec.Interfaces)).
		Msg("Device configuration parsed")
	m.publish(events.EventDeviceParsed, "Device parsed", map[string]string{
		"project_id": doc.ProjectID,
		"device":     doc.DeviceName,
	})
}

func folderLabel(folderID string) string {
	if types.IsReservedFolder(folderID) {
		return folderID
	}
	return "custom"
}

// ListDocuments returns a project's live documents, optionally filtered
// by folder. Documents whose folder no longer resolves surface under
// Other.
func (m *Manager) ListDocuments(projectID, folderID string) ([]*types.Document, error) {
	docs, err := m.store.ListDocuments(projectID)
	if err != nil {
		return nil, err
	}

	out := []*types.Document{}
	for _, doc := range docs {
		if doc.Deleted {
			continue
		}
		effective := doc.FolderID
		if !m.folderResolvable(projectID, effective) {
			effective = types.FolderOther
		}
		if folderID != "" && effective != folderID {
			continue
		}
		if effective != doc.FolderID {
			shadow := *doc
			shadow.FolderID = effective
			out = append(out, &shadow)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// GetDocument returns one live document.
func (m *Manager) GetDocument(projectID, docID string) (*types.Document, error) {
	doc, err := m.store.GetDocument(projectID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, fmt.Errorf("document %s: %w", docID, storage.ErrNotFound)
	}
	return doc, nil
}

// DeleteDocument soft-deletes a family. Versions and blobs stay; the
// parsed device record, if any, is untouched.
func (m *Manager) DeleteDocument(projectID, docID string) error {
	doc, err := m.GetDocument(projectID, docID)
	if err != nil {
		return err
	}
	doc.Deleted = true
	if err := m.store.UpdateDocument(doc); err != nil {
		return err
	}
	m.publish(events.EventDocumentDeleted, "Document deleted", map[string]string{
		"project_id":  projectID,
		"document_id": docID,
	})
	return nil
}

// MoveDocument relocates a family to another folder. Config is sealed in
// both directions and Other cannot receive moves.
func (m *Manager) MoveDocument(projectID, docID, targetFolderID string) (*types.Document, error) {
	doc, err := m.GetDocument(projectID, docID)
	if err != nil {
		return nil, err
	}
	if doc.FolderID == types.FolderConfig {
		return nil, fmt.Errorf("%w: documents cannot be moved out of %s", ErrForbidden, types.FolderConfig)
	}
	if targetFolderID == types.FolderConfig {
		return nil, fmt.Errorf("%w: documents cannot be moved into %s", ErrForbidden, types.FolderConfig)
	}
	if targetFolderID == types.FolderOther {
		return nil, fmt.Errorf("%w: documents cannot be moved into %s", ErrForbidden, types.FolderOther)
	}
	if !m.folderResolvable(projectID, targetFolderID) {
		return nil, fmt.Errorf("folder %s: %w", targetFolderID, storage.ErrNotFound)
	}
	if existing, err := m.store.FindDocument(projectID, doc.Filename, targetFolderID); err == nil && !existing.Deleted {
		return nil, fmt.Errorf("%w: %s already exists in the target folder", storage.ErrConflict, doc.Filename)
	}

	doc.FolderID = targetFolderID
	if err := m.store.UpdateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// RenameDocument changes the filename within the same folder. Config
// renames re-derive the device name for future uploads.
func (m *Manager) RenameDocument(projectID, docID, filename string) (*types.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename must not be empty", ErrValidation)
	}
	doc, err := m.GetDocument(projectID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Filename == filename {
		return doc, nil
	}
	if existing, err := m.store.FindDocument(projectID, filename, doc.FolderID); err == nil && !existing.Deleted {
		return nil, fmt.Errorf("%w: %s already exists in the folder", storage.ErrConflict, filename)
	}

	doc.Filename = filename
	if doc.FolderID == types.FolderConfig {
		doc.DeviceName = parser.DeviceNameFromFilename(filename)
	}
	if err := m.store.UpdateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListVersions returns a family's chain in ascending order.
func (m *Manager) ListVersions(projectID, docID string) ([]*types.DocumentVersion, error) {
	if _, err := m.GetDocument(projectID, docID); err != nil {
		return nil, err
	}
	return m.store.ListVersions(docID)
}

// VersionContent returns the raw bytes of one version; versionNumber 0
// means latest. Downloads always return the original bytes.
func (m *Manager) VersionContent(projectID, docID string, versionNumber int) ([]byte, *types.DocumentVersion, error) {
	doc, err := m.GetDocument(projectID, docID)
	if err != nil {
		return nil, nil, err
	}
	if versionNumber == 0 {
		versionNumber = doc.LatestVersion
	}
	ver, err := m.store.GetVersion(docID, versionNumber)
	if err != nil {
		return nil, nil, err
	}
	data, err := m.store.GetBlob(ver.BlobHash)
	if err != nil {
		return nil, nil, err
	}
	return data, ver, nil
}
