package storage

import (
	"errors"

	"github.com/netlens/netlens/pkg/types"
)

// Sentinel errors. Callers match with errors.Is to map onto API status codes.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store defines the interface for platform state storage.
// Implemented by the BoltDB-backed store.
type Store interface {
	// Users
	CreateUser(user *types.User) error
	GetUser(username string) (*types.User, error)
	ListUsers() ([]*types.User, error)
	UpdateUser(user *types.User) error
	DeleteUser(username string) error

	// Projects
	CreateProject(project *types.Project) error
	GetProject(id string) (*types.Project, error)
	ListProjects() ([]*types.Project, error)
	UpdateProject(project *types.Project) error
	// DeleteProject removes the project and cascades to every owned entity,
	// unreferencing blobs held by its document versions.
	DeleteProject(id string) error

	// Members
	PutMember(member *types.Member) error
	GetMember(projectID, username string) (*types.Member, error)
	ListMembers(projectID string) ([]*types.Member, error)
	DeleteMember(projectID, username string) error

	// Folders
	CreateFolder(folder *types.Folder) error
	GetFolder(projectID, folderID string) (*types.Folder, error)
	ListFolders(projectID string) ([]*types.Folder, error)
	UpdateFolder(folder *types.Folder) error

	// Documents and versions
	CreateDocument(doc *types.Document) error
	GetDocument(projectID, docID string) (*types.Document, error)
	// FindDocument locates a family by its identity triple, including
	// soft-deleted families (re-upload resurrects the chain).
	FindDocument(projectID, filename, folderID string) (*types.Document, error)
	ListDocuments(projectID string) ([]*types.Document, error)
	UpdateDocument(doc *types.Document) error
	// AppendVersion atomically appends ver to its family, demoting the prior
	// latest and bumping the blob refcount. ver.VersionNumber and IsLatest
	// are assigned inside the transaction.
	AppendVersion(doc *types.Document, ver *types.DocumentVersion) error
	GetVersion(docID string, versionNumber int) (*types.DocumentVersion, error)
	ListVersions(docID string) ([]*types.DocumentVersion, error)

	// Blobs (content-addressed, deduplicated, refcounted)
	PutBlob(data []byte) (string, error)
	GetBlob(hash string) ([]byte, error)
	RefBlob(hash string) error
	UnrefBlob(hash string) error

	// Device records
	PutDeviceRecord(rec *types.DeviceRecord) error
	GetDeviceRecord(projectID, deviceName string) (*types.DeviceRecord, error)
	ListDeviceRecords(projectID string) ([]*types.DeviceRecord, error)
	DeleteDeviceRecord(projectID, deviceName string) error

	// Analysis artifacts
	PutArtifact(artifact *types.AnalysisArtifact) error
	GetArtifact(projectID string, kind types.AnalysisKind, deviceName string) (*types.AnalysisArtifact, error)
	ListArtifacts(projectID string) ([]*types.AnalysisArtifact, error)
	DeleteDeviceArtifacts(projectID, deviceName string) error

	// Topology
	PutTopology(state *types.TopologyState) error
	GetTopology(projectID string) (*types.TopologyState, error)

	// In-flight markers (single slot per project)
	SetMarker(marker *types.InFlightMarker) error
	GetMarker(projectID string) (*types.InFlightMarker, error)
	ListMarkers() ([]*types.InFlightMarker, error)
	ClearMarker(projectID string) error

	// Project options
	AddOption(opt *types.ProjectOption) error
	ListOptions(projectID string) ([]*types.ProjectOption, error)

	// Device images
	PutDeviceImage(img *types.DeviceImage) error
	GetDeviceImage(projectID, deviceName string) (*types.DeviceImage, error)
	DeleteDeviceImage(projectID, deviceName string) error

	// Utility
	Close() error
}
