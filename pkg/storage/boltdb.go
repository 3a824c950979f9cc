package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/netlens/netlens/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketUsers     = []byte("users")
	bucketProjects  = []byte("projects")
	bucketMembers   = []byte("members")
	bucketFolders   = []byte("folders")
	bucketDocuments = []byte("documents")
	bucketVersions  = []byte("document_versions")
	bucketBlobs     = []byte("blobs")
	bucketBlobRefs  = []byte("blob_refs")
	bucketDevices   = []byte("device_records")
	bucketArtifacts = []byte("analysis_artifacts")
	bucketTopology  = []byte("topology_states")
	bucketMarkers   = []byte("in_flight_markers")
	bucketOptions   = []byte("project_options")
	bucketImages    = []byte("device_images")
)

// BoltStore implements Store using BoltDB. All composite keys join their
// parts with "/"; uuids, usernames, and normalized device names never
// contain the separator.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "netlens.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketUsers,
			bucketProjects,
			bucketMembers,
			bucketFolders,
			bucketDocuments,
			bucketVersions,
			bucketBlobs,
			bucketBlobRefs,
			bucketDevices,
			bucketArtifacts,
			bucketTopology,
			bucketMarkers,
			bucketOptions,
			bucketImages,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func key(parts ...string) []byte {
	return []byte(strings.Join(parts, "/"))
}

func versionKey(docID string, n int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", docID, n))
}

func putJSON(b *bolt.Bucket, k []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(k, data)
}

// forEachPrefix iterates every value under prefix+"/" in the bucket.
func forEachPrefix(b *bolt.Bucket, prefix string, fn func(k, v []byte) error) error {
	p := []byte(prefix + "/")
	c := b.Cursor()
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under prefix+"/" in the bucket.
func deletePrefix(b *bolt.Bucket, prefix string) error {
	p := []byte(prefix + "/")
	c := b.Cursor()
	for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// User operations

func (s *BoltStore) CreateUser(user *types.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b.Get([]byte(user.Username)) != nil {
			return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
		}
		return putJSON(b, []byte(user.Username), user)
	})
}

func (s *BoltStore) GetUser(username string) (*types.User, error) {
	var user types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketUsers).Get([]byte(username))
		if data == nil {
			return fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *BoltStore) ListUsers() ([]*types.User, error) {
	var users []*types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, v []byte) error {
			var user types.User
			if err := json.Unmarshal(v, &user); err != nil {
				return err
			}
			users = append(users, &user)
			return nil
		})
	})
	return users, err
}

func (s *BoltStore) UpdateUser(user *types.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketUsers), []byte(user.Username), user)
	})
}

func (s *BoltStore) DeleteUser(username string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).Delete([]byte(username))
	})
}

// Project operations

func (s *BoltStore) CreateProject(project *types.Project) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketProjects), []byte(project.ID), project)
	})
}

func (s *BoltStore) GetProject(id string) (*types.Project, error) {
	var project types.Project
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketProjects).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &project)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *BoltStore) ListProjects() ([]*types.Project, error) {
	var projects []*types.Project
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(k, v []byte) error {
			var project types.Project
			if err := json.Unmarshal(v, &project); err != nil {
				return err
			}
			projects = append(projects, &project)
			return nil
		})
	})
	return projects, err
}

func (s *BoltStore) UpdateProject(project *types.Project) error {
	return s.CreateProject(project) // Same as create (upsert)
}

// DeleteProject cascades to every entity the project owns in a single
// transaction. Blob refcounts are decremented for every version removed.
func (s *BoltStore) DeleteProject(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		projects := tx.Bucket(bucketProjects)
		if projects.Get([]byte(id)) == nil {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}

		// Versions and blobs hang off documents, handle them first.
		docs := tx.Bucket(bucketDocuments)
		versions := tx.Bucket(bucketVersions)
		err := forEachPrefix(docs, id, func(k, v []byte) error {
			var doc types.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if err := forEachPrefix(versions, doc.ID, func(vk, vv []byte) error {
				var ver types.DocumentVersion
				if err := json.Unmarshal(vv, &ver); err != nil {
					return err
				}
				return unrefBlobTx(tx, ver.BlobHash)
			}); err != nil {
				return err
			}
			return deletePrefix(versions, doc.ID)
		})
		if err != nil {
			return err
		}

		for _, b := range []*bolt.Bucket{
			docs,
			tx.Bucket(bucketMembers),
			tx.Bucket(bucketFolders),
			tx.Bucket(bucketDevices),
			tx.Bucket(bucketArtifacts),
			tx.Bucket(bucketOptions),
			tx.Bucket(bucketImages),
		} {
			if err := deletePrefix(b, id); err != nil {
				return err
			}
		}
		if err := tx.Bucket(bucketTopology).Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketMarkers).Delete([]byte(id)); err != nil {
			return err
		}
		return projects.Delete([]byte(id))
	})
}

// Member operations

func (s *BoltStore) PutMember(member *types.Member) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketMembers), key(member.ProjectID, member.Username), member)
	})
}

func (s *BoltStore) GetMember(projectID, username string) (*types.Member, error) {
	var member types.Member
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMembers).Get(key(projectID, username))
		if data == nil {
			return fmt.Errorf("member %s: %w", username, ErrNotFound)
		}
		return json.Unmarshal(data, &member)
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *BoltStore) ListMembers(projectID string) ([]*types.Member, error) {
	var members []*types.Member
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketMembers), projectID, func(k, v []byte) error {
			var member types.Member
			if err := json.Unmarshal(v, &member); err != nil {
				return err
			}
			members = append(members, &member)
			return nil
		})
	})
	return members, err
}

func (s *BoltStore) DeleteMember(projectID, username string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMembers).Delete(key(projectID, username))
	})
}

// Folder operations

func (s *BoltStore) CreateFolder(folder *types.Folder) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketFolders), key(folder.ProjectID, folder.ID), folder)
	})
}

func (s *BoltStore) GetFolder(projectID, folderID string) (*types.Folder, error) {
	var folder types.Folder
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFolders).Get(key(projectID, folderID))
		if data == nil {
			return fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
		}
		return json.Unmarshal(data, &folder)
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (s *BoltStore) ListFolders(projectID string) ([]*types.Folder, error) {
	var folders []*types.Folder
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketFolders), projectID, func(k, v []byte) error {
			var folder types.Folder
			if err := json.Unmarshal(v, &folder); err != nil {
				return err
			}
			folders = append(folders, &folder)
			return nil
		})
	})
	return folders, err
}

func (s *BoltStore) UpdateFolder(folder *types.Folder) error {
	return s.CreateFolder(folder)
}

// Document operations

func (s *BoltStore) CreateDocument(doc *types.Document) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketDocuments), key(doc.ProjectID, doc.ID), doc)
	})
}

func (s *BoltStore) GetDocument(projectID, docID string) (*types.Document, error) {
	var doc types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get(key(projectID, docID))
		if data == nil {
			return fmt.Errorf("document %s: %w", docID, ErrNotFound)
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *BoltStore) FindDocument(projectID, filename, folderID string) (*types.Document, error) {
	var found *types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketDocuments), projectID, func(k, v []byte) error {
			var doc types.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if doc.Filename == filename && doc.FolderID == folderID {
				found = &doc
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("document %s: %w", filename, ErrNotFound)
	}
	return found, nil
}

func (s *BoltStore) ListDocuments(projectID string) ([]*types.Document, error) {
	var docs []*types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketDocuments), projectID, func(k, v []byte) error {
			var doc types.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			docs = append(docs, &doc)
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) UpdateDocument(doc *types.Document) error {
	return s.CreateDocument(doc)
}

// AppendVersion appends ver to doc's chain in one transaction: the prior
// latest is demoted, the new version gets LatestVersion+1 with IsLatest set,
// the document row is updated, and the blob refcount is bumped. No observer
// ever sees two latest rows.
func (s *BoltStore) AppendVersion(doc *types.Document, ver *types.DocumentVersion) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketDocuments)
		versions := tx.Bucket(bucketVersions)

		if doc.LatestVersion > 0 {
			prevKey := versionKey(doc.ID, doc.LatestVersion)
			data := versions.Get(prevKey)
			if data == nil {
				return fmt.Errorf("version %d of %s: %w", doc.LatestVersion, doc.ID, ErrNotFound)
			}
			var prev types.DocumentVersion
			if err := json.Unmarshal(data, &prev); err != nil {
				return err
			}
			prev.IsLatest = false
			if err := putJSON(versions, prevKey, &prev); err != nil {
				return err
			}
		}

		ver.DocumentID = doc.ID
		ver.VersionNumber = doc.LatestVersion + 1
		ver.IsLatest = true
		if err := putJSON(versions, versionKey(doc.ID, ver.VersionNumber), ver); err != nil {
			return err
		}

		doc.LatestVersion = ver.VersionNumber
		doc.Deleted = false
		if err := putJSON(docs, key(doc.ProjectID, doc.ID), doc); err != nil {
			return err
		}

		return refBlobTx(tx, ver.BlobHash)
	})
}

func (s *BoltStore) GetVersion(docID string, versionNumber int) (*types.DocumentVersion, error) {
	var ver types.DocumentVersion
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketVersions).Get(versionKey(docID, versionNumber))
		if data == nil {
			return fmt.Errorf("version %d of %s: %w", versionNumber, docID, ErrNotFound)
		}
		return json.Unmarshal(data, &ver)
	})
	if err != nil {
		return nil, err
	}
	return &ver, nil
}

func (s *BoltStore) ListVersions(docID string) ([]*types.DocumentVersion, error) {
	var vers []*types.DocumentVersion
	err := s.db.View(func(tx *bolt.Tx) error {
		// Keys are zero-padded so cursor order is version order.
		return forEachPrefix(tx.Bucket(bucketVersions), docID, func(k, v []byte) error {
			var ver types.DocumentVersion
			if err := json.Unmarshal(v, &ver); err != nil {
				return err
			}
			vers = append(vers, &ver)
			return nil
		})
	})
	return vers, err
}

// Blob operations

// HashBlob returns the lowercase hex SHA-256 of data.
func HashBlob(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *BoltStore) PutBlob(data []byte) (string, error) {
	hash := HashBlob(data)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		if existing := b.Get([]byte(hash)); existing != nil {
			// Dedup hit. Equal hash must mean equal bytes.
			if !bytes.Equal(existing, data) {
				return fmt.Errorf("blob %s: hash collision: %w", hash, ErrConflict)
			}
			return nil
		}
		return b.Put([]byte(hash), data)
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *BoltStore) GetBlob(hash string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get([]byte(hash))
		if v == nil {
			return fmt.Errorf("blob %s: %w", hash, ErrNotFound)
		}
		// Copy out: bolt data is only valid during the transaction.
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func refBlobTx(tx *bolt.Tx, hash string) error {
	refs := tx.Bucket(bucketBlobRefs)
	count := 0
	if v := refs.Get([]byte(hash)); v != nil {
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("blob %s: bad refcount: %w", hash, err)
		}
		count = n
	}
	return refs.Put([]byte(hash), []byte(strconv.Itoa(count+1)))
}

func unrefBlobTx(tx *bolt.Tx, hash string) error {
	refs := tx.Bucket(bucketBlobRefs)
	v := refs.Get([]byte(hash))
	if v == nil {
		return nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return fmt.Errorf("blob %s: bad refcount: %w", hash, err)
	}
	if n <= 1 {
		if err := refs.Delete([]byte(hash)); err != nil {
			return err
		}
		return tx.Bucket(bucketBlobs).Delete([]byte(hash))
	}
	return refs.Put([]byte(hash), []byte(strconv.Itoa(n-1)))
}

func (s *BoltStore) RefBlob(hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return refBlobTx(tx, hash)
	})
}

func (s *BoltStore) UnrefBlob(hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return unrefBlobTx(tx, hash)
	})
}

// Device record operations

func (s *BoltStore) PutDeviceRecord(rec *types.DeviceRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketDevices), key(rec.ProjectID, rec.DeviceName), rec)
	})
}

func (s *BoltStore) GetDeviceRecord(projectID, deviceName string) (*types.DeviceRecord, error) {
	var rec types.DeviceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDevices).Get(key(projectID, deviceName))
		if data == nil {
			return fmt.Errorf("device %s: %w", deviceName, ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltStore) ListDeviceRecords(projectID string) ([]*types.DeviceRecord, error) {
	var recs []*types.DeviceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketDevices), projectID, func(k, v []byte) error {
			var rec types.DeviceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	return recs, err
}

func (s *BoltStore) DeleteDeviceRecord(projectID, deviceName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDevices).Delete(key(projectID, deviceName))
	})
}

// Analysis artifact operations. Keyed by project/kind/device; project-scoped
// kinds use an empty device segment.

func artifactKey(projectID string, kind types.AnalysisKind, deviceName string) []byte {
	return key(projectID, string(kind), deviceName)
}

func (s *BoltStore) PutArtifact(artifact *types.AnalysisArtifact) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		k := artifactKey(artifact.ProjectID, artifact.Kind, artifact.DeviceName)
		return putJSON(tx.Bucket(bucketArtifacts), k, artifact)
	})
}

func (s *BoltStore) GetArtifact(projectID string, kind types.AnalysisKind, deviceName string) (*types.AnalysisArtifact, error) {
	var artifact types.AnalysisArtifact
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketArtifacts).Get(artifactKey(projectID, kind, deviceName))
		if data == nil {
			return fmt.Errorf("artifact %s/%s: %w", kind, deviceName, ErrNotFound)
		}
		return json.Unmarshal(data, &artifact)
	})
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (s *BoltStore) ListArtifacts(projectID string) ([]*types.AnalysisArtifact, error) {
	var artifacts []*types.AnalysisArtifact
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketArtifacts), projectID, func(k, v []byte) error {
			var artifact types.AnalysisArtifact
			if err := json.Unmarshal(v, &artifact); err != nil {
				return err
			}
			artifacts = append(artifacts, &artifact)
			return nil
		})
	})
	return artifacts, err
}

func (s *BoltStore) DeleteDeviceArtifacts(projectID, deviceName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArtifacts)
		for _, kind := range types.AnalysisKinds {
			if !kind.IsDeviceKind() {
				continue
			}
			if err := b.Delete(artifactKey(projectID, kind, deviceName)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Topology operations

func (s *BoltStore) PutTopology(state *types.TopologyState) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketTopology), []byte(state.ProjectID), state)
	})
}

func (s *BoltStore) GetTopology(projectID string) (*types.TopologyState, error) {
	var state types.TopologyState
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTopology).Get([]byte(projectID))
		if data == nil {
			return fmt.Errorf("topology for %s: %w", projectID, ErrNotFound)
		}
		return json.Unmarshal(data, &state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// In-flight marker operations. One slot per project: SetMarker fails with
// ErrConflict while any marker exists, which is what makes the analysis
// queue single-slot even across processes.

func (s *BoltStore) SetMarker(marker *types.InFlightMarker) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMarkers)
		if b.Get([]byte(marker.ProjectID)) != nil {
			return fmt.Errorf("analysis job in flight for %s: %w", marker.ProjectID, ErrConflict)
		}
		return putJSON(b, []byte(marker.ProjectID), marker)
	})
}

func (s *BoltStore) GetMarker(projectID string) (*types.InFlightMarker, error) {
	var marker types.InFlightMarker
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMarkers).Get([]byte(projectID))
		if data == nil {
			return fmt.Errorf("marker for %s: %w", projectID, ErrNotFound)
		}
		return json.Unmarshal(data, &marker)
	})
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

func (s *BoltStore) ListMarkers() ([]*types.InFlightMarker, error) {
	var markers []*types.InFlightMarker
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMarkers).ForEach(func(_, v []byte) error {
			var marker types.InFlightMarker
			if err := json.Unmarshal(v, &marker); err != nil {
				return err
			}
			markers = append(markers, &marker)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return markers, nil
}

func (s *BoltStore) ClearMarker(projectID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMarkers).Delete([]byte(projectID))
	})
}

// Project option operations

func (s *BoltStore) AddOption(opt *types.ProjectOption) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		// Key includes the value, so duplicates collapse silently.
		k := key(opt.ProjectID, string(opt.Category), opt.Value)
		return putJSON(tx.Bucket(bucketOptions), k, opt)
	})
}

func (s *BoltStore) ListOptions(projectID string) ([]*types.ProjectOption, error) {
	var opts []*types.ProjectOption
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachPrefix(tx.Bucket(bucketOptions), projectID, func(k, v []byte) error {
			var opt types.ProjectOption
			if err := json.Unmarshal(v, &opt); err != nil {
				return err
			}
			opts = append(opts, &opt)
			return nil
		})
	})
	return opts, err
}

// Device image operations

func (s *BoltStore) PutDeviceImage(img *types.DeviceImage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketImages), key(img.ProjectID, img.DeviceName), img)
	})
}

func (s *BoltStore) GetDeviceImage(projectID, deviceName string) (*types.DeviceImage, error) {
	var img types.DeviceImage
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketImages).Get(key(projectID, deviceName))
		if data == nil {
			return fmt.Errorf("image for %s: %w", deviceName, ErrNotFound)
		}
		return json.Unmarshal(data, &img)
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *BoltStore) DeleteDeviceImage(projectID, deviceName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).Delete(key(projectID, deviceName))
	})
}
