package manager

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/netlens/netlens/pkg/events"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// maxDeviceImageBytes caps the decoded size of an uploaded device photo.
const maxDeviceImageBytes = 1536 * 1024

// GetDevice returns one parsed device record.
func (m *Manager) GetDevice(projectID, deviceName string) (*types.DeviceRecord, error) {
	return m.store.GetDeviceRecord(projectID, deviceName)
}

// ListDevices returns a project's parsed device records.
func (m *Manager) ListDevices(projectID string) ([]*types.DeviceRecord, error) {
	return m.store.ListDeviceRecords(projectID)
}

// DeleteDevice removes the parsed record, its image, its per-device
// analysis artifacts and its topology node. The Config documents the
// record was parsed from are untouched.
func (m *Manager) DeleteDevice(projectID, deviceName string) error {
	if _, err := m.store.GetDeviceRecord(projectID, deviceName); err != nil {
		return err
	}
	if err := m.store.DeleteDeviceRecord(projectID, deviceName); err != nil {
		return err
	}
	if err := m.store.DeleteDeviceImage(projectID, deviceName); err != nil && !isNotFound(err) {
		log.WithDevice(projectID, deviceName).Warn().Err(err).Msg("Failed to delete device image")
	}
	if err := m.store.DeleteDeviceArtifacts(projectID, deviceName); err != nil {
		log.WithDevice(projectID, deviceName).Warn().Err(err).Msg("Failed to delete device artifacts")
	}
	if err := m.topology.RemoveNode(projectID, deviceName); err != nil {
		log.WithDevice(projectID, deviceName).Warn().Err(err).Msg("Failed to remove topology node")
	}

	m.publish(events.EventDeviceDeleted, "Device deleted", map[string]string{
		"project_id": projectID,
		"device":     deviceName,
	})
	return nil
}

// DeviceConfigs returns the Config document families parsed under the
// device name, latest first by creation.
func (m *Manager) DeviceConfigs(projectID, deviceName string) ([]*types.Document, error) {
	docs, err := m.ListDocuments(projectID, types.FolderConfig)
	if err != nil {
		return nil, err
	}
	matched := []*types.Document{}
	for _, doc := range docs {
		if doc.DeviceName == deviceName {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// PutDeviceImage stores a base64-encoded device photo. PNG and JPEG
// only, decoded size capped at 1.5 MiB.
func (m *Manager) PutDeviceImage(projectID, deviceName, contentType, data string) (*types.DeviceImage, error) {
	if _, err := m.store.GetDeviceRecord(projectID, deviceName); err != nil {
		return nil, err
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidation, contentType)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: image data is not valid base64", ErrValidation)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: image data must not be empty", ErrValidation)
	}
	if len(decoded) > maxDeviceImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrTooLarge, maxDeviceImageBytes)
	}

	img := &types.DeviceImage{
		ProjectID:   projectID,
		DeviceName:  deviceName,
		ContentType: contentType,
		Data:        data,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := m.store.PutDeviceImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

// GetDeviceImage returns the stored photo, if any.
func (m *Manager) GetDeviceImage(projectID, deviceName string) (*types.DeviceImage, error) {
	return m.store.GetDeviceImage(projectID, deviceName)
}

// DeleteDeviceImage removes the stored photo.
func (m *Manager) DeleteDeviceImage(projectID, deviceName string) error {
	return m.store.DeleteDeviceImage(projectID, deviceName)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
