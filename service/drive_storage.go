package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveURLPrefix = "https://drive.google.com/uc?id="

// DriveStorage stores images as files in a shared Google Drive folder.
// The object path is used as the Drive file name.
type DriveStorage struct {
	client   *drive.Service
	folderID string
}

// NewDriveStorage creates a new DriveStorage
// credentialsPath should be the path to the Service Account JSON file
func NewDriveStorage(ctx context.Context, credentialsPath, folderID string) (*DriveStorage, error) {
	// option.WithCredentialsFile automatically handles Service Account authentication
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveStorage{client: client, folderID: folderID}, nil
}

// Ensure DriveStorage implements Storage
var _ Storage = (*DriveStorage)(nil)

// Upload creates the file, shares it read-only with anyone and returns its public URL
func (ds *DriveStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	log.Debugf("📤 Drive upload: %s (%d bytes)", path, len(data))

	file, err := ds.client.Files.Create(&drive.File{
		Name:     path,
		Parents:  []string{ds.folderID},
		MimeType: contentType,
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		log.Errorf("❌ Drive upload failed for %s: %v", path, err)
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}

	_, err = ds.client.Permissions.Create(file.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		// Leave nothing half-published behind
		_ = ds.client.Files.Delete(file.Id).Context(ctx).Do()
		return "", fmt.Errorf("failed to share %s: %w", path, err)
	}

	log.Infof("✓ Uploaded to Drive: %s -> %s", path, file.Id)
	return driveURLPrefix + file.Id, nil
}

// Delete removes every file in the folder named path. A missing file is not an error.
func (ds *DriveStorage) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed=false",
		strings.ReplaceAll(path, "'", `\'`), ds.folderID)

	r, err := ds.client.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", path, err)
	}
	for _, f := range r.Files {
		if err := ds.client.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		log.Infof("🗑️  Deleted from Drive: %s (%s)", path, f.Id)
	}
	return nil
}

// Download fetches the bytes of a file previously returned by Upload
func (ds *DriveStorage) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// Read returns the bytes behind a URL produced by Upload
func (ds *DriveStorage) Read(ctx context.Context, uri string) ([]byte, bool, error) {
	id, ok := DriveFileID(uri)
	if !ok {
		return nil, false, nil
	}
	data, err := ds.Download(ctx, id)
	return data, true, err
}

// DeleteURL removes the file behind a URL produced by Upload
func (ds *DriveStorage) DeleteURL(ctx context.Context, uri string) error {
	id, ok := DriveFileID(uri)
	if !ok {
		log.Warnf("⚠️  Not a Drive URL, skipping delete: %s", uri)
		return nil
	}
	err := ds.client.Files.Delete(id).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}
	log.Infof("🗑️  Deleted from Drive: %s", id)
	return nil
}

// DriveFileID extracts the file id from a URL produced by Upload
func DriveFileID(uri string) (string, bool) {
	if !strings.HasPrefix(uri, driveURLPrefix) {
		return "", false
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}
	id := u.Query().Get("id")
	return id, id != ""
}
