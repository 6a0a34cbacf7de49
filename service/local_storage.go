package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"armario-outfits/apperr"
)

// Storage stores image blobs and serves them back by URL
type Storage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	// Read returns the bytes behind a URL this storage produced.
	// ok is false when the URL belongs to someone else.
	Read(ctx context.Context, uri string) (data []byte, ok bool, err error)
	// DeleteURL removes the blob behind a URL this storage produced
	DeleteURL(ctx context.Context, uri string) error
}

// LocalStorage keeps blobs on disk under dir; the router serves them at
// baseURL + "/files/"
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the storage directory if needed
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Ensure LocalStorage implements Storage
var _ Storage = (*LocalStorage)(nil)

// Dir returns the directory blobs are written to
func (ls *LocalStorage) Dir() string {
	return ls.dir
}

func (ls *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", apperr.New(apperr.CodeInvalidInput, "empty storage path")
	}
	return filepath.Join(ls.dir, filepath.FromSlash(clean)), nil
}

func (ls *LocalStorage) urlPrefix() string {
	return ls.baseURL + "/files/"
}

// Upload writes data to dir/path and returns its public URL
func (ls *LocalStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := ls.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Debugf("💾 Stored %s (%s, %d bytes)", path, contentType, len(data))
	return ls.urlPrefix() + strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+path)), "/"), nil
}

// Delete removes dir/path. A missing file is not an error.
func (ls *LocalStorage) Delete(ctx context.Context, path string) error {
	full, err := ls.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	log.Debugf("🗑️  Removed %s", path)
	return nil
}

// Read loads the file behind a URL returned by Upload
func (ls *LocalStorage) Read(ctx context.Context, uri string) ([]byte, bool, error) {
	rel, ok := strings.CutPrefix(uri, ls.urlPrefix())
	if !ok {
		return nil, false, nil
	}
	full, err := ls.resolve(rel)
	if err != nil {
		return nil, true, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, true, apperr.New(apperr.CodeNotFound, "file %s does not exist", rel)
	}
	if err != nil {
		return nil, true, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, true, nil
}

// DeleteURL removes the file behind a URL returned by Upload
func (ls *LocalStorage) DeleteURL(ctx context.Context, uri string) error {
	rel, ok := strings.CutPrefix(uri, ls.urlPrefix())
	if !ok {
		log.Warnf("⚠️  Not a local storage URL, skipping delete: %s", uri)
		return nil
	}
	return ls.Delete(ctx, rel)
}
