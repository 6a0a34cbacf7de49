package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"armario-outfits/apperr"
)

const (
	maxImageBytes = 20 << 20
	thumbnailTTL  = 24 * time.Hour
)

// ImageLoader fetches images by URL. URLs produced by the configured
// storage are read from it directly; anything else goes over HTTP.
type ImageLoader struct {
	storage Storage
	client  *http.Client
	cache   Cache
}

// NewImageLoader creates an ImageLoader. cache may be nil.
func NewImageLoader(storage Storage, cache Cache) *ImageLoader {
	return &ImageLoader{
		storage: storage,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
	}
}

// Fetch returns the raw bytes behind uri
func (l *ImageLoader) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, apperr.New(apperr.CodeNotFound, "no image")
	}
	if l.storage != nil {
		data, ok, err := l.storage.Read(ctx, uri)
		if ok {
			return data, err
		}
	}
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return nil, apperr.New(apperr.CodeInvalidInput, "unsupported image uri %q", uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", uri, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", uri, maxImageBytes)
	}
	return data, nil
}

// Load fetches and decodes an image
func (l *ImageLoader) Load(ctx context.Context, uri string) (image.Image, error) {
	data, err := l.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	log.Debugf("📸 Image loaded: %s, bounds=%v", uri, img.Bounds())
	return img, nil
}

// Thumbnail returns a small JPEG of the image behind uri, serving it from
// the cache when possible
func (l *ImageLoader) Thumbnail(ctx context.Context, uri string) ([]byte, error) {
	key := CacheKey(SizeThumb, uri)
	if l.cache != nil {
		data, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			log.Warnf("⚠️  Thumbnail cache read failed: %v", err)
		}
		if ok {
			log.Debugf("✓ Serving cached thumbnail for %s", uri)
			return data, nil
		}
	}

	img, err := l.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	data, err := OptimizeImage(img, SizeThumb)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, data, thumbnailTTL); err != nil {
			log.Warnf("⚠️  Failed to cache thumbnail: %v", err)
		}
	}
	return data, nil
}
