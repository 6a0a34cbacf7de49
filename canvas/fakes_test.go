package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"armario-outfits/apperr"
	"armario-outfits/models"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeCatalog struct {
	items      map[string]models.ResolvedItem
	profileURI string
	itemsErr   error
	profileErr error
}

func (f *fakeCatalog) ResolveItems(_ context.Context, _ string, ids []string) ([]models.ResolvedItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	var out []models.ResolvedItem
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProfileImage(context.Context, string) (string, error) {
	return f.profileURI, f.profileErr
}

type fakeLoader struct {
	images map[string]image.Image
}

func (f *fakeLoader) Load(_ context.Context, uri string) (image.Image, error) {
	img, ok := f.images[uri]
	if !ok {
		return nil, fmt.Errorf("404 %s", uri)
	}
	return img, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	uploadErr error
	block     chan struct{}
}

func (f *fakeStorage) Upload(ctx context.Context, path string, data []byte, _ string) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if len(data) == 0 {
		return "", errors.New("empty upload")
	}
	f.uploads = append(f.uploads, path)
	return "https://cdn.test/" + path, nil
}

func (f *fakeStorage) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeOutfits struct {
	mu        sync.Mutex
	next      int
	byKey     map[string]*models.Outfit
	records   []models.Outfit
	insertErr error
	// ackLost inserts commit, then report an error as if the reply was lost
	ackLost   int
	lookupErr error
}

func (f *fakeOutfits) InsertOutfit(_ context.Context, o *models.Outfit) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if f.byKey == nil {
		f.byKey = make(map[string]*models.Outfit)
	}
	if stored, ok := f.byKey[o.OwnerID+"/"+o.IdempotencyKey]; ok {
		cp := *stored
		return &cp, nil
	}
	f.next++
	stored := *o
	stored.ID = fmt.Sprintf("outfit-%d", f.next)
	f.byKey[o.OwnerID+"/"+o.IdempotencyKey] = &stored
	f.records = append(f.records, stored)
	if f.ackLost > 0 {
		f.ackLost--
		return nil, errors.New("connection reset after commit")
	}
	cp := stored
	return &cp, nil
}

func (f *fakeOutfits) OutfitByKey(_ context.Context, ownerID, key string) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	stored, ok := f.byKey[ownerID+"/"+key]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "no outfit stored under key %s", key)
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeOutfits) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
	tan  = color.NRGBA{R: 0xd2, G: 0xb4, B: 0x8c, A: 0xff}
)

type harness struct {
	catalog *fakeCatalog
	loader  *fakeLoader
	storage *fakeStorage
	outfits *fakeOutfits
	deps    Deps
}

func newHarness() *harness {
	h := &harness{
		catalog: &fakeCatalog{
			items: map[string]models.ResolvedItem{
				"A": {ID: "A", ImageURI: "mem://a", DisplayName: "Red shirt"},
				"B": {ID: "B", ImageURI: "mem://b", DisplayName: "Blue jeans"},
				"C": {ID: "C", ImageURI: "mem://missing", DisplayName: "Lost sock"},
			},
			profileURI: "mem://me",
		},
		loader: &fakeLoader{images: map[string]image.Image{
			"mem://a":  solid(40, 40, red),
			"mem://b":  solid(40, 40, blue),
			"mem://me": solid(40, 40, tan),
		}},
		storage: &fakeStorage{},
		outfits: &fakeOutfits{},
	}
	h.deps = Deps{
		Catalog: h.catalog,
		Images:  h.loader,
		Storage: h.storage,
		Outfits: h.outfits,
		Now:     func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	}
	return h
}

func testSettings() Settings {
	return Settings{Width: 100, Height: 100, Background: "#ffffff"}.WithDefaults()
}

func openLoaded(t *testing.T, h *harness, ids ...string) *Session {
	t.Helper()
	s := Open(context.Background(), "user-1", ids, testSettings(), h.deps)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.WaitLoaded(ctx); err != nil {
		t.Fatalf("WaitLoaded: %v", err)
	}
	return s
}
