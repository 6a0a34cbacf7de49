package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"armario-outfits/apperr"
	"armario-outfits/models"
	"armario-outfits/repository"
	"armario-outfits/utils"
)

func pngBytes(w, h int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// memStorage is an in-memory Storage serving mem:// URLs
type memStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
	failAfter int // fail uploads once this many succeeded; 0 disables
	deleted   []string
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

var _ Storage = (*memStorage)(nil)

func (m *memStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if m.failAfter > 0 && len(m.blobs) >= m.failAfter {
		return "", errors.New("storage full")
	}
	m.blobs[path] = append([]byte(nil), data...)
	return "mem://" + path, nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memStorage) Read(ctx context.Context, uri string) ([]byte, bool, error) {
	path, ok := strings.CutPrefix(uri, "mem://")
	if !ok {
		return nil, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, found := m.blobs[path]
	if !found {
		return nil, true, apperr.New(apperr.CodeNotFound, "no blob %s", path)
	}
	return data, true, nil
}

func (m *memStorage) DeleteURL(ctx context.Context, uri string) error {
	path, ok := strings.CutPrefix(uri, "mem://")
	if !ok {
		return nil
	}
	return m.Delete(ctx, path)
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// fakeClothingRepo keeps items in memory
type fakeClothingRepo struct {
	items     []models.ClothingItem
	nextID    int64
	insertErr error
}

var _ repository.ClothingRepositoryInterface = (*fakeClothingRepo)(nil)

func (f *fakeClothingRepo) Insert(ctx context.Context, item *models.ClothingItem) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	item.ID = f.nextID
	item.Size = utils.NormalizeSize(item.Size)
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeClothingRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error) {
	var out []models.ClothingItem
	for _, it := range f.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeClothingRepo) find(ownerID string, id int64) int {
	for i, it := range f.items {
		if it.OwnerID == ownerID && it.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeClothingRepo) GetByID(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	i := f.find(ownerID, id)
	if i < 0 {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	it := f.items[i]
	return &it, nil
}

func (f *fakeClothingRepo) GetByIDs(ctx context.Context, ownerID string, ids []int64) ([]models.ClothingItem, error) {
	var out []models.ClothingItem
	for _, id := range ids {
		if i := f.find(ownerID, id); i >= 0 {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeClothingRepo) Update(ctx context.Context, ownerID string, id int64, req models.UpdateClothingItemRequest) (*models.ClothingItem, error) {
	i := f.find(ownerID, id)
	if i < 0 {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	if req.Name != nil {
		f.items[i].Name = *req.Name
	}
	it := f.items[i]
	return &it, nil
}

func (f *fakeClothingRepo) Delete(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	i := f.find(ownerID, id)
	if i < 0 {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	it := f.items[i]
	f.items = append(f.items[:i], f.items[i+1:]...)
	return &it, nil
}

func (f *fakeClothingRepo) IncrementWear(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	i := f.find(ownerID, id)
	if i < 0 {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	f.items[i].WearCount++
	it := f.items[i]
	return &it, nil
}

func (f *fakeClothingRepo) SetStatus(ctx context.Context, ownerID string, ids []int64, status string) (int64, error) {
	var n int64
	for _, id := range ids {
		if i := f.find(ownerID, id); i >= 0 && f.items[i].Status != status {
			f.items[i].Status = status
			n++
		}
	}
	return n, nil
}

// fakeUserRepo keeps users in memory
type fakeUserRepo struct {
	byID map[string]*models.User
}

var _ repository.UserRepositoryInterface = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperr.New(apperr.CodeConflict, "email already in use")
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "user not found")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) SetProfileImage(ctx context.Context, id string, url string) error {
	u, ok := f.byID[id]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	u.ProfileImageURL = url
	return nil
}
