package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"armario-outfits/apperr"
	"armario-outfits/models"
	"armario-outfits/repository"
	"armario-outfits/utils"
)

var validCategories = map[string]bool{
	"top":       true,
	"bottom":    true,
	"shoes":     true,
	"outerwear": true,
	"accessory": true,
	"other":     true,
}

// ClothingService manages the wardrobe: photo uploads, listing with
// filters, wear tracking and laundry status
type ClothingService struct {
	repo    repository.ClothingRepositoryInterface
	storage Storage
}

// NewClothingService creates a new ClothingService
func NewClothingService(repo repository.ClothingRepositoryInterface, storage Storage) *ClothingService {
	return &ClothingService{repo: repo, storage: storage}
}

// Create stores the photo and its thumbnail, then inserts the item. The
// uploaded blobs are removed again if the insert fails.
func (s *ClothingService) Create(ctx context.Context, uid string, req models.CreateClothingItemRequest, photo []byte) (*models.ClothingItem, error) {
	log.Infof("📥 Create clothing item: owner=%s, name=%q, %d bytes", uid, req.Name, len(photo))

	category := utils.MapCategory(req.Category)
	if category == "" {
		category = "other"
	}
	if !validCategories[category] {
		return nil, apperr.New(apperr.CodeInvalidInput, "unknown category %q", req.Category)
	}
	if len(photo) == 0 {
		return nil, apperr.New(apperr.CodeInvalidInput, "photo is required")
	}

	img, err := DecodeImage(photo)
	if err != nil {
		return nil, err
	}
	full, contentType, ext, err := PrepareLayerImage(img)
	if err != nil {
		return nil, err
	}
	thumb, err := OptimizeImage(img, SizeThumb)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("clothing/%s/%s", uid, uuid.NewString())
	imageURL, err := s.storage.Upload(ctx, base+ext, full, contentType)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUploadFailed, err, "failed to store photo")
	}
	thumbURL, err := s.storage.Upload(ctx, base+"_thumb.jpg", thumb, "image/jpeg")
	if err != nil {
		s.cleanup(ctx, base+ext)
		return nil, apperr.Wrap(apperr.CodeUploadFailed, err, "failed to store thumbnail")
	}

	item := &models.ClothingItem{
		OwnerID:      uid,
		Name:         strings.TrimSpace(req.Name),
		Category:     category,
		Size:         req.Size,
		Color:        utils.MapColorToName(req.Color),
		Brand:        strings.TrimSpace(req.Brand),
		ImageURL:     imageURL,
		ThumbnailURL: thumbURL,
		Status:       models.StatusClean,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		s.cleanup(ctx, base+ext, base+"_thumb.jpg")
		return nil, err
	}

	log.Infof("✅ Clothing item %d created", item.ID)
	return item, nil
}

func (s *ClothingService) cleanup(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if err := s.storage.Delete(context.WithoutCancel(ctx), p); err != nil {
			log.Errorf("❌ Failed to remove orphaned blob %s: %v", p, err)
		}
	}
}

// List returns the user's items after applying the filter in memory
func (s *ClothingService) List(ctx context.Context, uid string, filter models.ClothingFilter) ([]models.ClothingItem, error) {
	items, err := s.repo.ListByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && filter.Status != models.StatusClean && filter.Status != models.StatusLaundry {
		return nil, apperr.New(apperr.CodeInvalidInput, "unknown status %q", filter.Status)
	}
	filtered := FilterClothing(items, filter)
	if err := SortClothing(filtered, filter.Sort); err != nil {
		return nil, err
	}
	log.Debugf("🔍 %d/%d clothing items match filter for %s", len(filtered), len(items), uid)
	return filtered, nil
}

// FilterClothing keeps the items matching every non-empty filter field.
// Text matches ignore case; Query searches name, brand, color and category.
func FilterClothing(items []models.ClothingItem, f models.ClothingFilter) []models.ClothingItem {
	size, color, category := "", "", ""
	if f.Category != "" {
		category = utils.MapCategory(f.Category)
	}
	if f.Size != "" {
		size = utils.NormalizeSize(f.Size)
	}
	if f.Color != "" {
		color = utils.MapColorToName(f.Color)
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		if color != "" && !strings.EqualFold(item.Color, color) {
			continue
		}
		if size != "" && item.Size != size {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(item.Brand, f.Brand) {
			continue
		}
		if q != "" {
			hay := strings.ToLower(strings.Join([]string{item.Name, item.Brand, item.Color, item.Category}, " "))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// SortClothing orders items in place. Ties fall back to newest first.
func SortClothing(items []models.ClothingItem, by string) error {
	newest := func(a, b models.ClothingItem) bool {
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.ID > b.ID
	}

	var less func(a, b models.ClothingItem) bool
	switch by {
	case "", "newest":
		less = newest
	case "oldest":
		less = func(a, b models.ClothingItem) bool { return newest(b, a) }
	case "name":
		less = func(a, b models.ClothingItem) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return newest(a, b)
		}
	case "most_worn":
		less = func(a, b models.ClothingItem) bool {
			if a.WearCount != b.WearCount {
				return a.WearCount > b.WearCount
			}
			return newest(a, b)
		}
	case "least_worn":
		less = func(a, b models.ClothingItem) bool {
			if a.WearCount != b.WearCount {
				return a.WearCount < b.WearCount
			}
			return newest(a, b)
		}
	default:
		return apperr.New(apperr.CodeInvalidInput, "unknown sort %q", by)
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return nil
}

// Get returns one item
func (s *ClothingService) Get(ctx context.Context, uid string, id int64) (*models.ClothingItem, error) {
	return s.repo.GetByID(ctx, uid, id)
}

// Update changes item metadata
func (s *ClothingService) Update(ctx context.Context, uid string, id int64, req models.UpdateClothingItemRequest) (*models.ClothingItem, error) {
	if req.Category != nil {
		if !validCategories[utils.MapCategory(*req.Category)] {
			return nil, apperr.New(apperr.CodeInvalidInput, "unknown category %q", *req.Category)
		}
	}
	return s.repo.Update(ctx, uid, id, req)
}

// Delete removes the item and its stored images. Image cleanup failures are
// logged; the item is gone either way.
func (s *ClothingService) Delete(ctx context.Context, uid string, id int64) error {
	item, err := s.repo.Delete(ctx, uid, id)
	if err != nil {
		return err
	}
	for _, uri := range []string{item.ImageURL, item.ThumbnailURL} {
		if uri == "" {
			continue
		}
		if err := s.storage.DeleteURL(ctx, uri); err != nil {
			log.Errorf("❌ Failed to delete image %s of item %d: %v", uri, id, err)
		}
	}
	return nil
}

// Wear records one more wear
func (s *ClothingService) Wear(ctx context.Context, uid string, id int64) (*models.ClothingItem, error) {
	return s.repo.IncrementWear(ctx, uid, id)
}

// SetStatus moves a selection between clean and laundry
func (s *ClothingService) SetStatus(ctx context.Context, uid string, req models.SetStatusRequest) (int64, error) {
	if req.Status != models.StatusClean && req.Status != models.StatusLaundry {
		return 0, apperr.New(apperr.CodeInvalidInput, "status must be %q or %q", models.StatusClean, models.StatusLaundry)
	}
	if len(req.IDs) == 0 {
		return 0, apperr.New(apperr.CodeInvalidInput, "no items selected")
	}
	return s.repo.SetStatus(ctx, uid, req.IDs, req.Status)
}
