package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"armario-outfits/apperr"
	"armario-outfits/canvas"
	"armario-outfits/models"
	"armario-outfits/repository"
)

// CatalogService resolves clothing ids into canvas layers and looks up the
// user's profile picture
type CatalogService struct {
	clothing repository.ClothingRepositoryInterface
	users    repository.UserRepositoryInterface
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(clothing repository.ClothingRepositoryInterface, users repository.UserRepositoryInterface) *CatalogService {
	return &CatalogService{clothing: clothing, users: users}
}

// Ensure CatalogService implements canvas.Catalog
var _ canvas.Catalog = (*CatalogService)(nil)

// ResolveItems returns the requested items the user owns, in request order.
// Ids that are malformed, repeated or unknown are dropped.
func (s *CatalogService) ResolveItems(ctx context.Context, uid string, ids []string) ([]models.ResolvedItem, error) {
	parsed := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			log.Warnf("⚠️  Skipping invalid clothing id %q", raw)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		parsed = append(parsed, id)
	}
	if len(parsed) == 0 {
		return []models.ResolvedItem{}, nil
	}

	items, err := s.clothing.GetByIDs(ctx, uid, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve clothing items: %w", err)
	}

	byID := make(map[int64]models.ClothingItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	resolved := make([]models.ResolvedItem, 0, len(items))
	for _, id := range parsed {
		item, ok := byID[id]
		if !ok {
			log.Warnf("⚠️  Clothing item %d not found for %s", id, uid)
			continue
		}
		resolved = append(resolved, models.ResolvedItem{
			ID:          strconv.FormatInt(item.ID, 10),
			ImageURI:    item.ImageURL,
			DisplayName: displayName(item),
		})
	}

	log.Debugf("🔍 Resolved %d/%d clothing items for %s", len(resolved), len(ids), uid)
	return resolved, nil
}

// ProfileImage returns the user's profile picture URL, or "" when none is set
func (s *CatalogService) ProfileImage(ctx context.Context, uid string) (string, error) {
	user, err := s.users.GetByID(ctx, uid)
	if apperr.Is(err, apperr.CodeNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get profile image: %w", err)
	}
	return user.ProfileImageURL, nil
}

func displayName(item models.ClothingItem) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	parts := []string{}
	for _, p := range []string{item.Color, item.Category} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Item %d", item.ID)
	}
	return strings.Join(parts, " ")
}
