package service

import (
	"context"

	"github.com/charmbracelet/log"

	"armario-outfits/models"
	"armario-outfits/repository"
)

const (
	defaultFeedLimit = 30
	maxFeedLimit     = 100
)

// OutfitService reads and manages saved outfits and the public feed
type OutfitService struct {
	repo    repository.OutfitRepositoryInterface
	storage Storage
}

// NewOutfitService creates a new OutfitService
func NewOutfitService(repo repository.OutfitRepositoryInterface, storage Storage) *OutfitService {
	return &OutfitService{repo: repo, storage: storage}
}

// List returns the user's outfits
func (s *OutfitService) List(ctx context.Context, uid string) ([]models.Outfit, error) {
	return s.repo.ListByOwner(ctx, uid)
}

// Get returns an outfit the user owns or that is public
func (s *OutfitService) Get(ctx context.Context, uid, id string) (*models.Outfit, error) {
	return s.repo.GetVisible(ctx, uid, id)
}

// Delete removes the outfit record and then its raster
func (s *OutfitService) Delete(ctx context.Context, uid, id string) error {
	outfit, err := s.repo.Delete(ctx, uid, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteURL(ctx, outfit.Image); err != nil {
		log.Errorf("❌ Failed to delete raster of outfit %s: %v", id, err)
	}
	return nil
}

// Publish shows or hides the outfit in the public feed
func (s *OutfitService) Publish(ctx context.Context, uid, id string, public bool) (*models.Outfit, error) {
	return s.repo.SetPublic(ctx, uid, id, public)
}

// Feed returns public outfits newest first. limit is clamped to [1, 100];
// zero or less means the default of 30.
func (s *OutfitService) Feed(ctx context.Context, uid string, limit int) ([]models.Outfit, error) {
	return s.repo.ListPublic(ctx, uid, FeedLimit(limit))
}

// FeedLimit normalises a requested page size
func FeedLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultFeedLimit
	case limit > maxFeedLimit:
		return maxFeedLimit
	}
	return limit
}

// Like marks a public outfit as liked by the user and returns the new count
func (s *OutfitService) Like(ctx context.Context, uid, id string) (int, error) {
	count, err := s.repo.Like(ctx, uid, id)
	if err != nil {
		return 0, err
	}
	log.Debugf("❤️  %s liked outfit %s (%d)", uid, id, count)
	return count, nil
}

// Unlike removes the user's like and returns the new count
func (s *OutfitService) Unlike(ctx context.Context, uid, id string) (int, error) {
	return s.repo.Unlike(ctx, uid, id)
}
