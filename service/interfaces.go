package service

import (
	"context"

	"armario-outfits/models"
)

// ClothingServiceInterface defines the contract for wardrobe operations
type ClothingServiceInterface interface {
	Create(ctx context.Context, uid string, req models.CreateClothingItemRequest, photo []byte) (*models.ClothingItem, error)
	List(ctx context.Context, uid string, filter models.ClothingFilter) ([]models.ClothingItem, error)
	Get(ctx context.Context, uid string, id int64) (*models.ClothingItem, error)
	Update(ctx context.Context, uid string, id int64, req models.UpdateClothingItemRequest) (*models.ClothingItem, error)
	Delete(ctx context.Context, uid string, id int64) error
	Wear(ctx context.Context, uid string, id int64) (*models.ClothingItem, error)
	// SetStatus returns the number of items whose status changed
	SetStatus(ctx context.Context, uid string, req models.SetStatusRequest) (int64, error)
}

// OutfitServiceInterface defines the contract for saved outfits and the feed
type OutfitServiceInterface interface {
	List(ctx context.Context, uid string) ([]models.Outfit, error)
	Get(ctx context.Context, uid, id string) (*models.Outfit, error)
	Delete(ctx context.Context, uid, id string) error
	Publish(ctx context.Context, uid, id string, public bool) (*models.Outfit, error)
	Feed(ctx context.Context, uid string, limit int) ([]models.Outfit, error)
	Like(ctx context.Context, uid, id string) (int, error)
	Unlike(ctx context.Context, uid, id string) (int, error)
}

// AuthServiceInterface defines the contract for accounts and tokens
type AuthServiceInterface interface {
	Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, uid string) (*models.User, error)
	ParseToken(token string) (string, error)
}

// ProfileServiceInterface defines the contract for profile pictures
type ProfileServiceInterface interface {
	SetPicture(ctx context.Context, uid string, photo []byte) (string, error)
}

// ThumbnailerInterface renders cached thumbnails of stored images
type ThumbnailerInterface interface {
	Thumbnail(ctx context.Context, uri string) ([]byte, error)
}

// Ensure implementations satisfy their interfaces
var (
	_ ClothingServiceInterface = (*ClothingService)(nil)
	_ OutfitServiceInterface   = (*OutfitService)(nil)
	_ AuthServiceInterface     = (*AuthService)(nil)
	_ ProfileServiceInterface  = (*ProfileService)(nil)
	_ ThumbnailerInterface     = (*ImageLoader)(nil)
)
