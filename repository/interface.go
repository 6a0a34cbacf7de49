package repository

import (
	"context"

	"armario-outfits/models"
)

// ClothingRepositoryInterface defines the contract for clothing item operations
type ClothingRepositoryInterface interface {
	Insert(ctx context.Context, item *models.ClothingItem) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error)
	GetByID(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error)
	GetByIDs(ctx context.Context, ownerID string, ids []int64) ([]models.ClothingItem, error)
	Update(ctx context.Context, ownerID string, id int64, req models.UpdateClothingItemRequest) (*models.ClothingItem, error)
	Delete(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error)
	IncrementWear(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error)
	SetStatus(ctx context.Context, ownerID string, ids []int64, status string) (int64, error)
}

// OutfitRepositoryInterface defines the contract for outfit and feed operations
type OutfitRepositoryInterface interface {
	InsertOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, error)
	OutfitByKey(ctx context.Context, ownerID, key string) (*models.Outfit, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error)
	GetVisible(ctx context.Context, viewerID string, id string) (*models.Outfit, error)
	Delete(ctx context.Context, ownerID string, id string) (*models.Outfit, error)
	SetPublic(ctx context.Context, ownerID string, id string, public bool) (*models.Outfit, error)
	ListPublic(ctx context.Context, viewerID string, limit int) ([]models.Outfit, error)
	Like(ctx context.Context, userID string, id string) (int, error)
	Unlike(ctx context.Context, userID string, id string) (int, error)
}

// UserRepositoryInterface defines the contract for account operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetProfileImage(ctx context.Context, id string, url string) error
}
