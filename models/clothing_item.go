package models

// Clothing item laundry states
const (
	StatusClean   = "clean"
	StatusLaundry = "laundry"
)

// ClothingItem represents a photographed piece of clothing in a user's wardrobe
type ClothingItem struct {
	ID           int64  `json:"id"`
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	Category     string `json:"category"` // top, bottom, shoes, outerwear, accessory, other
	Size         string `json:"size"`
	Color        string `json:"color"`
	Brand        string `json:"brand"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	WearCount    int    `json:"wearCount"`
	Status       string `json:"status"` // clean, laundry
	CreatedAt    string `json:"createdAt"`
}

// CreateClothingItemRequest holds the metadata fields of the multipart upload
type CreateClothingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Brand    string `json:"brand"`
}

// UpdateClothingItemRequest represents a partial metadata update.
// Nil fields are left unchanged.
type UpdateClothingItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Size     *string `json:"size,omitempty"`
	Color    *string `json:"color,omitempty"`
	Brand    *string `json:"brand,omitempty"`
}

// SetStatusRequest moves a selection of items between clean and laundry
// Example: {"ids": [3, 7], "status": "laundry"}
type SetStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

// ClothingFilter holds the optional list filters; empty strings mean "any"
type ClothingFilter struct {
	Status   string
	Category string
	Color    string
	Size     string
	Brand    string
	Query    string
	Sort     string // newest, oldest, name, most_worn, least_worn
}

// ResolvedItem is the canvas view of a clothing item
type ResolvedItem struct {
	ID          string `json:"id"`
	ImageURI    string `json:"imageUri"`
	DisplayName string `json:"displayName"`
}
