package models

import "time"

// Outfit is the persisted result of a canvas submission
type Outfit struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	ItemName       string    `json:"itemName"`
	Image          string    `json:"image"`
	ClothingIDs    []string  `json:"clothingIds"`
	DateUploaded   time.Time `json:"dateUploaded"`
	IsPublic       bool      `json:"isPublic"`
	LikeCount      int       `json:"likeCount"`
	LikedByMe      bool      `json:"likedByMe"`
	IdempotencyKey string    `json:"-"`
}

// SubmitOutfitRequest represents the request body for submitting a canvas
// Example: {"itemName": "Friday office"}
type SubmitOutfitRequest struct {
	ItemName string `json:"itemName"`
}

// PublishOutfitRequest toggles feed visibility
type PublishOutfitRequest struct {
	Public bool `json:"public"`
}

// OutfitListResponse wraps a list of outfits
type OutfitListResponse struct {
	Outfits []Outfit `json:"outfits"`
}
