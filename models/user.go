package models

import "time"

// User is an account that owns clothing items and outfits
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	PasswordHash    string    `json:"-"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AuthRequest is the body for register and sign-in
type AuthRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"` // optional, register only
}

// AuthResponse is returned after register and sign-in
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
