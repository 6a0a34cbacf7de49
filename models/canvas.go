package models

// OpenCanvasRequest starts a composition session
// Example: {"clothingIds": ["12", "40", "41"]}
type OpenCanvasRequest struct {
	ClothingIDs []string `json:"clothingIds"`
}

// DragRequest carries one drag gesture update; dx/dy are the total
// translation since the gesture began
type DragRequest struct {
	Phase string  `json:"phase"`
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
}

// PinchRequest carries one pinch gesture update; factor is relative to the
// scale at the start of the pinch
type PinchRequest struct {
	Phase  string  `json:"phase"`
	Factor float64 `json:"factor"`
}

// ReorderRequest replaces the paint order
type ReorderRequest struct {
	Order []string `json:"order"`
}

// ProfileToggleRequest shows or hides the profile-picture layer
type ProfileToggleRequest struct {
	Visible bool `json:"visible"`
}
