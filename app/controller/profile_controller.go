package controller

import (
	"net/http"

	"github.com/charmbracelet/log"

	"armario-outfits/service"
)

// ProfileController handles the profile picture upload
type ProfileController struct {
	service service.ProfileServiceInterface
}

// NewProfileController creates a new ProfileController
func NewProfileController(svc service.ProfileServiceInterface) *ProfileController {
	return &ProfileController{service: svc}
}

// SetPicture handles PUT /api/profile/picture
// Multipart form: photo (file)
func (c *ProfileController) SetPicture(w http.ResponseWriter, r *http.Request) {
	log.Infof("📥 SetProfilePicture: Received %s request to %s", r.Method, r.URL.Path)

	photo, err := readUpload(w, r, "photo")
	if err != nil {
		writeError(w, "SetProfilePicture", err)
		return
	}
	url, err := c.service.SetPicture(r.Context(), UserID(r.Context()), photo)
	if err != nil {
		writeError(w, "SetProfilePicture", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"profileImageUrl": url})
}
