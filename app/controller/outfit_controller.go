package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"armario-outfits/models"
	"armario-outfits/service"
)

// OutfitController handles HTTP requests for saved outfits and the feed
type OutfitController struct {
	service service.OutfitServiceInterface
}

// NewOutfitController creates a new OutfitController
func NewOutfitController(svc service.OutfitServiceInterface) *OutfitController {
	return &OutfitController{service: svc}
}

// List handles GET /api/outfits
func (c *OutfitController) List(w http.ResponseWriter, r *http.Request) {
	outfits, err := c.service.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "ListOutfits", err)
		return
	}
	writeJSON(w, http.StatusOK, models.OutfitListResponse{Outfits: outfits})
}

// Get handles GET /api/outfits/{id}
func (c *OutfitController) Get(w http.ResponseWriter, r *http.Request) {
	outfit, err := c.service.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "GetOutfit", err)
		return
	}
	writeJSON(w, http.StatusOK, outfit)
}

// Delete handles DELETE /api/outfits/{id}
func (c *OutfitController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "DeleteOutfit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /api/outfits/{id}/publish
func (c *OutfitController) Publish(w http.ResponseWriter, r *http.Request) {
	var req models.PublishOutfitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "PublishOutfit", err)
		return
	}
	outfit, err := c.service.Publish(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Public)
	if err != nil {
		writeError(w, "PublishOutfit", err)
		return
	}
	writeJSON(w, http.StatusOK, outfit)
}

// Feed handles GET /api/feed?limit=
func (c *OutfitController) Feed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	outfits, err := c.service.Feed(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		writeError(w, "Feed", err)
		return
	}
	writeJSON(w, http.StatusOK, models.OutfitListResponse{Outfits: outfits})
}

// Like handles POST /api/feed/{id}/like
func (c *OutfitController) Like(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.Like(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Like", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likeCount": count, "likedByMe": true})
}

// Unlike handles DELETE /api/feed/{id}/like
func (c *OutfitController) Unlike(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.Unlike(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Unlike", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likeCount": count, "likedByMe": false})
}
