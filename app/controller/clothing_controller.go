package controller

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"armario-outfits/models"
	"armario-outfits/service"
)

// ClothingController handles HTTP requests for clothing items
type ClothingController struct {
	service service.ClothingServiceInterface
}

// NewClothingController creates a new ClothingController
func NewClothingController(svc service.ClothingServiceInterface) *ClothingController {
	return &ClothingController{service: svc}
}

// Create handles POST /api/clothing
// Multipart form: photo (file), name, category, size, color, brand
func (c *ClothingController) Create(w http.ResponseWriter, r *http.Request) {
	log.Infof("📥 CreateClothing: Received %s request to %s", r.Method, r.URL.Path)

	photo, err := readUpload(w, r, "photo")
	if err != nil {
		writeError(w, "CreateClothing", err)
		return
	}
	req := models.CreateClothingItemRequest{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Size:     r.FormValue("size"),
		Color:    r.FormValue("color"),
		Brand:    r.FormValue("brand"),
	}

	item, err := c.service.Create(r.Context(), UserID(r.Context()), req, photo)
	if err != nil {
		writeError(w, "CreateClothing", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/clothing
// Query params: status, category, color, size, brand, q, sort
func (c *ClothingController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ClothingFilter{
		Status:   strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Category: strings.TrimSpace(q.Get("category")),
		Color:    strings.TrimSpace(q.Get("color")),
		Size:     strings.TrimSpace(q.Get("size")),
		Brand:    strings.TrimSpace(q.Get("brand")),
		Query:    strings.TrimSpace(q.Get("q")),
		Sort:     strings.ToLower(strings.TrimSpace(q.Get("sort"))),
	}
	log.Debugf("🔍 ListClothing: filter=%+v", filter)

	items, err := c.service.List(r.Context(), UserID(r.Context()), filter)
	if err != nil {
		writeError(w, "ListClothing", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Get handles GET /api/clothing/{id}
func (c *ClothingController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, "GetClothing", err)
		return
	}
	item, err := c.service.Get(r.Context(), UserID(r.Context()), id)
	if err != nil {
		writeError(w, "GetClothing", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PATCH /api/clothing/{id}
func (c *ClothingController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, "UpdateClothing", err)
		return
	}
	var req models.UpdateClothingItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "UpdateClothing", err)
		return
	}
	item, err := c.service.Update(r.Context(), UserID(r.Context()), id, req)
	if err != nil {
		writeError(w, "UpdateClothing", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/clothing/{id}
func (c *ClothingController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, "DeleteClothing", err)
		return
	}
	if err := c.service.Delete(r.Context(), UserID(r.Context()), id); err != nil {
		writeError(w, "DeleteClothing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wear handles POST /api/clothing/{id}/wear
func (c *ClothingController) Wear(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, "WearClothing", err)
		return
	}
	item, err := c.service.Wear(r.Context(), UserID(r.Context()), id)
	if err != nil {
		writeError(w, "WearClothing", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SetStatus handles POST /api/clothing/status
func (c *ClothingController) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.SetStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SetClothingStatus", err)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))

	changed, err := c.service.SetStatus(r.Context(), UserID(r.Context()), req)
	if err != nil {
		writeError(w, "SetClothingStatus", err)
		return
	}
	log.Infof("✅ SetClothingStatus: %d items -> %s", changed, req.Status)
	writeJSON(w, http.StatusOK, map[string]any{"updated": changed, "status": req.Status})
}
