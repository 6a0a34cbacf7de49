package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"armario-outfits/apperr"
	"armario-outfits/canvas"
	"armario-outfits/models"
	"armario-outfits/service"
)

// openLoadWait bounds how long opening a canvas waits for layer images
// before answering with whatever has loaded
const openLoadWait = 5 * time.Second

// CanvasController handles HTTP requests for outfit composition sessions
type CanvasController struct {
	manager *canvas.Manager
	thumbs  service.ThumbnailerInterface
}

// NewCanvasController creates a new CanvasController
func NewCanvasController(manager *canvas.Manager, thumbs service.ThumbnailerInterface) *CanvasController {
	return &CanvasController{manager: manager, thumbs: thumbs}
}

func (c *CanvasController) session(w http.ResponseWriter, r *http.Request, handler string) (*canvas.Session, bool) {
	s, err := c.manager.Get(UserID(r.Context()), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, handler, err)
		return nil, false
	}
	return s, true
}

// Open handles POST /api/canvas
func (c *CanvasController) Open(w http.ResponseWriter, r *http.Request) {
	log.Infof("📥 OpenCanvas: Received %s request to %s", r.Method, r.URL.Path)

	var req models.OpenCanvasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "OpenCanvas", err)
		return
	}
	s, err := c.manager.Open(r.Context(), UserID(r.Context()), req.ClothingIDs)
	if err != nil {
		writeError(w, "OpenCanvas", err)
		return
	}

	waitCtx, cancel := context.WithTimeout(r.Context(), openLoadWait)
	defer cancel()
	if err := s.WaitLoaded(waitCtx); err != nil {
		log.Warnf("⚠️  OpenCanvas: %s still loading images: %v", s.ID, err)
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

// Get handles GET /api/canvas/{sid}
func (c *CanvasController) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "GetCanvas")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// Drag handles POST /api/canvas/{sid}/layers/{lid}/drag
func (c *CanvasController) Drag(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "Drag")
	if !ok {
		return
	}
	var req models.DragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Drag", err)
		return
	}
	view, err := s.Drag(chi.URLParam(r, "lid"), canvas.GesturePhase(req.Phase), canvas.Point{X: req.DX, Y: req.DY})
	if err != nil {
		writeError(w, "Drag", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Pinch handles POST /api/canvas/{sid}/layers/{lid}/pinch
func (c *CanvasController) Pinch(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "Pinch")
	if !ok {
		return
	}
	var req models.PinchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Pinch", err)
		return
	}
	view, err := s.Pinch(chi.URLParam(r, "lid"), canvas.GesturePhase(req.Phase), req.Factor)
	if err != nil {
		writeError(w, "Pinch", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Reorder handles PUT /api/canvas/{sid}/order
func (c *CanvasController) Reorder(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "Reorder")
	if !ok {
		return
	}
	var req models.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Reorder", err)
		return
	}
	if _, err := s.Reorder(req.Order); err != nil {
		writeError(w, "Reorder", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// SetProfile handles PUT /api/canvas/{sid}/profile
func (c *CanvasController) SetProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "SetProfile")
	if !ok {
		return
	}
	var req models.ProfileToggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SetProfile", err)
		return
	}
	if err := s.SetProfileVisible(req.Visible); err != nil {
		writeError(w, "SetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// Capture handles GET /api/canvas/{sid}/capture
func (c *CanvasController) Capture(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "Capture")
	if !ok {
		return
	}
	data, err := s.Capture()
	if err != nil {
		writeError(w, "Capture", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Thumbnail handles GET /api/canvas/{sid}/layers/{lid}/thumbnail
func (c *CanvasController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	s, ok := c.session(w, r, "Thumbnail")
	if !ok {
		return
	}
	lid := chi.URLParam(r, "lid")
	uri := ""
	for _, l := range s.Snapshot().Layers {
		if l.ID == lid {
			uri = l.URI
			break
		}
	}
	if uri == "" {
		writeError(w, "Thumbnail", apperr.New(apperr.CodeLayerNotFound, "layer %s not found", lid))
		return
	}

	data, err := c.thumbs.Thumbnail(r.Context(), uri)
	if err != nil {
		writeError(w, "Thumbnail", err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Submit handles POST /api/canvas/{sid}/submit
func (c *CanvasController) Submit(w http.ResponseWriter, r *http.Request) {
	log.Infof("📥 SubmitCanvas: Received %s request to %s", r.Method, r.URL.Path)

	s, ok := c.session(w, r, "SubmitCanvas")
	if !ok {
		return
	}
	var req models.SubmitOutfitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SubmitCanvas", err)
		return
	}
	outfit, err := s.Submit(r.Context(), req.ItemName)
	if err != nil {
		writeError(w, "SubmitCanvas", err)
		return
	}
	log.Infof("✅ SubmitCanvas: outfit %s saved with items [%s]", outfit.ID, strings.Join(outfit.ClothingIDs, ", "))
	writeJSON(w, http.StatusCreated, outfit)
}

// Close handles DELETE /api/canvas/{sid}
func (c *CanvasController) Close(w http.ResponseWriter, r *http.Request) {
	if err := c.manager.Close(UserID(r.Context()), chi.URLParam(r, "sid")); err != nil {
		writeError(w, "CloseCanvas", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
