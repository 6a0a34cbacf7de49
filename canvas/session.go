package canvas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"armario-outfits/apperr"
	"armario-outfits/models"
)

// SubmissionState is the state of the submit pipeline.
type SubmissionState string

const (
	StateIdle      SubmissionState = "idle"
	StateCapturing SubmissionState = "capturing"
	StateSubmitted SubmissionState = "submitted"
	StateFailed    SubmissionState = "failed"
)

// Catalog resolves clothing item ids and the user's profile picture.
type Catalog interface {
	ResolveItems(ctx context.Context, uid string, ids []string) ([]models.ResolvedItem, error)
	ProfileImage(ctx context.Context, uid string) (string, error)
}

// ImageLoader fetches and decodes an image by URI.
type ImageLoader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
}

// ObjectStorage stores raw bytes under a path and returns a public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// OutfitWriter persists outfit records. Inserting twice with the same
// owner and idempotency key must return the first stored record unchanged.
// OutfitByKey reports a CodeNotFound error when nothing is stored under key.
type OutfitWriter interface {
	InsertOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, error)
	OutfitByKey(ctx context.Context, ownerID, key string) (*models.Outfit, error)
}

// blob is an uploaded raster that no stored outfit is known to reference yet.
type blob struct {
	path string
	url  string
}

// Deps are the collaborators a session talks to.
type Deps struct {
	Catalog Catalog
	Images  ImageLoader
	Storage ObjectStorage
	Outfits OutfitWriter
	Now     func() time.Time
}

// State is a point-in-time view of a session.
type State struct {
	ID             string          `json:"id"`
	ProfileVisible bool            `json:"profileVisible"`
	ProfileAvail   bool            `json:"profileAvailable"`
	Submission     SubmissionState `json:"submission"`
	LastError      string          `json:"lastError,omitempty"`
	OrderVersion   uint64          `json:"orderVersion"`
	Layers         []LayerView     `json:"layers"`
	Order          []OrderEntry    `json:"order"`
	Contributing   []string        `json:"contributing"`
	Loading        bool            `json:"loading"`
}

// Session is one visit to the canvas: it owns the layer stack, the profile
// toggle and the submission state machine.
type Session struct {
	ID  string
	UID string

	settings   Settings
	deps       Deps
	stack      *Stack
	list       *OrderList
	compositor *Compositor

	ctx    context.Context
	cancel context.CancelFunc
	loaded chan struct{}

	mu             sync.Mutex
	profileVisible bool
	profileURI     string
	profileImg     image.Image
	state          SubmissionState
	lastErr        string
	idemKey        string
	pending        []blob
	generation     uint64
	closed         bool
	touched        time.Time
}

// Open resolves the requested items and the profile picture concurrently,
// seeds the stack with one layer per resolved item, and starts loading
// layer images in the background. Resolution failures degrade to a partial
// or empty stack; they are logged, never returned.
func Open(ctx context.Context, uid string, itemIDs []string, settings Settings, deps Deps) *Session {
	settings = settings.WithDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}

	var (
		items      []models.ResolvedItem
		profileURI string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolved, err := deps.Catalog.ResolveItems(gctx, uid, itemIDs)
		if err != nil {
			log.Warnf("⚠️  Canvas: failed to resolve %d items for %s: %v", len(itemIDs), uid, err)
			return nil
		}
		items = resolved
		return nil
	})
	g.Go(func() error {
		uri, err := deps.Catalog.ProfileImage(gctx, uid)
		if err != nil {
			log.Warnf("⚠️  Canvas: failed to fetch profile image for %s: %v", uid, err)
			return nil
		}
		profileURI = uri
		return nil
	})
	_ = g.Wait()

	layers := make([]*Layer, 0, len(items))
	for _, it := range items {
		if it.ID == ProfileLayerID {
			continue
		}
		layers = append(layers, NewLayer(it.ID, it.ImageURI, it.DisplayName, settings.InitialScale))
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		ID:         uuid.NewString(),
		UID:        uid,
		settings:   settings,
		deps:       deps,
		stack:      NewStack(layers),
		compositor: NewCompositor(settings),
		ctx:        sctx,
		cancel:     cancel,
		loaded:     make(chan struct{}),
		profileURI: profileURI,
		state:      StateIdle,
		touched:    deps.Now(),
	}
	s.list = NewOrderList(s.stack)

	log.Infof("🧩 Canvas %s opened for %s: %d/%d items resolved, profile=%v",
		s.ID, uid, len(layers), len(itemIDs), profileURI != "")

	go s.loadImages(layers)
	return s
}

// loadImages looks up each layer's image once. A failed load leaves the
// layer with zero extent; it is not retried.
func (s *Session) loadImages(layers []*Layer) {
	defer close(s.loaded)
	if s.deps.Images == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, l := range layers {
		id, uri := l.ID, l.URI
		g.Go(func() error {
			img, err := s.deps.Images.Load(s.ctx, uri)
			if err != nil {
				log.Warnf("⚠️  Canvas %s: image for layer %s failed to load: %v", s.ID, id, err)
				return nil
			}
			_ = s.stack.With(id, func(l *Layer) { l.SetImage(img) })
			return nil
		})
	}
	if s.profileURI != "" {
		g.Go(func() error {
			img, err := s.deps.Images.Load(s.ctx, s.profileURI)
			if err != nil {
				log.Warnf("⚠️  Canvas %s: profile image failed to load: %v", s.ID, err)
				return nil
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			s.profileImg = img
			_ = s.stack.With(ProfileLayerID, func(l *Layer) { l.SetImage(img) })
			return nil
		})
	}
	_ = g.Wait()
}

// WaitLoaded blocks until every initial image lookup has finished or ctx is done.
func (s *Session) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stack returns the session's layer stack.
func (s *Session) Stack() *Stack { return s.stack }

// Snapshot returns the current session state. Reading counts as activity.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.touched = s.deps.Now()
	}
	loading := true
	select {
	case <-s.loaded:
		loading = false
	default:
	}
	return State{
		ID:             s.ID,
		ProfileVisible: s.profileVisible,
		ProfileAvail:   s.profileURI != "",
		Submission:     s.state,
		LastError:      s.lastErr,
		OrderVersion:   s.stack.Version(),
		Layers:         s.stack.Snapshot(),
		Order:          s.list.Entries(),
		Contributing:   s.list.Contributing(),
		Loading:        loading,
	}
}

// Drag applies one drag gesture event to a layer. Update events carry the
// total translation since begin; end commits without moving.
func (s *Session) Drag(layerID string, phase GesturePhase, translation Point) (LayerView, error) {
	return s.gesture(layerID, phase, func(l *Layer) {
		switch phase {
		case PhaseBegin:
			l.BeginDrag()
		case PhaseUpdate:
			l.UpdateDrag(translation, s.settings.DragThreshold)
		case PhaseEnd:
			l.EndDrag()
		}
	})
}

// Pinch applies one pinch update to a layer.
func (s *Session) Pinch(layerID string, phase GesturePhase, factor float64) (LayerView, error) {
	return s.gesture(layerID, phase, func(l *Layer) {
		switch phase {
		case PhaseBegin:
			l.BeginPinch()
		case PhaseUpdate:
			l.UpdatePinch(factor, s.settings.MinScale, s.settings.MaxScale)
		case PhaseEnd:
			l.EndPinch()
		}
	})
}

func (s *Session) gesture(layerID string, phase GesturePhase, fn func(*Layer)) (LayerView, error) {
	if !phase.Valid() {
		return LayerView{}, apperr.New(apperr.CodeInvalidInput, "unknown gesture phase %q", phase)
	}
	if err := s.touch(); err != nil {
		return LayerView{}, err
	}
	var view LayerView
	err := s.stack.With(layerID, func(l *Layer) {
		fn(l)
		w, h := l.IntrinsicSize()
		view = LayerView{
			ID: l.ID, URI: l.URI, DisplayName: l.DisplayName,
			Position: l.Position, Scale: l.Scale, Width: w, Height: h,
			Loaded: l.Loaded(), IsProfile: l.IsProfile(),
		}
	})
	return view, err
}

// Reorder replaces the paint order and returns the contributing projection.
func (s *Session) Reorder(order []string) ([]string, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	return s.list.Reorder(order)
}

// SetProfileVisible toggles the profile layer. Turning it on requires a
// profile image and prepends the layer; turning it off removes it.
// Requests for the current state are no-ops.
func (s *Session) SetProfileVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.New(apperr.CodeSessionClosed, "canvas session is closed")
	}
	s.touched = s.deps.Now()

	if visible == s.profileVisible {
		return nil
	}
	if visible {
		if s.profileURI == "" {
			return apperr.New(apperr.CodeNoProfile, "no profile picture available")
		}
		l := NewLayer(ProfileLayerID, s.profileURI, "Profile", s.settings.InitialScale)
		l.SetImage(s.profileImg)
		if err := s.stack.AddFront(l); err != nil {
			return err
		}
		s.profileVisible = true
		return nil
	}
	if err := s.stack.Remove(ProfileLayerID); err != nil {
		return err
	}
	s.profileVisible = false
	return nil
}

// Capture flattens whatever the stack holds right now.
func (s *Session) Capture() ([]byte, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	return s.compositor.Capture(s.stack.Snapshot())
}

// Submit runs the submit pipeline: validate, capture, upload, insert.
//
// Gates are checked in order and each rejects without touching the network:
// a blank name, no contributing layers, a failed capture. An upload failure
// skips the insert. When the insert fails the key is looked up: a stored
// record means the insert committed and counts as success; no record means
// the blob is deleted; a failed lookup keeps the blob until a retry tells
// which upload the record references. A retry after failure reuses the same
// idempotency key and returns the stored record; a success clears the key
// so the next submit produces a new record.
func (s *Session) Submit(ctx context.Context, itemName string) (*models.Outfit, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeSessionClosed, "canvas session is closed")
	}
	if s.state == StateCapturing {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeBusy, "a submit is already in progress")
	}
	s.touched = s.deps.Now()

	name := strings.TrimSpace(itemName)
	if name == "" {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeInvalidName, "outfit name is required")
	}
	views := s.stack.Snapshot()
	var clothingIDs []string
	for _, v := range views {
		if !v.IsProfile {
			clothingIDs = append(clothingIDs, v.ID)
		}
	}
	if len(clothingIDs) == 0 {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeNoItems, "add at least one clothing item to the outfit")
	}

	raster, err := s.compositor.Capture(views)
	if err != nil {
		s.mu.Unlock()
		log.Errorf("❌ Canvas %s: capture failed: %v", s.ID, err)
		return nil, err
	}

	prev := s.state
	s.state = StateCapturing
	s.lastErr = ""
	if s.idemKey == "" {
		s.idemKey = uuid.NewString()
	}
	key := s.idemKey
	gen := s.generation
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	log.Infof("📤 Canvas %s: submitting %q with %d items (prev state %s)", s.ID, name, len(clothingIDs), prev)

	path := RasterPath(s.UID, raster, key)
	url, err := s.deps.Storage.Upload(ctx, path, raster, "image/png")
	if err != nil {
		log.Errorf("❌ Canvas %s: upload failed: %v", s.ID, err)
		return nil, s.fail(gen, apperr.Wrap(apperr.CodeUploadFailed, err, "failed to upload outfit image"))
	}

	outfit := &models.Outfit{
		OwnerID:        s.UID,
		ItemName:       name,
		Image:          url,
		ClothingIDs:    clothingIDs,
		DateUploaded:   s.deps.Now().UTC(),
		IdempotencyKey: key,
	}
	stored, err := s.deps.Outfits.InsertOutfit(ctx, outfit)
	if err != nil {
		// The insert may have committed before the error; ask before cleaning up.
		found, lerr := s.deps.Outfits.OutfitByKey(context.WithoutCancel(ctx), s.UID, key)
		switch {
		case lerr == nil:
			log.Warnf("⚠️  Canvas %s: insert reported %v but outfit %s is stored", s.ID, err, found.ID)
			stored = found
		case apperr.Is(lerr, apperr.CodeNotFound):
			log.Errorf("❌ Canvas %s: outfit insert failed, removing %s: %v", s.ID, path, err)
			s.releaseBlobs(ctx, "", blob{path: path, url: url})
			return nil, s.fail(gen, apperr.Wrap(apperr.CodePersistFailed, err, "failed to save outfit"))
		default:
			log.Errorf("❌ Canvas %s: outfit insert outcome unknown, keeping %s for the retry: %v (lookup: %v)", s.ID, path, err, lerr)
			s.mu.Lock()
			s.pending = appendBlob(s.pending, blob{path: path, url: url})
			s.mu.Unlock()
			return nil, s.fail(gen, apperr.Wrap(apperr.CodePersistFailed, err, "failed to save outfit"))
		}
	}
	s.releaseBlobs(ctx, stored.Image, blob{path: path, url: url})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.generation != gen {
		log.Warnf("⚠️  Canvas %s: submit finished after close, dropping state update", s.ID)
		return nil, apperr.New(apperr.CodeSessionClosed, "canvas session closed during submit")
	}
	s.state = StateSubmitted
	s.idemKey = ""
	log.Infof("✅ Canvas %s: outfit %s saved", s.ID, stored.ID)
	return stored, nil
}

// releaseBlobs deletes the current upload and every pending one from earlier
// attempts under the same key, except the blob at keepURL.
func (s *Session) releaseBlobs(ctx context.Context, keepURL string, current blob) {
	s.mu.Lock()
	blobs := appendBlob(s.pending, current)
	s.pending = nil
	s.mu.Unlock()

	for _, b := range blobs {
		if b.url == keepURL {
			continue
		}
		if err := s.deps.Storage.Delete(context.WithoutCancel(ctx), b.path); err != nil {
			log.Errorf("❌ Canvas %s: compensating delete of %s failed: %v", s.ID, b.path, err)
		}
	}
}

func appendBlob(blobs []blob, b blob) []blob {
	for _, have := range blobs {
		if have.path == b.path {
			return blobs
		}
	}
	return append(blobs, b)
}

// fail records a failed submit unless the session moved on meanwhile.
func (s *Session) fail(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.generation != gen {
		return apperr.Wrap(apperr.CodeSessionClosed, err, "canvas session closed during submit")
	}
	s.state = StateFailed
	s.lastErr = apperr.Message(err)
	return err
}

// Close abandons the session: in-flight loads and submits are cancelled and
// any late result is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.cancel()
	if len(s.pending) > 0 {
		log.Warnf("⚠️  Canvas %s: closed with %d uploads of an unresolved submit", s.ID, len(s.pending))
	}
}

// IdleSince returns the time of the last interaction.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.New(apperr.CodeSessionClosed, "canvas session is closed")
	}
	s.touched = s.deps.Now()
	return nil
}

// RasterPath names an outfit raster by owner, content hash and submit key.
func RasterPath(uid string, raster []byte, key string) string {
	sum := sha256.Sum256(raster)
	return fmt.Sprintf("outfits/%s/%s-%s.png", uid, hex.EncodeToString(sum[:8]), key)
}
