// Package canvas implements the outfit composition model: image layers that
// are dragged and pinched in place, the ordered layer stack that defines
// paint order, the compositor that flattens the stack into a PNG, and the
// editing session that ties them to the submit pipeline.
package canvas

import (
	"image"
	"math"
)

// ProfileLayerID is the id reserved for the profile-picture pseudo-layer.
const ProfileLayerID = "profile"

// Point is a 2D offset in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// GesturePhase is the lifecycle stage of a drag or pinch update.
type GesturePhase string

const (
	PhaseBegin  GesturePhase = "begin"
	PhaseUpdate GesturePhase = "update"
	PhaseEnd    GesturePhase = "end"
)

// Valid reports whether ph is one of the known phases.
func (ph GesturePhase) Valid() bool {
	return ph == PhaseBegin || ph == PhaseUpdate || ph == PhaseEnd
}

// Layer is one positionable, scalable image on the canvas.
// Position is an offset from the layer's default (centered) placement and
// Scale is a fraction of the image's intrinsic size.
//
// Layer methods are not safe for concurrent use; the owning Stack
// serialises access.
type Layer struct {
	ID          string
	URI         string
	DisplayName string
	Position    Point
	Scale       float64

	img    image.Image
	width  int
	height int

	dragging   bool
	dragActive bool
	dragOrigin Point

	pinching   bool
	pinchStart float64
}

// NewLayer returns a layer at the default placement with the given scale.
func NewLayer(id, uri, displayName string, scale float64) *Layer {
	return &Layer{ID: id, URI: uri, DisplayName: displayName, Scale: scale}
}

// SetImage records the decoded image and its intrinsic size. A nil image
// leaves the layer with zero extent.
func (l *Layer) SetImage(img image.Image) {
	l.img = img
	if img == nil {
		l.width, l.height = 0, 0
		return
	}
	b := img.Bounds()
	l.width, l.height = b.Dx(), b.Dy()
}

// Image returns the decoded image, or nil if it never loaded.
func (l *Layer) Image() image.Image { return l.img }

// IntrinsicSize returns the image's pixel dimensions, zero until resolved.
func (l *Layer) IntrinsicSize() (int, int) { return l.width, l.height }

// Loaded reports whether the image resolved.
func (l *Layer) Loaded() bool { return l.img != nil }

// IsProfile reports whether l is the profile pseudo-layer.
func (l *Layer) IsProfile() bool { return l.ID == ProfileLayerID }

// BeginDrag anchors a new drag at the current position.
func (l *Layer) BeginDrag() {
	l.dragging = true
	l.dragActive = false
	l.dragOrigin = l.Position
}

// UpdateDrag applies the total translation since the drag began. Updates are
// ignored until the translation exceeds threshold, after which every update
// applies. An update without BeginDrag starts a drag implicitly.
func (l *Layer) UpdateDrag(translation Point, threshold float64) {
	if !l.dragging {
		l.BeginDrag()
	}
	if !l.dragActive {
		if math.Hypot(translation.X, translation.Y) < threshold {
			return
		}
		l.dragActive = true
	}
	l.Position = l.dragOrigin.Add(translation)
}

// EndDrag commits the current position.
func (l *Layer) EndDrag() {
	l.dragging = false
	l.dragActive = false
}

// BeginPinch anchors a new pinch at the current scale.
func (l *Layer) BeginPinch() {
	l.pinching = true
	l.pinchStart = l.Scale
}

// UpdatePinch sets the scale to the pinch-start scale multiplied by factor,
// clamped to [minScale, maxScale].
func (l *Layer) UpdatePinch(factor, minScale, maxScale float64) {
	if !l.pinching {
		l.BeginPinch()
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	l.Scale = clamp(l.pinchStart*factor, minScale, maxScale)
}

// EndPinch commits the current scale.
func (l *Layer) EndPinch() {
	l.pinching = false
}

// Rect returns where the layer paints on a canvas of the given size:
// scaled intrinsic size, centered, then offset by Position.
func (l *Layer) Rect(canvasW, canvasH int) image.Rectangle {
	w := int(math.Round(float64(l.width) * l.Scale))
	h := int(math.Round(float64(l.height) * l.Scale))
	x := int(math.Round(float64(canvasW-w)/2 + l.Position.X))
	y := int(math.Round(float64(canvasH-h)/2 + l.Position.Y))
	return image.Rect(x, y, x+w, y+h)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
