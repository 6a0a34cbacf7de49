package canvas

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"

	"armario-outfits/apperr"
)

// Compositor flattens a layer snapshot into a single PNG.
type Compositor struct {
	settings Settings
}

// NewCompositor creates a compositor for the given canvas settings.
func NewCompositor(settings Settings) *Compositor {
	return &Compositor{settings: settings.WithDefaults()}
}

// Render paints views in order (first = bottom) onto a fresh canvas.
// Layers whose image never loaded contribute nothing.
func (c *Compositor) Render(views []LayerView) (*image.NRGBA, error) {
	bg, err := parseHexColor(c.settings.Background)
	if err != nil {
		return nil, err
	}
	dst := imaging.New(c.settings.Width, c.settings.Height, bg)

	for _, v := range views {
		if v.img == nil || v.Width == 0 || v.Height == 0 {
			continue
		}
		l := Layer{Position: v.Position, Scale: v.Scale, width: v.Width, height: v.Height}
		rect := l.Rect(c.settings.Width, c.settings.Height)
		if rect.Empty() || !rect.Overlaps(dst.Bounds()) {
			continue
		}
		scaled := imaging.Resize(v.img, rect.Dx(), rect.Dy(), imaging.Lanczos)
		draw.Draw(dst, rect, scaled, scaled.Bounds().Min, draw.Over)
	}
	return dst, nil
}

// Capture renders views and encodes the result as PNG.
func (c *Compositor) Capture(views []LayerView) ([]byte, error) {
	img, err := c.Render(views)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeCaptureFailed, err, "failed to render canvas")
	}

	enc := png.Encoder{CompressionLevel: compressionFor(c.settings.Quality)}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, apperr.Wrap(apperr.CodeCaptureFailed, err, "failed to encode PNG")
	}
	if buf.Len() == 0 {
		return nil, apperr.New(apperr.CodeCaptureFailed, "capture produced no bytes")
	}
	return buf.Bytes(), nil
}

// compressionFor maps the 0..1 quality knob onto PNG compression effort.
// PNG is lossless, so quality only trades encode time for size.
func compressionFor(quality float64) png.CompressionLevel {
	switch {
	case quality >= 0.9:
		return png.BestCompression
	case quality >= 0.5:
		return png.DefaultCompression
	default:
		return png.BestSpeed
	}
}
