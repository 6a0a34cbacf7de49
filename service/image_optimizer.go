package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"armario-outfits/apperr"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 80
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 1200
)

// Image sizes accepted by OptimizeImage
const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"
)

// DecodeImage decodes PNG, JPEG or WebP bytes and applies the EXIF
// orientation so phone photos come out upright
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, err, "unsupported image")
	}
	return img, nil
}

// OptimizeImage converts a decoded image to JPEG, shrinking it to fit the
// size's max dimension. size is "thumb" or "medium".
func OptimizeImage(img image.Image, size string) ([]byte, error) {
	var maxDim int
	var quality int

	switch size {
	case SizeThumb:
		maxDim = maxSizeThumb
		quality = qualityThumb
	case SizeMedium:
		maxDim = maxSizeMedium
		quality = qualityMedium
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
		log.Warnf("⚠️  Unknown size '%s', defaulting to medium", size)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	resized := img
	if width > maxDim || height > maxDim {
		log.Debugf("🔄 Resizing image: %dx%d to fit %d", width, height, maxDim)
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	// JPEG has no alpha; flatten transparent cut-outs onto white
	flat := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), image.White)
	flat = imaging.Overlay(flat, resized, image.Point{}, 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Debugf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}

// PrepareLayerImage shrinks an image to the medium size for use on the
// canvas. Opaque photos become JPEG; cut-outs with transparency stay PNG.
func PrepareLayerImage(img image.Image) (data []byte, contentType string, ext string, err error) {
	nrgba := imaging.Clone(img)
	if !nrgba.Opaque() {
		fitted := imaging.Fit(nrgba, maxSizeMedium, maxSizeMedium, imaging.Lanczos)
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		if err := enc.Encode(&buf, fitted); err != nil {
			return nil, "", "", fmt.Errorf("failed to encode to PNG: %w", err)
		}
		return buf.Bytes(), "image/png", ".png", nil
	}
	data, err = OptimizeImage(nrgba, SizeMedium)
	if err != nil {
		return nil, "", "", err
	}
	return data, "image/jpeg", ".jpg", nil
}
