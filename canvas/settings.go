package canvas

import (
	"fmt"
	"image/color"
	"strings"
	"time"
)

// Settings tunes the canvas. Zero fields fall back to DefaultSettings.
type Settings struct {
	Width         int           `toml:"width"`
	Height        int           `toml:"height"`
	Background    string        `toml:"background"`
	InitialScale  float64       `toml:"initial_scale"`
	MinScale      float64       `toml:"min_scale"`
	MaxScale      float64       `toml:"max_scale"`
	DragThreshold float64       `toml:"drag_threshold"`
	Quality       float64       `toml:"quality"`
	SessionTTL    time.Duration `toml:"-"`
	SessionTTLRaw string        `toml:"session_ttl"`
}

// DefaultSettings returns the product defaults: scale starts at 0.5 of the
// intrinsic size and is clamped to [0.2, 0.8].
func DefaultSettings() Settings {
	return Settings{
		Width:         1080,
		Height:        1350,
		Background:    "#ffffff",
		InitialScale:  0.5,
		MinScale:      0.2,
		MaxScale:      0.8,
		DragThreshold: 2,
		Quality:       0.85,
		SessionTTL:    30 * time.Minute,
	}
}

// WithDefaults fills zero fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.Background == "" {
		s.Background = d.Background
	}
	if s.InitialScale <= 0 {
		s.InitialScale = d.InitialScale
	}
	if s.MinScale <= 0 {
		s.MinScale = d.MinScale
	}
	if s.MaxScale <= 0 {
		s.MaxScale = d.MaxScale
	}
	if s.DragThreshold <= 0 {
		s.DragThreshold = d.DragThreshold
	}
	if s.Quality <= 0 || s.Quality > 1 {
		s.Quality = d.Quality
	}
	if s.SessionTTL <= 0 {
		if ttl, err := time.ParseDuration(s.SessionTTLRaw); err == nil && ttl > 0 {
			s.SessionTTL = ttl
		} else {
			s.SessionTTL = d.SessionTTL
		}
	}
	s.InitialScale = clamp(s.InitialScale, s.MinScale, s.MaxScale)
	return s
}

// Validate checks the scale range.
func (s Settings) Validate() error {
	if s.MinScale > s.MaxScale {
		return fmt.Errorf("min_scale %.2f exceeds max_scale %.2f", s.MinScale, s.MaxScale)
	}
	if _, err := parseHexColor(s.Background); err != nil {
		return err
	}
	return nil
}

// parseHexColor parses "#rrggbb" or "#rrggbbaa". "transparent" yields a
// fully transparent color.
func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	var c color.NRGBA
	c.A = 0xff
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("bad length")
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	return c, nil
}
