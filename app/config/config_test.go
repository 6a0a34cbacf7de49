package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCanvasSettingsDefaults(t *testing.T) {
	s, err := LoadCanvasSettings("")
	if err != nil {
		t.Fatal(err)
	}
	if s.InitialScale != 0.5 || s.MinScale != 0.2 || s.MaxScale != 0.8 {
		t.Errorf("scale defaults = %v/%v/%v", s.InitialScale, s.MinScale, s.MaxScale)
	}
	if s.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", s.SessionTTL)
	}
}

func TestLoadCanvasSettingsFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.toml")
	body := "width = 640\nheight = 800\nbackground = \"#000000\"\nmax_scale = 0.9\nsession_ttl = \"5m\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadCanvasSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 640 || s.Height != 800 || s.MaxScale != 0.9 || s.MinScale != 0.2 {
		t.Errorf("settings = %+v", s)
	}
	if s.SessionTTL != 5*time.Minute {
		t.Errorf("SessionTTL = %v", s.SessionTTL)
	}
}

func TestLoadCanvasSettingsRejectsBadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.toml")
	if err := os.WriteFile(path, []byte("min_scale = 0.9\nmax_scale = 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCanvasSettings(path); err == nil || !strings.Contains(err.Error(), "min_scale") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadBuildsDSNFromParts(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_USER", "armario")
	t.Setenv("DB_NAME", "wardrobe")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("CANVAS_CONFIG", "")
	t.Setenv("CORS_ORIGIN", "http://a.test/, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	want := "host=db.local port=5432 user=armario password=secret dbname=wardrobe sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://a.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresDriveSettings(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/wardrobe")
	t.Setenv("STORAGE_BACKEND", "drive")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without drive credentials")
	}
}
