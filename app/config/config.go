package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"armario-outfits/canvas"
)

// Config holds every setting the server needs
type Config struct {
	Env         string
	Port        string
	LogLevel    string
	DatabaseURL string

	JWTSecret    string
	CookieName   string
	CookieSecure bool
	CORSOrigins  []string

	StorageBackend  string // drive or local
	CredentialsPath string
	DriveFolderID   string
	LocalStorageDir string
	PublicBaseURL   string

	RedisURL      string
	ThumbCacheDir string

	Canvas canvas.Settings
}

// LoadDotenv loads .env outside production. Values in .env override the
// process environment so a local file always wins during development.
func LoadDotenv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	envPath := ".env"
	if err := godotenv.Overload(envPath); err != nil {
		log.Warnf("⚠️  .env file not found at %s, using system environment variables", envPath)
		return
	}
	log.Infof("✓ Loaded environment variables from %s", envPath)
}

// Load reads configuration from the environment and the optional canvas
// TOML file named by CANVAS_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		Env:             getenv("ENV", "development"),
		Port:            strings.TrimPrefix(getenv("PORT", "8080"), ":"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CookieName:      getenv("COOKIE_NAME", "armario_auth"),
		CookieSecure:    os.Getenv("COOKIE_SECURE") == "true",
		StorageBackend:  strings.ToLower(getenv("STORAGE_BACKEND", "local")),
		CredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:   os.Getenv("DRIVE_FOLDER_ID"),
		LocalStorageDir: getenv("LOCAL_STORAGE_DIR", "uploads"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ThumbCacheDir:   getenv("THUMB_CACHE_DIR", "cache/images"),
	}
	cfg.PublicBaseURL = strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	for _, p := range strings.Split(getenv("CORS_ORIGIN", "http://localhost:8081"), ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	dsn, err := databaseURL()
	if err != nil {
		return nil, err
	}
	cfg.DatabaseURL = dsn

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
		}
		cfg.JWTSecret = "dev-secret"
		log.Warnf("⚠️  JWT_SECRET not set, using development secret")
	}

	switch cfg.StorageBackend {
	case "drive":
		if cfg.CredentialsPath == "" {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
		}
		if cfg.DriveFolderID == "" {
			return nil, fmt.Errorf("DRIVE_FOLDER_ID environment variable is not set")
		}
	case "local":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want drive or local)", cfg.StorageBackend)
	}

	settings, err := LoadCanvasSettings(os.Getenv("CANVAS_CONFIG"))
	if err != nil {
		return nil, err
	}
	cfg.Canvas = settings
	return cfg, nil
}

// LoadCanvasSettings decodes canvas tuning from a TOML file. An empty path
// returns the defaults.
//
//	width = 1080
//	height = 1350
//	min_scale = 0.2
//	max_scale = 0.8
//	session_ttl = "45m"
func LoadCanvasSettings(path string) (canvas.Settings, error) {
	var s canvas.Settings
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return canvas.Settings{}, fmt.Errorf("failed to read canvas config %s: %w", path, err)
		}
		if s.SessionTTLRaw != "" {
			if _, err := time.ParseDuration(s.SessionTTLRaw); err != nil {
				return canvas.Settings{}, fmt.Errorf("invalid session_ttl %q: %w", s.SessionTTLRaw, err)
			}
		}
	}
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return canvas.Settings{}, fmt.Errorf("invalid canvas config: %w", err)
	}
	return s, nil
}

// databaseURL returns DATABASE_URL or builds a DSN from the DB_* variables
func databaseURL() (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	port := getenv("DB_PORT", "5432")
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid DB_PORT %q", port)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), dbname, getenv("DB_SSLMODE", "disable")), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
