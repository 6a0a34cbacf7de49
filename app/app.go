package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"armario-outfits/app/config"
	"armario-outfits/app/controller"
	"armario-outfits/app/router"
	"armario-outfits/canvas"
	"armario-outfits/db"
	"armario-outfits/repository"
	"armario-outfits/service"
)

// App is the wired application
type App struct {
	Handler http.Handler
	Canvas  *canvas.Manager

	conn  *sql.DB
	cache service.Cache
}

// Initialize connects to the database and storage and builds the handler
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	storage, filesDir, err := newStorage(ctx, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}

	cache, err := newCache(ctx, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Initialize repositories
	clothingRepo := repository.NewClothingRepository(conn)
	outfitRepo := repository.NewOutfitRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	images := service.NewImageLoader(storage, cache)

	manager := canvas.NewManager(cfg.Canvas, canvas.Deps{
		Catalog: service.NewCatalogService(clothingRepo, userRepo),
		Images:  images,
		Storage: storage,
		Outfits: outfitRepo,
	})

	// Create controllers
	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(authService, cfg.CookieName, cfg.CookieSecure),
		Clothing: controller.NewClothingController(service.NewClothingService(clothingRepo, storage)),
		Outfit:   controller.NewOutfitController(service.NewOutfitService(outfitRepo, storage)),
		Profile:  controller.NewProfileController(service.NewProfileService(userRepo, storage)),
		Canvas:   controller.NewCanvasController(manager, images),
	}

	handler := router.SetupRoutes(controllers, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		CookieName:  cfg.CookieName,
		Tokens:      authService,
		FilesDir:    filesDir,
	})

	return &App{Handler: handler, Canvas: manager, conn: conn, cache: cache}, nil
}

// Close releases the database pool and the thumbnail cache
func (a *App) Close() {
	if err := a.cache.Close(); err != nil {
		log.Warnf("⚠️  Error closing cache: %v", err)
	}
	if err := a.conn.Close(); err != nil {
		log.Warnf("⚠️  Error closing database: %v", err)
	}
	log.Info("✓ Database connection closed")
}

func newStorage(ctx context.Context, cfg *config.Config) (service.Storage, string, error) {
	switch cfg.StorageBackend {
	case "drive":
		ds, err := service.NewDriveStorage(ctx, cfg.CredentialsPath, cfg.DriveFolderID)
		if err != nil {
			return nil, "", err
		}
		log.Infof("✓ Using Google Drive storage (folder %s)", cfg.DriveFolderID)
		return ds, "", nil
	default:
		ls, err := service.NewLocalStorage(cfg.LocalStorageDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		log.Infof("✓ Using local storage at %s", cfg.LocalStorageDir)
		return ls, ls.Dir(), nil
	}
}

func newCache(ctx context.Context, cfg *config.Config) (service.Cache, error) {
	if cfg.RedisURL != "" {
		return service.NewRedisCache(ctx, cfg.RedisURL)
	}
	log.Infof("✓ Caching thumbnails in %s", cfg.ThumbCacheDir)
	return service.NewFileCache(cfg.ThumbCacheDir)
}
