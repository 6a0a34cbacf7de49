package router

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"armario-outfits/app/controller"
)

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Auth     *controller.AuthController
	Clothing *controller.ClothingController
	Outfit   *controller.OutfitController
	Profile  *controller.ProfileController
	Canvas   *controller.CanvasController
}

// Options configures cross-cutting router behaviour
type Options struct {
	CORSOrigins []string
	CookieName  string
	Tokens      controller.TokenParser
	// FilesDir, when set, is served at /files/ for the local storage backend
	FilesDir string
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request with its id, status and duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"id", middleware.GetReqID(r.Context()),
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Millisecond),
		}
		switch {
		case status >= 500:
			log.Error(r.Method+" "+r.URL.Path, fields...)
		case status >= 400:
			log.Warn(r.Method+" "+r.URL.Path, fields...)
		default:
			log.Info(r.Method+" "+r.URL.Path, fields...)
		}
	})
}

// SetupRoutes builds the HTTP handler for the API
func SetupRoutes(controllers *Controllers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Ping endpoint
	r.Get("/ping", pingHandler)

	if opts.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(opts.FilesDir))))
	}

	// Auth routes
	r.Post("/api/auth/register", controllers.Auth.Register)
	r.Post("/api/auth/sign-in", controllers.Auth.SignIn)
	r.Post("/api/auth/sign-out", controllers.Auth.SignOut)

	r.Group(func(r chi.Router) {
		r.Use(controller.RequireUser(opts.Tokens, opts.CookieName))

		r.Get("/api/auth/me", controllers.Auth.Me)
		r.Put("/api/profile/picture", controllers.Profile.SetPicture)

		// Clothing routes
		r.Route("/api/clothing", func(r chi.Router) {
			r.Get("/", controllers.Clothing.List)
			r.Post("/", controllers.Clothing.Create)
			r.Post("/status", controllers.Clothing.SetStatus)
			r.Get("/{id}", controllers.Clothing.Get)
			r.Patch("/{id}", controllers.Clothing.Update)
			r.Delete("/{id}", controllers.Clothing.Delete)
			r.Post("/{id}/wear", controllers.Clothing.Wear)
		})

		// Outfit and feed routes
		r.Route("/api/outfits", func(r chi.Router) {
			r.Get("/", controllers.Outfit.List)
			r.Get("/{id}", controllers.Outfit.Get)
			r.Delete("/{id}", controllers.Outfit.Delete)
			r.Post("/{id}/publish", controllers.Outfit.Publish)
		})
		r.Get("/api/feed", controllers.Outfit.Feed)
		r.Post("/api/feed/{id}/like", controllers.Outfit.Like)
		r.Delete("/api/feed/{id}/like", controllers.Outfit.Unlike)

		// Canvas routes
		r.Route("/api/canvas", func(r chi.Router) {
			r.Post("/", controllers.Canvas.Open)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", controllers.Canvas.Get)
				r.Delete("/", controllers.Canvas.Close)
				r.Put("/order", controllers.Canvas.Reorder)
				r.Put("/profile", controllers.Canvas.SetProfile)
				r.Get("/capture", controllers.Canvas.Capture)
				r.Post("/submit", controllers.Canvas.Submit)
				r.Post("/layers/{lid}/drag", controllers.Canvas.Drag)
				r.Post("/layers/{lid}/pinch", controllers.Canvas.Pinch)
				r.Get("/layers/{lid}/thumbnail", controllers.Canvas.Thumbnail)
			})
		})
	})

	return r
}
