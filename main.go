package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"armario-outfits/app"
	"armario-outfits/app/config"
	"armario-outfits/db"
)

const sweepInterval = time.Minute

func main() {
	log.SetReportTimestamp(true)

	root := &cobra.Command{
		Use:           "armario",
		Short:         "Wardrobe and outfit composition API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotenv()
			level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
			if err != nil {
				level = log.InfoLevel
			}
			log.SetLevel(level)
			return nil
		},
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			a, err := app.Initialize(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			go a.Canvas.Run(ctx, sweepInterval)

			// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
			addr := "0.0.0.0:" + cfg.Port
			srv := &http.Server{
				Addr:              addr,
				Handler:           a.Handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Infof("🚀 Server starting on %s (CORS: %v)", addr, cfg.CORSOrigins)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("🛑 Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			conn, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			log.Info("✅ Schema is up to date")
			return nil
		},
	}
}
