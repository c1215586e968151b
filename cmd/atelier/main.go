package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	atelierhttp "github.com/atelier-cms/atelier/internal/adapter/http"
	"github.com/atelier-cms/atelier/internal/adapter/media"
	"github.com/atelier-cms/atelier/internal/adapter/otel"
	"github.com/atelier-cms/atelier/internal/adapter/postgres"
	"github.com/atelier-cms/atelier/internal/adapter/ristretto"
	"github.com/atelier-cms/atelier/internal/config"
	"github.com/atelier-cms/atelier/internal/domain/content"
	"github.com/atelier-cms/atelier/internal/logger"
	"github.com/atelier-cms/atelier/internal/middleware"
	mediaport "github.com/atelier-cms/atelier/internal/port/media"
	"github.com/atelier-cms/atelier/internal/service"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// runCommand dispatches non-server subcommands.
func runCommand(cmd string, args []string) error {
	switch cmd {
	case "serve":
		return run()
	case "admin":
		return runAdmin(args)
	case "migrate":
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return postgres.RunMigrations(context.Background(), cfg.Postgres.DSN)
	case "rollback":
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return postgres.RollbackMigrations(context.Background(), cfg.Postgres.DSN, 1)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"sections", cfg.Content.Sections,
		"media_backend", cfg.Media.Backend,
	)

	ctx := context.Background()

	// --- Observability ---
	shutdownOtel, err := otel.Init(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB<<20, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	mediaStore, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("media: %w", err)
	}

	// --- Services ---
	sections := content.NewSections(cfg.Content.Sections)
	store := postgres.NewStore(pool)
	contentSvc := service.NewContentService(sections, store, cache, metrics, log)
	authSvc := service.NewAuthService(cfg.Auth.PasswordHash, cfg.Auth.SessionTTL)
	mediaSvc := service.NewMediaService(mediaStore, metrics)

	// --- HTTP ---
	handlers := atelierhttp.NewHandlers(contentSvc, authSvc, mediaSvc, cfg.Media.MaxUploadMB<<20, log)

	r := chi.NewRouter()
	r.Use(atelierhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(atelierhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Session(authSvc))

	r.Get("/health", healthHandler(cfg))
	atelierhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// newMediaStore builds the configured media backend.
func newMediaStore(ctx context.Context, cfg config.Media) (mediaport.Store, error) {
	switch cfg.Backend {
	case "s3":
		return media.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.PublicBase)
	default:
		return media.NewFSStore(cfg.LocalDir, cfg.PublicBase)
	}
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(cfg *config.Config) http.HandlerFunc {
	type healthStatus struct {
		Status   string   `json:"status"`
		Sections []string `json:"sections"`
		Media    string   `json:"media"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:   "ok",
			Sections: cfg.Content.Sections,
			Media:    cfg.Media.Backend,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
