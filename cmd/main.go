package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"brandforge/internal/auth"
	"brandforge/internal/config"
	"brandforge/internal/domain"
	"brandforge/internal/export"
	"brandforge/internal/handler"
	"brandforge/internal/logger"
	"brandforge/internal/repository"
	"brandforge/internal/service"
	"brandforge/internal/sessionstore"
	"brandforge/internal/storage"
)

func connectWithRetry(log zerolog.Logger, dsn string, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max", maxAttempts).Msg("database connection failed")
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New("file://migrations", cfg.Database.GetURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.Storage.S3Endpoint,
			Region:          cfg.Storage.S3Region,
			Bucket:          cfg.Storage.S3Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		})
	case "local":
		return storage.NewLocalStorage(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	log := logger.New(os.Getenv("LOG_LEVEL"))

	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := connectWithRetry(log, appConfig.Database.GetDSN(), 5, 5*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	artifactStore, err := newStorage(appConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize artifact storage")
	}

	auth.Init(appConfig.Auth.JWTSecret)
	sessions := sessionstore.NewCookieStore(appConfig.Session.Secret)

	projectRepo := repository.NewProjectRepository(db)
	shareRepo := repository.NewShareRepository(db)
	exportRepo := repository.NewExportRepository(db)
	limiter := repository.NewRateLimitRepository(db,
		appConfig.RateLimit.ShareCreateLimit, appConfig.RateLimit.ShareCreateWindow)

	projectService := service.NewProjectService(projectRepo, log)

	resolver := service.NewTargetResolver()
	resolver.Register(domain.TargetTypeProject, projectService.LoadTarget)

	shareService := service.NewShareService(shareRepo, resolver, limiter,
		appConfig.Share.MaxExpiry, appConfig.Server.BaseURL, log)

	renderer := export.NewDocumentRenderer(artifactStore)
	exportService := service.NewExportService(exportRepo, resolver, renderer,
		artifactStore, appConfig.Export.RenderTimeout, log)

	projectHandler := handler.NewProjectHandler(projectService, log)
	shareHandler := handler.NewShareHandler(shareService, appConfig.Server.BaseURL, log)
	exportHandler := handler.NewExportHandler(exportService, appConfig.Server.BaseURL, log)
	publicHandler := handler.NewPublicHandler(shareService, resolver, sessions, log)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.CreateProject)
			r.Get("/", projectHandler.ListProjects)
			r.Get("/{uuid}", projectHandler.GetProject)
			r.Put("/{uuid}", projectHandler.UpdateProject)
			r.Delete("/{uuid}", projectHandler.DeleteProject)
		})

		r.Route("/shares", func(r chi.Router) {
			r.Post("/", shareHandler.CreateShare)
			r.Get("/", shareHandler.ListShares)
			r.Get("/{uuid}", shareHandler.GetShare)
			r.Put("/{uuid}", shareHandler.UpdateShare)
			r.Delete("/{uuid}", shareHandler.DeleteShare)
			r.Get("/{uuid}/analytics", shareHandler.GetShareAnalytics)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Post("/", exportHandler.CreateExport)
			r.Get("/", exportHandler.ListExports)
			r.Get("/analytics", exportHandler.ExportAnalytics)
			r.Get("/{uuid}", exportHandler.GetExport)
			r.Delete("/{uuid}", exportHandler.DeleteExport)
			r.Get("/{uuid}/download", exportHandler.Download)
		})
	})

	// Public surface: no bearer token, the opaque id is the capability.
	r.Get("/share/{uuid}", publicHandler.ShowShare)
	r.Post("/share/{uuid}/authenticate", publicHandler.AuthenticateShare)
	r.Get("/downloads/{uuid}", exportHandler.Download)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	httpServer := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", appConfig.Server.Port).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Expiry sweep: idempotent, safe to rerun, runs once at startup and then
	// on the configured interval.
	sweepDone := make(chan struct{})
	sweepTicker := time.NewTicker(appConfig.Export.SweepInterval)
	go func() {
		runSweep(log, exportService, limiter, appConfig.RateLimit.ShareCreateWindow)
		for {
			select {
			case <-sweepTicker.C:
				runSweep(log, exportService, limiter, appConfig.RateLimit.ShareCreateWindow)
			case <-sweepDone:
				sweepTicker.Stop()
				return
			}
		}
	}()

	<-quit
	log.Info().Msg("shutting down")
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("error closing database connection")
	}

	log.Info().Msg("server exited")
}

func runSweep(log zerolog.Logger, exports *service.ExportService, limiter *repository.RateLimitRepository, window time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := exports.CleanupExpiredExports(ctx)
	if err != nil {
		log.Error().Err(err).Msg("export sweep failed")
	} else if count > 0 {
		log.Info().Int("removed", count).Msg("export sweep completed")
	}

	if err := limiter.PruneBefore(ctx, time.Now().UTC().Add(-2*window)); err != nil {
		log.Error().Err(err).Msg("rate limit prune failed")
	}
}
