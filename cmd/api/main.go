package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phoneapi/docs"
	"phoneapi/internal/config"
	"phoneapi/internal/database"
	"phoneapi/internal/database/migration"
	handlers "phoneapi/internal/http/handler"
	"phoneapi/internal/http/middleware"
	"phoneapi/internal/logging"
	"phoneapi/internal/otel"
	"phoneapi/internal/repository"
	"phoneapi/internal/repository/memory"
	"phoneapi/internal/repository/postgres"
	"phoneapi/internal/seed"
	"phoneapi/internal/service"
	"phoneapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Phone API
// @version 1.0
// @description Phone catalog with hypermedia links.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.Component(logger, "otel"))
	if err != nil {
		logger.Fatal("tracing_init_failed", "err", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repo, pinger, closeStore, err := openStore(ctx, cfg, reg, logger)
	if err != nil {
		logger.Fatal("store_init_failed", "backend", cfg.StoreBackend, "err", err)
	}
	defer closeStore()

	if cfg.Seed.Enabled {
		fixtures := seed.Defaults()
		if cfg.Seed.File != "" {
			if fixtures, err = seed.LoadFile(cfg.Seed.File); err != nil {
				logger.Fatal("seed_load_failed", "file", cfg.Seed.File, "err", err)
			}
		}
		n, err := seed.Run(ctx, repo, fixtures, logging.Component(logger, "seed"))
		if err != nil {
			logger.Fatal("seed_failed", "err", err)
		}
		logger.Info("seed_completed", "inserted", n, "fixtures", len(fixtures))
	}

	// Snapshots are optional; an unset MINIO_ENDPOINT leaves them disabled.
	objStore, err := storage.NewMinIO(cfg.MinIO)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info("snapshots_disabled", "reason", "MINIO_ENDPOINT not set")
		objStore = nil
	case err != nil:
		logger.Fatal("object_storage_init_failed", "err", err)
	}

	phoneSvc := service.NewPhoneService(repo, objStore)

	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal("metrics_init_failed", "err", err)
	}
	if err := service.RegisterCatalogMetrics(reg, repo, logging.Component(logger, "metrics")); err != nil {
		logger.Fatal("metrics_init_failed", "err", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// RequestID must run first so the logger and error payloads can read it.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.Component(logger, "http")))
	app.Use(metrics.Handler())
	app.Use(otelfiber.Middleware())

	handlers.RegisterRoutes(app, pinger, phoneSvc)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutdown_started")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("http_shutdown_failed", "err", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_listening", "addr", addr, "store", cfg.StoreBackend, "snapshots", objStore != nil)
	if err := app.Listen(addr); err != nil {
		logger.Error("server_failed", "err", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracing_shutdown_failed", "err", err)
	}
}

// openStore builds the phone repository selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.AppConfig, reg prometheus.Registerer, logger *log.Logger) (repository.PhoneRepository, handlers.Pinger, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		repo := memory.NewPhoneMemory()
		return repo, repo, func() {}, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, logging.Component(logger, "migration"), cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		if err := database.RegisterPoolMetrics(reg, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgres.NewPhonePostgres(db), db, closeDB(db, logger), nil
	default:
		return nil, nil, nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}

func closeDB(db *sql.DB, logger *log.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Error("db_close_failed", "err", err)
		}
	}
}
