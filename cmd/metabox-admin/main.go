package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyberwani/metabox/internal/attachment"
	"github.com/cyberwani/metabox/internal/config"
	"github.com/cyberwani/metabox/internal/database"
	"github.com/cyberwani/metabox/internal/database/migration"
	handlers "github.com/cyberwani/metabox/internal/http/handler"
	"github.com/cyberwani/metabox/internal/http/middleware"
	"github.com/cyberwani/metabox/internal/log"
	"github.com/cyberwani/metabox/internal/storage"
	"github.com/cyberwani/metabox/internal/store/postgres"
	"github.com/cyberwani/metabox/pkg/lifecycle"
	"github.com/cyberwani/metabox/pkg/persist"
	"github.com/cyberwani/metabox/pkg/render"
	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

func main() {
	logger := log.New()

	// Load configuration from environment variables (.env auto-loaded
	// if present).
	cfg := config.Load()
	if cfg.Token.Secret == "" {
		logger.Fatal("METABOX_TOKEN_SECRET is required")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migration.EnsureMigrated(ctx, db, logger); err != nil {
		cancel()
		logger.Fatalf("failed to migrate database: %v", err)
	}
	cancel()

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Fatalf("failed to initialize object storage: %v", err)
	}

	meta := postgres.NewMetaPostgres(db)
	attachments := postgres.NewAttachmentPostgres(db)
	attSvc := attachment.NewService(objStore, attachments, meta, logger)

	tokens := token.NewService([]byte(cfg.Token.Secret), cfg.Token.TTL)
	renderer := render.New()
	saver := persist.NewSaver(meta, tokens,
		persist.WithUploader(attSvc),
		persist.WithLogger(logger),
	)

	events := lifecycle.NewEventTable()
	controller := lifecycle.NewController(events, renderer, saver,
		lifecycle.WithAdmin(cfg.Admin),
	)

	// Box definitions are YAML files in the configured directory.
	boxes, err := schema.LoadFS(os.DirFS(cfg.BoxDir))
	if err != nil {
		logger.Fatalf("failed to load box definitions: %v", err)
	}
	for _, box := range boxes {
		if err := controller.Register(box); err != nil {
			logger.Fatalf("failed to register box %q: %v", box.ID, err)
		}
	}
	logger.Infof("registered %d boxes", len(boxes))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))

	registry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.AdminConfig{
		Controller:  controller,
		Events:      events,
		Boxes:       boxes,
		Renderer:    renderer,
		Tokens:      tokens,
		Attachments: attSvc,
		Meta:        meta,
		Logger:      logger,
	})

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
