package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/AnishKajan/VaultGuardian-AI/internal/analysis"
	"github.com/AnishKajan/VaultGuardian-AI/internal/audit"
	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/database"
	"github.com/AnishKajan/VaultGuardian-AI/internal/database/migration"
	handlers "github.com/AnishKajan/VaultGuardian-AI/internal/http/handler"
	"github.com/AnishKajan/VaultGuardian-AI/internal/http/middleware"
	"github.com/AnishKajan/VaultGuardian-AI/internal/otel"
	"github.com/AnishKajan/VaultGuardian-AI/internal/pipeline"
	"github.com/AnishKajan/VaultGuardian-AI/internal/repository/postgres"
	"github.com/AnishKajan/VaultGuardian-AI/internal/service"
	"github.com/AnishKajan/VaultGuardian-AI/internal/storage"
	"github.com/AnishKajan/VaultGuardian-AI/internal/textextract"
)

func main() {
	// Configuration from environment (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	auditLog := audit.New()

	// The model backend is optional; without a token the classifier runs
	// purely on the deterministic fallback.
	var analyzerClient analysis.AnalyzerClient
	if hf := analysis.NewHuggingFace(cfg.HuggingFace); hf != nil {
		analyzerClient = hf
	}
	classifier := analysis.NewClassifier(analyzerClient)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch, err := pipeline.NewOrchestrator(docRepo, objStore, textextract.New(), classifier, cfg.Policy, auditLog, reg)
	if err != nil {
		log.Fatalf("failed to initialize pipeline: %v", err)
	}
	pool := pipeline.NewPool(orch, cfg.Pipeline)

	docSvc := service.NewDocumentService(objStore, docRepo, pool, auditLog, cfg.Policy)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, docSvc)

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		_ = app.Shutdown()
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	// Drain in-flight pipeline runs before exiting.
	pool.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
