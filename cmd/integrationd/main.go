package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/export"
	"github.com/sems/integration-service/internal/extract"
	"github.com/sems/integration-service/internal/ingest"
	"github.com/sems/integration-service/internal/notify"
	"github.com/sems/integration-service/internal/ocr"
	"github.com/sems/integration-service/internal/pipeline"
	"github.com/sems/integration-service/internal/repository"
	"github.com/sems/integration-service/internal/server"
	"github.com/sems/integration-service/internal/storage"
)

func main() {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	invoices := repository.NewInvoiceRepository(pool, logger)

	rules := extract.DefaultRules()
	if cfg.Extract.RulesPath != "" {
		rules, err = extract.LoadRules(cfg.Extract.RulesPath)
		if err != nil {
			logger.Error("failed to load extraction rules", "path", cfg.Extract.RulesPath, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded extraction rules", "path", cfg.Extract.RulesPath, "rules", len(rules))
	}
	fieldExtractor, err := extract.NewFieldExtractor(rules, logger)
	if err != nil {
		logger.Error("failed to compile extraction rules", "error", err)
		os.Exit(1)
	}

	renderer := ingest.NewFitzRenderer(cfg.OCR.MaxPages, logger)
	engine := ocr.NewTesseractEngine(cfg.OCR.Language, cfg.OCR.DPI)
	textExtractor := ocr.NewTextExtractor(engine, logger)
	parser := extract.NewDocumentParser(renderer, textExtractor, fieldExtractor, logger)

	notifier := notify.NewHTTPNotifier(cfg.Notify.BaseURL, cfg.Notify.Timeout, logger)

	var archiver storage.Archiver
	if cfg.Storage.S3Bucket != "" {
		s3Archiver, err := storage.NewS3Archiver(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Region, logger)
		if err != nil {
			logger.Error("failed to initialize document archiver", "error", err)
			os.Exit(1)
		}
		archiver = s3Archiver
		logger.Info("document archival enabled", "bucket", cfg.Storage.S3Bucket)
	}

	processor := pipeline.NewProcessor(parser, invoices, notifier, archiver, logger)
	queue := pipeline.NewProcessorQueue(processor, logger,
		pipeline.WithWorkers(cfg.Queue.Workers),
		pipeline.WithQueueSize(cfg.Queue.Size),
		pipeline.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	exporter := export.NewService(invoices, logger)
	handler := server.NewInvoiceHandler(invoices, queue, exporter, cfg.Storage.UploadDir, logger)
	app := server.NewApp(handler, cfg.Server.BodyLimit)

	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
