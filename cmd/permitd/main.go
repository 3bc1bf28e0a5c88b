package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joseph-ayodele/permit-compliance/internal/app"
	"github.com/joseph-ayodele/permit-compliance/internal/async"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/export"
	"github.com/joseph-ayodele/permit-compliance/internal/observability"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/server"
	"github.com/joseph-ayodele/permit-compliance/internal/services/document"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewLogger(os.Stdout, cfg.LogLevel, true)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.ConnectStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("db.connect.failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("db.close.failed", "error", err)
		}
	}()
	if err := server.PingDB(ctx, store, logger, 5*time.Second); err != nil {
		logger.Error("db.ping.failed", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	extractor, err := app.NewExtractor(cfg.OCR, logger)
	if err != nil {
		logger.Error("ocr.init.failed", "error", err)
		os.Exit(1)
	}
	table := standards.Default()
	ai := app.NewAIChecker(cfg.AI, table, logger)

	uploadStage := pipeline.NewUploadStage(store.Documents(), extractor, metrics, logger)
	checkStage := pipeline.NewComplianceStage(store.Documents(), table, ai, metrics, logger)

	var opts []document.Option
	var queue *async.CheckQueue
	if cfg.Queue.AutoCheckOnUpload {
		queue = async.NewCheckQueue(checkStage, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithJobTimeout(cfg.Queue.JobTimeout),
			async.WithMetrics(metrics),
		)
		opts = append(opts, document.WithAutoCheck(queue))
	}
	docs := document.NewService(store.Documents(), store.Reviews(), uploadStage, checkStage, logger, opts...)

	srv := server.New(server.Config{
		HTTPAddr:     cfg.Server.HTTPAddr,
		GRPCAddr:     cfg.Server.GRPCAddr,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTIssuer:    cfg.Auth.Issuer,
	}, docs, export.NewService(logger), store, metrics, logger)

	logger.Info("permitd.start",
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"db_driver", cfg.Database.Driver,
		"ai_provider", cfg.AI.Provider,
		"auto_check", cfg.Queue.AutoCheckOnUpload,
	)
	runErr := srv.Run(ctx)

	if queue != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(shutdownCtx)
		cancel()
	}
	if runErr != nil {
		logger.Error("permitd.stopped", "error", runErr)
		os.Exit(1)
	}
	logger.Info("permitd.stopped")
}
