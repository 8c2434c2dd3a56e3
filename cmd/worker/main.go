package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/storekeep/storekeep/internal/app"
	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
	"github.com/storekeep/storekeep/internal/importer"
	"github.com/storekeep/storekeep/internal/platform/db"
	"github.com/storekeep/storekeep/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	priceLevelService := pricelevels.NewService(pricelevels.NewRepository(pool))
	productService := products.NewService(products.NewRepository(pool))
	importService := importer.NewService(logger, priceLevelService, productService)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeImportProducts, Handler: jobs.NewImportProductsHandler(logger, importService)},
		},
	})

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
