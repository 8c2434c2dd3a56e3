package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/storekeep/storekeep/internal/app"
	"github.com/storekeep/storekeep/internal/catalog/categories"
	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
	"github.com/storekeep/storekeep/internal/catalog/tags"
	"github.com/storekeep/storekeep/internal/importer"
	"github.com/storekeep/storekeep/internal/orders"
	"github.com/storekeep/storekeep/internal/platform/cache"
	"github.com/storekeep/storekeep/internal/platform/db"
	"github.com/storekeep/storekeep/internal/users"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tree cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	var treeCache *categories.TreeCache
	if redisClient != nil {
		treeCache = categories.NewTreeCache(redisClient, 10*time.Minute)
	}

	categoryService := categories.NewService(categories.NewRepository(pool), treeCache, logger)
	productService := products.NewService(products.NewRepository(pool))
	priceLevelService := pricelevels.NewService(pricelevels.NewRepository(pool))
	tagService := tags.NewService(tags.NewRepository(pool))
	orderService := orders.NewService(orders.NewRepository(pool))
	userService := users.NewService(users.NewRepository(pool))
	importService := importer.NewService(logger, priceLevelService, productService)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	enqueue := func(hubID int64, data []byte) (string, error) {
		task, jobID, err := jobs.NewImportProductsTask(hubID, data)
		if err != nil {
			return "", err
		}
		if _, err := asynqClient.Enqueue(task); err != nil {
			return "", err
		}
		return jobID, nil
	}

	handler := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Pool:               pool,
		CategoriesHandler:  categories.NewHandler(logger, categoryService),
		ProductsHandler:    products.NewHandler(logger, productService),
		PriceLevelsHandler: pricelevels.NewHandler(logger, priceLevelService),
		TagsHandler:        tags.NewHandler(logger, tagService),
		OrdersHandler:      orders.NewHandler(logger, orderService),
		ImportHandler:      importer.NewHandler(logger, importService, enqueue),
		UsersHandler:       users.NewHandler(logger, userService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
