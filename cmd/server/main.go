package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/medirec/backend/config"
	httpDelivery "github.com/medirec/backend/internal/delivery/http"
	"github.com/medirec/backend/internal/domain"
	"github.com/medirec/backend/internal/infrastructure/cache"
	"github.com/medirec/backend/internal/infrastructure/woo"
	"github.com/medirec/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting medirec backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	productCache, err := cache.NewFileCache(cfg.Cache.Dir, cfg.Cache.Duration, logger)
	if err != nil {
		logger.Fatal("failed to initialize product cache", zap.Error(err))
	}

	var storeClient domain.StoreClient
	if cfg.StoreConfigured() {
		storeClient = woo.NewClient(
			cfg.Store.URL,
			cfg.Store.ConsumerKey,
			cfg.Store.ConsumerSecret,
			cfg.Store.Timeout,
			cfg.Store.MaxProducts,
			logger,
		)
		logger.Info("store integration enabled", zap.String("url", cfg.Store.URL))
	} else {
		logger.Warn("store not configured, serving local catalog only")
	}

	engine := usecase.NewRecommender(logger)
	catalog := usecase.NewCatalogService(engine, storeClient, productCache, usecase.CatalogServiceConfig{
		ProductsFile: cfg.Catalog.ProductsFile,
	}, logger)

	if err := catalog.Bootstrap(context.Background()); err != nil {
		logger.Fatal("failed to load product catalog", zap.Error(err))
	}
	logger.Info("catalog ready",
		zap.Int("products", engine.ProductCount()),
		zap.Int("categories", len(engine.Categories())),
	)

	handler := httpDelivery.NewHandler(engine, catalog, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
