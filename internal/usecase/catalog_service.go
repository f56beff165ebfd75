package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/medirec/backend/internal/domain"
	"github.com/medirec/backend/internal/infrastructure/storage"
	"github.com/medirec/backend/internal/infrastructure/woo"
)

// CatalogServiceConfig holds configuration for the catalog service.
type CatalogServiceConfig struct {
	ProductsFile string
}

// CatalogService keeps the recommendation engine's catalog populated.
// Products come from the local CSV file, the external store, or the
// time-boxed file cache; every (re)load replaces the catalog wholesale.
type CatalogService struct {
	engine *Recommender
	store  domain.StoreClient  // nil when the store is not configured
	cache  domain.ProductCache // nil when caching is disabled
	mapper *woo.Mapper
	cfg    CatalogServiceConfig
	logger *zap.Logger
}

// NewCatalogService creates a catalog service with its dependencies.
// store and cache may be nil.
func NewCatalogService(
	engine *Recommender,
	store domain.StoreClient,
	cache domain.ProductCache,
	cfg CatalogServiceConfig,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		engine: engine,
		store:  store,
		cache:  cache,
		mapper: woo.NewMapper(logger),
		cfg:    cfg,
		logger: logger,
	}
}

// LoadLocal loads the catalog from the configured CSV file.
func (s *CatalogService) LoadLocal() error {
	products, err := storage.LoadProducts(s.cfg.ProductsFile)
	if err != nil {
		return err
	}
	s.engine.ReplaceProducts(products)
	s.logger.Info("catalog loaded from file",
		zap.String("path", s.cfg.ProductsFile),
		zap.Int("products", len(products)),
	)
	return nil
}

// Bootstrap performs the startup catalog ladder: load the local CSV,
// then prefer a valid cached store snapshot when one exists.
func (s *CatalogService) Bootstrap(ctx context.Context) error {
	if err := s.LoadLocal(); err != nil {
		return err
	}

	if s.store == nil || s.cache == nil {
		return nil
	}

	if !s.cache.IsValid() {
		s.logger.Info("product cache expired or missing, serving local data")
		return nil
	}

	cached, err := s.cache.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("failed to load product cache", zap.Error(err))
		}
		return nil
	}

	s.engine.ReplaceProducts(cached)
	s.logger.Info("catalog loaded from cache", zap.Int("products", len(cached)))
	return nil
}

// RefreshFromStore fetches the full product list from the external store,
// maps it onto the internal category vocabulary, replaces the catalog, and
// rewrites the cache. Returns the number of products imported.
func (s *CatalogService) RefreshFromStore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("%w: store not configured", domain.ErrStoreFetch)
	}

	raw, err := s.store.FetchAllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreFetch, err)
	}

	products := s.mapper.MapProducts(raw)
	s.engine.ReplaceProducts(products)

	if s.cache != nil {
		if err := s.cache.Save(products); err != nil {
			// A failed cache write degrades the next startup, not this request.
			s.logger.Warn("failed to save product cache", zap.Error(err))
		}
	}

	s.logger.Info("catalog refreshed from store", zap.Int("products", len(products)))
	return len(products), nil
}

// CacheInfo returns a summary of the product cache state.
func (s *CatalogService) CacheInfo() (*domain.CacheInfo, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	return s.cache.Info()
}

// ClearCache removes the product cache if present.
func (s *CatalogService) ClearCache() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear()
}

// StoreEnabled reports whether an external store client is configured.
func (s *CatalogService) StoreEnabled() bool {
	return s.store != nil
}

// CacheEnabled reports whether the product cache is configured.
func (s *CatalogService) CacheEnabled() bool {
	return s.cache != nil
}
