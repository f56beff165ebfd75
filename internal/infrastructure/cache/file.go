// Package cache provides time-boxed local persistence of the product catalog.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/medirec/backend/internal/domain"
)

const (
	productsFileName = "products.json"
	metadataFileName = "cache_metadata.json"
)

// metadata is the second linked cache record, written alongside the
// product list on every save.
type metadata struct {
	Timestamp     int64 `json:"timestamp"`
	ProductCount  int   `json:"product_count"`
	CacheDuration int   `json:"cache_duration"`
}

// productRecord mirrors domain.Product on disk. Records are decoded
// individually so one malformed entry does not fail the whole load.
type productRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// FileCache stores the product list and its metadata as two JSON files.
// Entries older than the configured duration (seconds) are treated as absent.
type FileCache struct {
	productsFile string
	metadataFile string
	duration     int
	now          func() time.Time
	logger       *zap.Logger
}

// NewFileCache creates a file cache under dir, creating the directory if
// needed. duration is the cache lifetime in seconds.
func NewFileCache(dir string, duration int, logger *zap.Logger) (*FileCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	c := &FileCache{
		productsFile: filepath.Join(dir, productsFileName),
		metadataFile: filepath.Join(dir, metadataFileName),
		duration:     duration,
		now:          time.Now,
		logger:       logger,
	}
	logger.Info("product cache initialized",
		zap.String("dir", dir),
		zap.Int("duration_seconds", duration),
	)
	return c, nil
}

// Save persists the product list plus metadata, overwriting any prior cache.
func (c *FileCache) Save(products []domain.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding products: %w", err)
	}
	if err := os.WriteFile(c.productsFile, data, 0o644); err != nil {
		return fmt.Errorf("writing products cache: %w", err)
	}

	meta := metadata{
		Timestamp:     c.now().Unix(),
		ProductCount:  len(products),
		CacheDuration: c.duration,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache metadata: %w", err)
	}
	if err := os.WriteFile(c.metadataFile, metaData, 0o644); err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}

	c.logger.Info("cached products", zap.Int("count", len(products)))
	return nil
}

// Load returns the cached products, or ErrCacheMiss if either record is
// missing, unreadable, or stale. Individually malformed product records
// are skipped and counted rather than failing the load.
func (c *FileCache) Load() ([]domain.Product, error) {
	meta, err := c.readMetadata()
	if err != nil {
		return nil, err
	}

	age := c.now().Unix() - meta.Timestamp
	if age > int64(c.duration) {
		c.logger.Info("cache expired",
			zap.Int64("age_seconds", age),
			zap.Int("max_seconds", c.duration),
		)
		return nil, domain.ErrCacheMiss
	}

	data, err := os.ReadFile(c.productsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}

	var records []productRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}

	products := make([]domain.Product, 0, len(records))
	skipped := 0
	for _, rec := range records {
		product, err := domain.NewProduct(rec.ID, rec.Name, rec.Category, rec.Price, rec.Description)
		if err != nil {
			c.logger.Warn("skipping malformed cached product",
				zap.Int("id", rec.ID),
				zap.Error(err),
			)
			skipped++
			continue
		}
		products = append(products, product)
	}

	c.logger.Info("loaded products from cache",
		zap.Int("count", len(products)),
		zap.Int("skipped", skipped),
		zap.Int64("age_seconds", age),
	)
	return products, nil
}

// IsValid reports whether cache metadata exists and is not stale.
func (c *FileCache) IsValid() bool {
	meta, err := c.readMetadata()
	if err != nil {
		return false
	}
	return c.now().Unix()-meta.Timestamp <= int64(c.duration)
}

// Info returns a metadata summary without materializing products.
func (c *FileCache) Info() (*domain.CacheInfo, error) {
	meta, err := c.readMetadata()
	if err != nil {
		return nil, err
	}

	age := c.now().Unix() - meta.Timestamp
	expired := age > int64(c.duration)
	return &domain.CacheInfo{
		Timestamp:     meta.Timestamp,
		AgeSeconds:    float64(age),
		ProductCount:  meta.ProductCount,
		CacheDuration: meta.CacheDuration,
		IsExpired:     expired,
		IsValid:       !expired,
	}, nil
}

// Clear removes both cache records. It is idempotent and reports no error
// when the cache is already absent.
func (c *FileCache) Clear() error {
	for _, path := range []string{c.productsFile, c.metadataFile} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	c.logger.Info("product cache cleared")
	return nil
}

func (c *FileCache) readMetadata() (*metadata, error) {
	data, err := os.ReadFile(c.metadataFile)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &meta, nil
}
