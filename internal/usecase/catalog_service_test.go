package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/medirec/backend/internal/domain"
)

type fakeStore struct {
	products []domain.StoreProduct
	err      error
	calls    int
}

func (f *fakeStore) FetchProducts(ctx context.Context, page, perPage int) ([]domain.StoreProduct, error) {
	return f.products, f.err
}

func (f *fakeStore) FetchAllProducts(ctx context.Context) ([]domain.StoreProduct, error) {
	f.calls++
	return f.products, f.err
}

func (f *fakeStore) TotalProducts(ctx context.Context) (int, error) {
	return len(f.products), f.err
}

type fakeCache struct {
	products []domain.Product
	valid    bool
	saved    [][]domain.Product
	saveErr  error
	cleared  bool
}

func (f *fakeCache) Save(products []domain.Product) error {
	f.saved = append(f.saved, products)
	return f.saveErr
}

func (f *fakeCache) Load() ([]domain.Product, error) {
	if !f.valid {
		return nil, domain.ErrCacheMiss
	}
	return f.products, nil
}

func (f *fakeCache) IsValid() bool { return f.valid }

func (f *fakeCache) Info() (*domain.CacheInfo, error) {
	if !f.valid {
		return nil, domain.ErrCacheMiss
	}
	return &domain.CacheInfo{ProductCount: len(f.products), IsValid: true}, nil
}

func (f *fakeCache) Clear() error {
	f.cleared = true
	return nil
}

func writeCatalogCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	content := `id,name,category,price,description
1,Stetoskop Littmann,sprzet_diagnostyczny,299.99,Stetoskop kardiologiczny
2,Glukometr Accu-Chek,diabetologia,89.99,Glukometr z paskami
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test CSV: %v", err)
	}
	return path
}

func TestCatalogServiceLoadLocal(t *testing.T) {
	engine := NewRecommender(nil)
	svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{ProductsFile: writeCatalogCSV(t)}, nil)

	if err := svc.LoadLocal(); err != nil {
		t.Fatalf("LoadLocal() error = %v, want nil", err)
	}
	if engine.ProductCount() != 2 {
		t.Errorf("ProductCount() = %d, want 2", engine.ProductCount())
	}
}

func TestCatalogServiceLoadLocal_MissingFile(t *testing.T) {
	engine := NewRecommender(nil)
	svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{ProductsFile: "nie-ma.csv"}, nil)

	if err := svc.LoadLocal(); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LoadLocal() error = %v, want ErrNotFound", err)
	}
}

func TestCatalogServiceBootstrap(t *testing.T) {
	t.Run("without store keeps local catalog", func(t *testing.T) {
		engine := NewRecommender(nil)
		svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{ProductsFile: writeCatalogCSV(t)}, nil)

		if err := svc.Bootstrap(context.Background()); err != nil {
			t.Fatalf("Bootstrap() error = %v, want nil", err)
		}
		if engine.ProductCount() != 2 {
			t.Errorf("ProductCount() = %d, want 2", engine.ProductCount())
		}
	})

	t.Run("valid cache overrides local catalog", func(t *testing.T) {
		engine := NewRecommender(nil)
		cache := &fakeCache{
			valid: true,
			products: []domain.Product{
				{ID: 10, Name: "Z cache", Category: "higiena", Price: 5},
				{ID: 11, Name: "Też z cache", Category: "higiena", Price: 6},
				{ID: 12, Name: "I ten", Category: "apteczki", Price: 7},
			},
		}
		svc := NewCatalogService(engine, &fakeStore{}, cache, CatalogServiceConfig{ProductsFile: writeCatalogCSV(t)}, nil)

		if err := svc.Bootstrap(context.Background()); err != nil {
			t.Fatalf("Bootstrap() error = %v, want nil", err)
		}
		if engine.ProductCount() != 3 {
			t.Errorf("ProductCount() = %d, want 3 (from cache)", engine.ProductCount())
		}
	})

	t.Run("stale cache keeps local catalog", func(t *testing.T) {
		engine := NewRecommender(nil)
		cache := &fakeCache{valid: false}
		svc := NewCatalogService(engine, &fakeStore{}, cache, CatalogServiceConfig{ProductsFile: writeCatalogCSV(t)}, nil)

		if err := svc.Bootstrap(context.Background()); err != nil {
			t.Fatalf("Bootstrap() error = %v, want nil", err)
		}
		if engine.ProductCount() != 2 {
			t.Errorf("ProductCount() = %d, want 2 (local)", engine.ProductCount())
		}
	})

	t.Run("fails when local catalog is missing", func(t *testing.T) {
		engine := NewRecommender(nil)
		svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{ProductsFile: "nie-ma.csv"}, nil)

		if err := svc.Bootstrap(context.Background()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Bootstrap() error = %v, want ErrNotFound", err)
		}
	})
}

func TestCatalogServiceRefreshFromStore(t *testing.T) {
	storeProducts := []domain.StoreProduct{
		{ID: 1, Name: "Stetoskop", Price: "299.99", Categories: []domain.StoreCategory{{Name: "Stetoskopy"}}},
		{ID: 2, Name: "Glukometr", Price: "89.99", Categories: []domain.StoreCategory{{Name: "Glukometry"}}},
		{ID: 0, Name: "Zepsuty", Price: "1.00"},
	}

	t.Run("replaces catalog and rewrites cache", func(t *testing.T) {
		engine := NewRecommender(nil)
		cache := &fakeCache{}
		svc := NewCatalogService(engine, &fakeStore{products: storeProducts}, cache, CatalogServiceConfig{}, nil)

		count, err := svc.RefreshFromStore(context.Background())
		if err != nil {
			t.Fatalf("RefreshFromStore() error = %v, want nil", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2 (invalid record skipped)", count)
		}
		if engine.ProductCount() != 2 {
			t.Errorf("ProductCount() = %d, want 2", engine.ProductCount())
		}
		if len(cache.saved) != 1 || len(cache.saved[0]) != 2 {
			t.Errorf("cache.saved = %v, want one save of 2 products", cache.saved)
		}
	})

	t.Run("cache write failure does not fail the refresh", func(t *testing.T) {
		engine := NewRecommender(nil)
		cache := &fakeCache{saveErr: errors.New("disk full")}
		svc := NewCatalogService(engine, &fakeStore{products: storeProducts}, cache, CatalogServiceConfig{}, nil)

		if _, err := svc.RefreshFromStore(context.Background()); err != nil {
			t.Errorf("RefreshFromStore() error = %v, want nil despite cache failure", err)
		}
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		engine := NewRecommender(nil)
		svc := NewCatalogService(engine, &fakeStore{err: errors.New("timeout")}, nil, CatalogServiceConfig{}, nil)

		if _, err := svc.RefreshFromStore(context.Background()); !errors.Is(err, domain.ErrStoreFetch) {
			t.Errorf("RefreshFromStore() error = %v, want ErrStoreFetch", err)
		}
	})

	t.Run("fails without store", func(t *testing.T) {
		engine := NewRecommender(nil)
		svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{}, nil)

		if _, err := svc.RefreshFromStore(context.Background()); !errors.Is(err, domain.ErrStoreFetch) {
			t.Errorf("RefreshFromStore() error = %v, want ErrStoreFetch", err)
		}
	})
}

func TestCatalogServiceCacheAccess(t *testing.T) {
	engine := NewRecommender(nil)

	t.Run("without cache", func(t *testing.T) {
		svc := NewCatalogService(engine, nil, nil, CatalogServiceConfig{}, nil)
		if _, err := svc.CacheInfo(); !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("CacheInfo() error = %v, want ErrCacheMiss", err)
		}
		if err := svc.ClearCache(); err != nil {
			t.Errorf("ClearCache() error = %v, want nil", err)
		}
		if svc.StoreEnabled() || svc.CacheEnabled() {
			t.Error("StoreEnabled()/CacheEnabled() = true, want false")
		}
	})

	t.Run("with cache", func(t *testing.T) {
		cache := &fakeCache{valid: true, products: []domain.Product{{ID: 1, Name: "P", Category: "higiena", Price: 1}}}
		svc := NewCatalogService(engine, &fakeStore{}, cache, CatalogServiceConfig{}, nil)

		info, err := svc.CacheInfo()
		if err != nil {
			t.Fatalf("CacheInfo() error = %v, want nil", err)
		}
		if info.ProductCount != 1 {
			t.Errorf("ProductCount = %d, want 1", info.ProductCount)
		}

		if err := svc.ClearCache(); err != nil {
			t.Errorf("ClearCache() error = %v, want nil", err)
		}
		if !cache.cleared {
			t.Error("cache was not cleared")
		}
		if !svc.StoreEnabled() || !svc.CacheEnabled() {
			t.Error("StoreEnabled()/CacheEnabled() = false, want true")
		}
	})
}
