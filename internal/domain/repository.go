package domain

import "context"

// StoreClient defines the interface for fetching products from the external store.
type StoreClient interface {
	// FetchProducts fetches a single page of published products.
	FetchProducts(ctx context.Context, page, perPage int) ([]StoreProduct, error)

	// FetchAllProducts paginates through the store until the configured
	// maximum product count is reached or a page comes back short.
	FetchAllProducts(ctx context.Context) ([]StoreProduct, error)

	// TotalProducts reports the total number of published products
	// without fetching them.
	TotalProducts(ctx context.Context) (int, error)
}

// ProductCache defines the interface for time-boxed local product persistence.
type ProductCache interface {
	// Save persists the product list, overwriting any prior cache.
	Save(products []Product) error

	// Load returns the cached products, or ErrCacheMiss if the cache
	// is absent, unreadable, or stale.
	Load() ([]Product, error)

	// IsValid reports whether cache metadata exists and is not stale.
	IsValid() bool

	// Info returns a metadata summary, or ErrCacheMiss if no metadata exists.
	Info() (*CacheInfo, error)

	// Clear removes the cache. Idempotent.
	Clear() error
}
