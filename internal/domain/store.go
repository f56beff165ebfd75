package domain

// StoreProduct represents a raw product record from the WooCommerce REST API.
// Prices come back as strings and categories carry the store's own taxonomy,
// which does not match the internal category vocabulary.
type StoreProduct struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Price            string          `json:"price"`
	RegularPrice     string          `json:"regular_price"`
	SalePrice        string          `json:"sale_price"`
	PriceHTML        string          `json:"price_html"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	Categories       []StoreCategory `json:"categories"`
}

// StoreCategory is a category label attached to a store product.
type StoreCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CacheInfo summarizes the state of the product cache without
// materializing the cached products.
type CacheInfo struct {
	Timestamp     int64   `json:"timestamp"`
	AgeSeconds    float64 `json:"age_seconds"`
	ProductCount  int     `json:"product_count"`
	CacheDuration int     `json:"cache_duration"`
	IsExpired     bool    `json:"is_expired"`
	IsValid       bool    `json:"is_valid"`
}
