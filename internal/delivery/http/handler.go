package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medirec/backend/internal/domain"
	"github.com/medirec/backend/internal/usecase"
)

// Limit clamping for user-supplied query parameters
const (
	defaultRecommendLimit = 10
	maxRecommendLimit     = 100
	defaultProductsLimit  = 50
	maxProductsLimit      = 1000
	descriptionPreviewLen = 200
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine  *usecase.Recommender
	catalog *usecase.CatalogService
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *usecase.Recommender, catalog *usecase.CatalogService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine:  engine,
		catalog: catalog,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        "medirec-backend",
		"version":        "1.0.0",
		"products_count": h.engine.ProductCount(),
		"store_enabled":  h.catalog.StoreEnabled(),
		"cache_enabled":  h.catalog.CacheEnabled(),
	})
}

// Recommend handles GET /recommend?input=<query>&limit=<n>&format=<json|simple>
func (h *Handler) Recommend(c *gin.Context) {
	query := strings.TrimSpace(c.Query("input"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required parameter 'input'",
			"code":    "MISSING_PARAMETER",
			"example": "/recommend?input=cukrzyca",
		})
		return
	}

	limit := clampLimit(c.Query("limit"), defaultRecommendLimit, maxRecommendLimit)
	format := strings.ToLower(c.DefaultQuery("format", "json"))

	rec, err := h.engine.Recommend(query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query cannot be empty",
				"code":  "MISSING_PARAMETER",
			})
			return
		}
		h.logger.Error("recommendation failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate recommendations",
			"code":  "RECOMMENDATION_ERROR",
		})
		return
	}

	if format == "simple" {
		c.JSON(http.StatusOK, gin.H{
			"query":      rec.Query,
			"confidence": rec.Confidence,
			"count":      len(rec.Products),
			"products":   productPreviews(rec.Products),
		})
		return
	}

	var cacheInfo *domain.CacheInfo
	if h.catalog.CacheEnabled() {
		cacheInfo, _ = h.catalog.CacheInfo()
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      rec.Query,
		"confidence": rec.Confidence,
		"reasoning":  rec.Reasoning,
		"count":      len(rec.Products),
		"products":   rec.Products,
		"meta": gin.H{
			"total_products_available": h.engine.ProductCount(),
			"categories_available":     len(h.engine.Categories()),
			"store_enabled":            h.catalog.StoreEnabled(),
			"cache_info":               cacheInfo,
		},
	})
}

// Products handles GET /products?category=<c>&limit=<n>&offset=<n>
func (h *Handler) Products(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	limit := clampLimit(c.Query("limit"), defaultProductsLimit, maxProductsLimit)

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	products := h.engine.Products()
	if category != "" {
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if strings.ToLower(p.Category) == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	total := len(products)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := products[offset:end]

	c.JSON(http.StatusOK, gin.H{
		"products": productPreviews(page),
		"pagination": gin.H{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"has_next": end < total,
			"has_prev": offset > 0,
		},
		"meta": gin.H{
			"categories_available": h.engine.Categories(),
			"store_enabled":        h.catalog.StoreEnabled(),
		},
	})
}

// Categories handles GET /categories
func (h *Handler) Categories(c *gin.Context) {
	counts := make(map[string]int)
	for _, p := range h.engine.Products() {
		counts[p.Category]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]gin.H, 0, len(names))
	for _, name := range names {
		categories = append(categories, gin.H{
			"name":          name,
			"product_count": counts[name],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":       categories,
		"total_categories": len(categories),
		"total_products":   h.engine.ProductCount(),
	})
}

// CacheInfo handles GET /cache
func (h *Handler) CacheInfo(c *gin.Context) {
	info, err := h.catalog.CacheInfo()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No product cache",
			"code":  "CACHE_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cache": info})
}

// RefreshCache handles POST /cache/refresh
func (h *Handler) RefreshCache(c *gin.Context) {
	count, err := h.catalog.RefreshFromStore(c.Request.Context())
	if err != nil {
		h.logger.Error("store refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to refresh products from store",
			"code":  "STORE_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "refreshed",
		"products_imported": count,
	})
}

// ClearCache handles DELETE /cache
func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.catalog.ClearCache(); err != nil {
		h.logger.Error("cache clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cache",
			"code":  "CACHE_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// productPreviews renders products with descriptions truncated for listings.
func productPreviews(products []domain.Product) []gin.H {
	previews := make([]gin.H, 0, len(products))
	for _, p := range products {
		previews = append(previews, gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"category":    p.Category,
			"price":       p.Price,
			"description": truncate(p.Description, descriptionPreviewLen),
		})
	}
	return previews
}

// truncate cuts s to maxLen runes, not bytes, so a multi-byte character
// is never split mid-sequence.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// clampLimit parses a user-supplied limit, falling back to def when the
// value is missing, unparseable, or out of the (0, max] range.
func clampLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > max {
		return def
	}
	return limit
}
