// Package woo integrates with the WooCommerce REST API v3: fetching raw
// store products and mapping them onto the internal category vocabulary.
package woo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/medirec/backend/internal/domain"
)

// perPageMax is the WooCommerce API's pagination ceiling.
const perPageMax = 100

const maxAttempts = 3

// Client handles communication with a WooCommerce store.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	maxProducts    int
	rateLimiter    *rate.Limiter
	logger         *zap.Logger
}

// NewClient creates a WooCommerce API client for the given store URL.
// maxProducts bounds how many products FetchAllProducts will import.
func NewClient(storeURL, consumerKey, consumerSecret string, timeout time.Duration, maxProducts int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxProducts <= 0 {
		maxProducts = perPageMax
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        trimTrailingSlash(storeURL) + "/wp-json/wc/v3",
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		maxProducts:    maxProducts,
		// Stay polite toward shared WooCommerce hosting: 2 req/s, burst of 5.
		rateLimiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:      logger,
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes an authenticated GET against the store API.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MediRec/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFetch, err)
	}
	return resp, nil
}

// FetchProducts fetches a single page of published products.
func (c *Client) FetchProducts(ctx context.Context, page, perPage int) ([]domain.StoreProduct, error) {
	if perPage <= 0 || perPage > perPageMax {
		perPage = perPageMax
	}
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("status", "publish")
	reqURL := fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Warn("store request failed",
				zap.Int("attempt", attempt),
				zap.Int("page", page),
				zap.Error(err),
			)
			lastErr = err
			sleepWithContext(ctx, exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("store returned error status",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
			)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrStoreFetch, resp.StatusCode)
			sleepWithContext(ctx, exponentialBackoff(attempt))
			continue
		}

		var products []domain.StoreProduct
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrStoreFetch, err)
		}

		c.logger.Debug("fetched product page",
			zap.Int("page", page),
			zap.Int("count", len(products)),
		)
		return products, nil
	}
	return nil, lastErr
}

// FetchAllProducts paginates through the store until the configured
// maximum is reached or a page comes back short of a full page.
func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.StoreProduct, error) {
	var all []domain.StoreProduct
	page := 1

	c.logger.Info("fetching all store products", zap.Int("max", c.maxProducts))

	for len(all) < c.maxProducts {
		perPage := c.maxProducts - len(all)
		if perPage > perPageMax {
			perPage = perPageMax
		}

		batch, err := c.FetchProducts(ctx, page, perPage)
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			// Keep what was fetched so far; the caller still gets a catalog.
			c.logger.Warn("pagination aborted",
				zap.Int("page", page),
				zap.Int("fetched", len(all)),
				zap.Error(err),
			)
			break
		}
		if len(batch) == 0 {
			break
		}

		all = append(all, batch...)
		page++

		if len(batch) < perPage {
			break
		}
	}

	if len(all) > c.maxProducts {
		all = all[:c.maxProducts]
	}
	c.logger.Info("store fetch complete", zap.Int("products", len(all)))
	return all, nil
}

// FetchProduct fetches a single product by its store id.
func (c *Client) FetchProduct(ctx context.Context, id int) (*domain.StoreProduct, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/products/%d", c.baseURL, id)
	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrStoreFetch, resp.StatusCode)
	}

	var product domain.StoreProduct
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrStoreFetch, err)
	}
	return &product, nil
}

// TotalProducts reads the published product count from the X-WP-Total
// header of a minimal one-item request.
func (c *Client) TotalProducts(ctx context.Context) (int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("per_page", "1")
	params.Set("page", "1")
	params.Set("status", "publish")
	reqURL := fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", domain.ErrStoreFetch, resp.StatusCode)
	}

	total := resp.Header.Get("X-WP-Total")
	if total == "" {
		return 0, fmt.Errorf("%w: X-WP-Total header missing", domain.ErrStoreFetch)
	}
	count, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid X-WP-Total %q", domain.ErrStoreFetch, total)
	}
	return count, nil
}

// TestConnection reports whether the store API answers an authenticated request.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.FetchProducts(ctx, 1, 1)
	if err != nil {
		c.logger.Warn("store connection test failed", zap.Error(err))
		return false
	}
	return true
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
