package woo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirec/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://sklep.example.com/", "ck_test", "cs_test", 10*time.Second, 200, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://sklep.example.com/wp-json/wc/v3", client.baseURL)
	assert.Equal(t, "ck_test", client.consumerKey)
	assert.Equal(t, "cs_test", client.consumerSecret)
	assert.Equal(t, 200, client.maxProducts)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("https://sklep.example.com", "ck", "cs", 0, 0, nil)

	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, perPageMax, client.maxProducts)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func storeProducts(n, startID int) []domain.StoreProduct {
	products := make([]domain.StoreProduct, n)
	for i := range products {
		products[i] = domain.StoreProduct{
			ID:    startID + i,
			Name:  "Produkt",
			Price: "10.00",
		}
	}
	return products
}

func TestFetchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "publish", r.URL.Query().Get("status"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		json.NewEncoder(w).Encode(storeProducts(20, 100))
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck_test", "cs_test", 5*time.Second, 100, nil)

	products, err := client.FetchProducts(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Len(t, products, 20)
	assert.Equal(t, 100, products[0].ID)
}

func TestFetchProducts_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	_, err := client.FetchProducts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchProducts_RetriesServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(storeProducts(1, 1))
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	products, err := client.FetchProducts(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 2, attempts)
}

func TestFetchProducts_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	_, err := client.FetchProducts(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrStoreFetch)
	assert.Equal(t, maxAttempts, attempts)
}

func TestFetchAllProducts_Pagination(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		switch page {
		case "1":
			json.NewEncoder(w).Encode(storeProducts(100, 1))
		default:
			// Short page ends the pagination.
			json.NewEncoder(w).Encode(storeProducts(30, 101))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 250, nil)

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 130)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, 130, products[129].ID)
}

func TestFetchAllProducts_StopsAtConfiguredMaximum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always a full page of whatever was asked for.
		perPage := r.URL.Query().Get("per_page")
		switch perPage {
		case "100":
			json.NewEncoder(w).Encode(storeProducts(100, 1))
		default:
			json.NewEncoder(w).Encode(storeProducts(50, 101))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 150, nil)

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 150)
}

func TestFetchProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)
		json.NewEncoder(w).Encode(domain.StoreProduct{ID: 42, Name: "Stetoskop", Price: "299.99"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	product, err := client.FetchProduct(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, product.ID)
	assert.Equal(t, "Stetoskop", product.Name)
}

func TestFetchProduct_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	_, err := client.FetchProduct(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTotalProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Header().Set("X-WP-Total", "1234")
		json.NewEncoder(w).Encode(storeProducts(1, 1))
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	total, err := client.TotalProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1234, total)
}

func TestTotalProducts_MissingHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(storeProducts(1, 1))
	}))
	defer server.Close()

	client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)

	_, err := client.TotalProducts(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreFetch)
}

func TestTestConnection(t *testing.T) {
	t.Run("reachable store", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(storeProducts(1, 1))
		}))
		defer server.Close()

		client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)
		assert.True(t, client.TestConnection(context.Background()))
	})

	t.Run("unreachable store", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "ck", "cs", 5*time.Second, 100, nil)
		assert.False(t, client.TestConnection(context.Background()))
	})
}
