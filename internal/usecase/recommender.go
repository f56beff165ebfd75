package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/medirec/backend/internal/domain"
)

// Confidence levels for the fallback ladder
const (
	maxConfidence       = 0.95
	fallbackConfidence  = 0.3 // no rule matched, general categories shown
	emergencyConfidence = 0.1 // recommended categories had no stock
)

// DefaultMaxProducts is the product cap used when the caller passes no limit.
const DefaultMaxProducts = 10

// Reasoning messages attached to fallback recommendations
const (
	fallbackReasoning  = "Nie znaleziono specyficznych reguł. Pokazuję podstawowe produkty medyczne."
	emergencyReasoning = "Brak produktów w rekomendowanych kategoriach. Pokazuję dostępne produkty."
	reasoningPrefix    = "Rekomendacje na podstawie: "
)

// RuleMatch pairs a matched rule with its computed score.
type RuleMatch struct {
	Rule  domain.RecommendationRule
	Score float64
}

// catalog holds the product list together with its category index.
// It is built off to the side and swapped in wholesale, so in-flight
// readers keep a consistent view while the catalog is replaced.
type catalog struct {
	products   []domain.Product
	byCategory map[string][]domain.Product
}

// Recommender matches free-text queries against the rule set and turns
// the matched categories into a ranked product recommendation.
type Recommender struct {
	mu     sync.RWMutex
	cat    *catalog
	rules  []domain.RecommendationRule
	logger *zap.Logger
}

// NewRecommender creates a recommendation engine with an empty catalog.
func NewRecommender(logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		cat:    &catalog{byCategory: map[string][]domain.Product{}},
		rules:  Rules(),
		logger: logger,
	}
}

// ReplaceProducts swaps in a new catalog. The category index is grouped
// by product category, preserving load order within each group.
func (r *Recommender) ReplaceProducts(products []domain.Product) {
	next := &catalog{
		products:   products,
		byCategory: make(map[string][]domain.Product),
	}
	for _, p := range products {
		next.byCategory[p.Category] = append(next.byCategory[p.Category], p)
	}

	r.mu.Lock()
	r.cat = next
	r.mu.Unlock()

	r.logger.Info("catalog replaced",
		zap.Int("products", len(products)),
		zap.Int("categories", len(next.byCategory)),
	)
}

func (r *Recommender) snapshot() *catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cat
}

// FindMatches returns all rules matching the query with their scores,
// sorted descending by score. Ties keep rule definition order.
// Score is the rule weight, multiplied by (1 + 0.2 × n) when n keywords
// equal the entire query case-insensitively.
func (r *Recommender) FindMatches(query string) []RuleMatch {
	queryLower := strings.ToLower(query)

	var matches []RuleMatch
	for _, rule := range r.rules {
		if !rule.Matches(query) {
			continue
		}

		score := rule.Weight
		exactMatches := 0
		for _, keyword := range rule.Keywords {
			if strings.ToLower(keyword) == queryLower {
				exactMatches++
			}
		}
		if exactMatches > 0 {
			score *= 1 + float64(exactMatches)*0.2
		}

		matches = append(matches, RuleMatch{Rule: rule, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// ProductsForCategories returns products from the requested categories,
// deduplicated by id and sorted ascending by price, truncated to limit.
// Unknown categories contribute nothing.
func (r *Recommender) ProductsForCategories(categories []string, limit int) []domain.Product {
	cat := r.snapshot()

	var products []domain.Product
	for _, name := range categories {
		products = append(products, cat.byCategory[name]...)
	}

	seen := make(map[int]bool, len(products))
	unique := products[:0:0]
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Price < unique[j].Price
	})

	if limit >= 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// Recommend generates a product recommendation for the given query.
// A blank query is the only hard failure; an empty catalog or a query no
// rule understands still yields a response at degraded confidence.
func (r *Recommender) Recommend(query string, maxProducts int) (*domain.Recommendation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}

	matches := r.FindMatches(query)

	var (
		categories []string
		confidence float64
		reasoning  string
	)

	if len(matches) == 0 {
		r.logger.Info("no rule matched, using fallback categories", zap.String("query", query))
		categories = FallbackCategories()
		confidence = fallbackConfidence
		reasoning = fallbackReasoning
	} else {
		seen := make(map[string]bool)
		totalWeight := 0.0
		var descriptions []string

		for _, m := range matches {
			for _, c := range m.Rule.Categories {
				if !seen[c] {
					seen[c] = true
					categories = append(categories, c)
				}
			}
			totalWeight += m.Score
			descriptions = append(descriptions, m.Rule.Description)
		}

		confidence = totalWeight / float64(len(matches))
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		if len(descriptions) > 2 {
			descriptions = descriptions[:2]
		}
		reasoning = reasoningPrefix + strings.Join(descriptions, "; ")
	}

	products := r.ProductsForCategories(categories, maxProducts)

	if len(products) == 0 {
		r.logger.Warn("no products in recommended categories",
			zap.String("query", query),
			zap.Strings("categories", categories),
		)
		cat := r.snapshot()
		products = cat.products
		if len(products) > maxProducts {
			products = products[:maxProducts]
		}
		confidence = emergencyConfidence
		reasoning = emergencyReasoning
	}

	rec, err := domain.NewRecommendation(query, products, confidence, reasoning)
	if err != nil {
		return nil, fmt.Errorf("building recommendation: %w", err)
	}

	r.logger.Info("recommendation generated",
		zap.String("query", query),
		zap.Int("products", len(rec.Products)),
		zap.Float64("confidence", rec.Confidence),
	)
	return rec, nil
}

// SearchProducts returns products whose name or description contains the
// search term, case-insensitively, in catalog order.
func (r *Recommender) SearchProducts(term string, limit int) []domain.Product {
	termLower := strings.ToLower(term)
	cat := r.snapshot()

	var matched []domain.Product
	for _, p := range cat.products {
		if strings.Contains(strings.ToLower(p.Name), termLower) ||
			strings.Contains(strings.ToLower(p.Description), termLower) {
			matched = append(matched, p)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched
}

// Categories returns the distinct categories present in the catalog, sorted.
func (r *Recommender) Categories() []string {
	cat := r.snapshot()
	names := make([]string, 0, len(cat.byCategory))
	for name := range cat.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Products returns the full catalog in load order. Callers must treat
// the returned slice as read-only.
func (r *Recommender) Products() []domain.Product {
	return r.snapshot().products
}

// ProductCount returns the number of products in the catalog.
func (r *Recommender) ProductCount() int {
	return len(r.snapshot().products)
}
