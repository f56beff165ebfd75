package domain

import (
	"fmt"
	"strings"
)

// Product represents a single medical product from the catalog.
// Fields are validated at construction and never mutated afterwards.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// NewProduct creates a validated Product.
func NewProduct(id int, name, category string, price float64, description string) (Product, error) {
	if id < 0 {
		return Product{}, fmt.Errorf("%w: product id cannot be negative", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(category) == "" {
		return Product{}, fmt.Errorf("%w: product category cannot be empty", ErrValidation)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
	}

	return Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       price,
		Description: description,
	}, nil
}

// Recommendation is the result of a single recommendation request.
// Constructed fresh per request, never mutated after construction.
type Recommendation struct {
	Query      string    `json:"query"`
	Products   []Product `json:"products"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// NewRecommendation creates a validated Recommendation.
func NewRecommendation(query string, products []Product, confidence float64, reasoning string) (*Recommendation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: %v", ErrValidation, ErrEmptyQuery)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, fmt.Errorf("%w: confidence must be between 0.0 and 1.0, got %v", ErrValidation, confidence)
	}

	return &Recommendation{
		Query:      query,
		Products:   products,
		Confidence: confidence,
		Reasoning:  reasoning,
	}, nil
}

// RecommendationRule maps trigger keywords to product categories.
// Rules are static configuration, loaded once and never mutated.
type RecommendationRule struct {
	Keywords    []string
	Categories  []string
	Weight      float64
	Description string
}

// NewRule creates a validated RecommendationRule.
func NewRule(keywords, categories []string, weight float64, description string) (RecommendationRule, error) {
	if len(keywords) == 0 {
		return RecommendationRule{}, fmt.Errorf("%w: rule must have at least one keyword", ErrValidation)
	}
	if len(categories) == 0 {
		return RecommendationRule{}, fmt.Errorf("%w: rule must have at least one category", ErrValidation)
	}
	if weight < 0 {
		return RecommendationRule{}, fmt.Errorf("%w: rule weight cannot be negative", ErrValidation)
	}

	return RecommendationRule{
		Keywords:    keywords,
		Categories:  categories,
		Weight:      weight,
		Description: description,
	}, nil
}

// Matches reports whether any keyword occurs in the query as a
// case-insensitive substring. Matching is not word-bounded, so
// "medic" matches "paramedic".
func (r RecommendationRule) Matches(query string) bool {
	queryLower := strings.ToLower(query)
	for _, keyword := range r.Keywords {
		if strings.Contains(queryLower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
