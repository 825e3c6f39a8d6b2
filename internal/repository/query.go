package repository

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPerPage is the page size used when the caller does not specify one.
	DefaultPerPage = 15
	// MaxPerPage is the hard upper bound for page size; larger values are clamped.
	MaxPerPage = 50

	// MinRelatedLimit and MaxRelatedLimit bound the related-products sample size.
	MinRelatedLimit = 1
	MaxRelatedLimit = 20
)

// SortKey enumerates the accepted search orderings.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortNewest    SortKey = "newest"
)

var sortKeys = map[SortKey]struct{}{
	SortRelevance: {},
	SortPriceAsc:  {},
	SortPriceDesc: {},
	SortNameAsc:   {},
	SortNameDesc:  {},
	SortNewest:    {},
}

var (
	slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	tagRe  = regexp.MustCompile(`<[^>]*>`)
)

// ValidSlug reports whether s is a well-formed lowercase-hyphen slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// SanitizeQuery strips markup tags and surrounding whitespace from free-text
// search input.
func SanitizeQuery(q string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(q, ""))
}

// SearchFilters narrows a product search. Nil pointer fields mean "not filtered".
type SearchFilters struct {
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	BrandID    *uuid.UUID       `json:"brand_id,omitempty"`
	MinPrice   *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal `json:"max_price,omitempty"`
	Sort       SortKey          `json:"sort,omitempty"`
}

// SearchParams is a validated product search request.
type SearchParams struct {
	Query   string
	Filters SearchFilters
	Page    int
	PerPage int
}

// Normalize sanitizes the query text, clamps pagination, defaults the sort
// key and validates the filter shape. It mutates the receiver and must be
// called before the params reach storage or a cache key.
func (p *SearchParams) Normalize() error {
	p.Query = SanitizeQuery(p.Query)

	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	if p.Filters.Sort == "" {
		p.Filters.Sort = SortRelevance
	}
	if _, ok := sortKeys[p.Filters.Sort]; !ok {
		return NewValidationError("sort", "unknown sort key")
	}

	if p.Filters.MinPrice != nil && p.Filters.MinPrice.Sign() < 0 {
		return NewValidationError("min_price", "must not be negative")
	}
	if p.Filters.MaxPrice != nil && p.Filters.MaxPrice.Sign() < 0 {
		return NewValidationError("max_price", "must not be negative")
	}
	if p.Filters.MinPrice != nil && p.Filters.MaxPrice != nil &&
		p.Filters.MaxPrice.Cmp(*p.Filters.MinPrice) < 0 {
		return NewValidationError("max_price", "must be greater than or equal to min_price")
	}

	return nil
}
