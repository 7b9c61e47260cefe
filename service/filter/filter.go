package filter

import (
	"strings"

	productEntity "storefront.GO/model/entity/product"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
	// SortRelevance keeps search hit order. It is the default when a text
	// query is given and falls back to rating without a search index.
	SortRelevance = "relevance"
)

// PriceRange is an inclusive price window. A nil bound is open.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FilterRequest describes one faceted listing.
type FilterRequest struct {
	CategoryIDs []uint              `json:"categories"`
	PriceRange  *PriceRange         `json:"price_range"`
	Attributes  map[string][]string `json:"attributes"`
	Tags        []string            `json:"tags"`
	Query       string              `json:"query"`
	InStock     bool                `json:"in_stock"`
	Sort        string              `json:"sort"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
}

// FacetValue is the number of products carrying one attribute value.
type FacetValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// FacetMap groups facet values by attribute name.
type FacetMap map[string][]FacetValue

// FilterResult is one page of products plus facets over the base set.
type FilterResult struct {
	Products    []productEntity.Product `json:"products"`
	Total       int64                   `json:"total"`
	TotalPages  int                     `json:"total_pages"`
	CurrentPage int                     `json:"current_page"`
	Facets      FacetMap                `json:"facets"`
}

// orderClause maps a sort key to SQL. Unknown keys sort newest first.
func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "p.price ASC"
	case SortPriceDesc:
		return "p.price DESC"
	case SortRating:
		return "p.average_rating DESC"
	default:
		return "p.created_at DESC"
	}
}

// normalizeTags trims and dedupes tags, dropping blanks.
func normalizeTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// attributeSelections drops names with no accepted values.
func attributeSelections(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for name, values := range in {
		if len(values) > 0 {
			out[name] = values
		}
	}
	return out
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
