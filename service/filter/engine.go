package filter

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	productEntity "storefront.GO/model/entity/product"
	productRepo "storefront.GO/model/repository/product"
)

// searchHitLimit caps how many ids a text query may resolve to.
const searchHitLimit = 1000

// ProductStore runs the two reads behind a filter request.
type ProductStore interface {
	List(ctx context.Context, q productRepo.ListQuery) ([]productEntity.Product, int64, error)
	FacetCounts(ctx context.Context, c productRepo.Criteria) ([]productRepo.FacetRow, error)
}

// CategoryExpander turns category ids into the ids of their subtrees.
type CategoryExpander interface {
	ExpandIDs(ctx context.Context, ids []uint) ([]uint, error)
}

// TextSearcher resolves a free text query to product ids.
type TextSearcher interface {
	Enabled() bool
	SearchIDs(ctx context.Context, query string, limit int) ([]uint, error)
}

type Engine struct {
	products     ProductStore
	categories   CategoryExpander
	searcher     TextSearcher
	facets       FacetCache
	defaultLimit int
	maxLimit     int
	log          *logrus.Entry
}

func NewEngine(products ProductStore, categories CategoryExpander) *Engine {
	return &Engine{
		products:     products,
		categories:   categories,
		defaultLimit: 10,
		maxLimit:     100,
		log:          logrus.WithField("service", "filter"),
	}
}

// WithSearch routes text queries through s when it is enabled.
func (e *Engine) WithSearch(s TextSearcher) *Engine {
	e.searcher = s
	return e
}

// WithFacetCache caches facet tallies in c.
func (e *Engine) WithFacetCache(c FacetCache) *Engine {
	e.facets = c
	return e
}

// WithPageSizes overrides the default and maximum page size.
func (e *Engine) WithPageSizes(defaultLimit, maxLimit int) *Engine {
	if defaultLimit > 0 {
		e.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		e.maxLimit = maxLimit
	}
	if e.defaultLimit > e.maxLimit {
		e.defaultLimit = e.maxLimit
	}
	return e
}

func (e *Engine) pageAndLimit(req FilterRequest) (int, int) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	return page, limit
}

// baseCriteria builds the category, price, text and stock restriction that
// both the listing and the facets share.
func (e *Engine) baseCriteria(ctx context.Context, req FilterRequest) (productRepo.Criteria, error) {
	var c productRepo.Criteria
	if len(req.CategoryIDs) > 0 {
		ids, err := e.categories.ExpandIDs(ctx, req.CategoryIDs)
		if err != nil {
			return c, err
		}
		c.CategoryIDs = ids
	}
	if req.PriceRange != nil {
		c.MinPrice = req.PriceRange.Min
		c.MaxPrice = req.PriceRange.Max
	}
	c.InStock = req.InStock
	c.Tags = normalizeTags(req.Tags)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c, nil
	}
	if e.searcher != nil && e.searcher.Enabled() {
		ids, err := e.searcher.SearchIDs(ctx, query, searchHitLimit)
		if err != nil {
			return c, err
		}
		c.RestrictIDs = true
		c.IDs = ids
		return c, nil
	}
	c.NameLike = query
	return c, nil
}

// relevanceOrder reports whether results follow the text query ranking.
func relevanceOrder(req FilterRequest) bool {
	if strings.TrimSpace(req.Query) == "" {
		return false
	}
	return req.Sort == "" || req.Sort == SortRelevance
}

// Filter returns one page of matching products with facets. Facets count
// the base set only, so selecting a value never changes the tallies of its
// own attribute.
func (e *Engine) Filter(ctx context.Context, req FilterRequest) (*FilterResult, error) {
	start := time.Now()
	page, limit := e.pageAndLimit(req)

	base, err := e.baseCriteria(ctx, req)
	if err != nil {
		return nil, err
	}
	list := productRepo.ListQuery{
		Criteria:   base,
		Attributes: attributeSelections(req.Attributes),
		OrderBy:    orderClause(req.Sort),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}
	if relevanceOrder(req) {
		if base.RestrictIDs {
			list.RankIDs = base.IDs
		} else {
			list.OrderBy = orderClause(SortRating)
		}
	}

	var (
		products []productEntity.Product
		total    int64
		facets   FacetMap
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, total, err = e.products.List(gctx, list)
		return err
	})
	g.Go(func() error {
		var err error
		facets, err = e.Facets(gctx, base)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if products == nil {
		products = []productEntity.Product{}
	}

	e.log.WithFields(logrus.Fields{
		"total":   total,
		"page":    page,
		"took_ms": time.Since(start).Milliseconds(),
	}).Debug("filter")

	return &FilterResult{
		Products:    products,
		Total:       total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		Facets:      facets,
	}, nil
}

// Facets tallies attribute values over c, using the facet cache when set.
func (e *Engine) Facets(ctx context.Context, c productRepo.Criteria) (FacetMap, error) {
	key := facetKey(c)
	if e.facets != nil {
		if cached, ok := e.facets.Get(ctx, key); ok {
			return cached, nil
		}
	}
	rows, err := e.products.FacetCounts(ctx, c)
	if err != nil {
		return nil, err
	}
	facets := groupFacets(rows)
	if e.facets != nil {
		e.facets.Set(ctx, key, facets)
	}
	return facets, nil
}

// groupFacets orders each attribute's values by count desc, then value asc.
func groupFacets(rows []productRepo.FacetRow) FacetMap {
	facets := make(FacetMap)
	for _, r := range rows {
		facets[r.Name] = append(facets[r.Name], FacetValue{Value: r.Value, Count: r.Count})
	}
	for _, values := range facets {
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
	}
	return facets
}
