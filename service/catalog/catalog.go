package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront.GO/config"
	"storefront.GO/core/cache"
	categoryRepo "storefront.GO/model/repository/category"
	productRepo "storefront.GO/model/repository/product"
	categoryService "storefront.GO/service/category"
	"storefront.GO/service/filter"
	productService "storefront.GO/service/product"
	"storefront.GO/service/search"
)

// Catalog bundles the repositories and services that make up the engine.
type Catalog struct {
	DB           *gorm.DB
	CategoryRepo *categoryRepo.CategoryRepository
	ProductRepo  *productRepo.ProductRepository
	Categories   *categoryService.Service
	Products     *productService.Service
	Search       *search.Service
	Filter       *filter.Engine
}

// Options tune New. Zero values disable the optional parts.
type Options struct {
	Cache           *cache.Cache
	Search          *search.Service
	Redis           *redis.Client
	FacetCacheTTL   int64
	DefaultPageSize int
	MaxPageSize     int
}

// New wires a Catalog on db with fresh repositories.
func New(db *gorm.DB, opts Options) *Catalog {
	cats := categoryRepo.NewCategoryRepository(db)
	products := productRepo.NewProductRepository(db)
	categories := categoryService.NewService(cats, products, opts.Cache)
	return assemble(db, cats, products, categories, opts)
}

func assemble(db *gorm.DB, cats *categoryRepo.CategoryRepository, products *productRepo.ProductRepository, categories *categoryService.Service, opts Options) *Catalog {
	searchSvc := opts.Search
	if searchSvc == nil {
		searchSvc = search.NewService(nil, "")
	}
	productSvc := productService.NewService(products, categories, searchSvc)
	engine := filter.NewEngine(products, categories).
		WithSearch(searchSvc).
		WithPageSizes(opts.DefaultPageSize, opts.MaxPageSize)

	var facets filter.FacetCache
	switch {
	case opts.FacetCacheTTL <= 0:
	case opts.Redis != nil:
		facets = filter.NewRedisFacetCache(opts.Redis, time.Duration(opts.FacetCacheTTL)*time.Second)
	case opts.Cache != nil:
		facets = filter.NewMemoryFacetCache(opts.Cache, opts.FacetCacheTTL)
	}
	if facets != nil {
		engine.WithFacetCache(facets)
		productSvc.OnChange(func(ctx context.Context, _ uint) { facets.Invalidate(ctx) })
	}

	return &Catalog{
		DB:           db,
		CategoryRepo: cats,
		ProductRepo:  products,
		Categories:   categories,
		Products:     productSvc,
		Search:       searchSvc,
		Filter:       engine,
	}
}

var (
	shared     *Catalog
	sharedOnce sync.Once
)

// Get returns the process-wide catalog configured from the environment.
func Get(db *gorm.DB) *Catalog {
	sharedOnce.Do(func() {
		cfg := config.LoadAppConfig()
		cats := categoryRepo.GetCategoryRepository(db)
		products := productRepo.GetProductRepository(db)
		shared = assemble(db, cats, products, categoryService.GetCategoryService(cats, products), Options{
			Cache:           cache.GetInstance(),
			Search:          search.GetSearchService(),
			Redis:           config.RedisClient,
			FacetCacheTTL:   cfg.FacetCacheTTL,
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
		})
	})
	return shared
}
