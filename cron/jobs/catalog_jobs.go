package jobs

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront.GO/config"
	"storefront.GO/cron"
	"storefront.GO/service/catalog"
)

const (
	CategoryLevelsJob = "category_levels"
	SearchReindexJob  = "search_reindex"

	defaultReindexBatch = 500
)

func init() {
	cron.Register(CategoryLevelsJob, "@every 10m", func(ctx context.Context, _ ...string) error {
		c, err := sharedCatalog()
		if err != nil {
			return err
		}
		return RefreshCategoryLevels(ctx, c)
	})
	cron.Register(SearchReindexJob, "@hourly", func(ctx context.Context, args ...string) error {
		c, err := sharedCatalog()
		if err != nil {
			return err
		}
		batch := defaultReindexBatch
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				batch = n
			}
		}
		return ReindexSearch(ctx, c, batch)
	})
}

func sharedCatalog() (*catalog.Catalog, error) {
	db, err := config.GetDB()
	if err != nil {
		return nil, err
	}
	return catalog.Get(db), nil
}

// RefreshCategoryLevels repairs levels left stale by re-parenting.
func RefreshCategoryLevels(ctx context.Context, c *catalog.Catalog) error {
	changed, err := c.Categories.RefreshLevels(ctx)
	if err != nil {
		return err
	}
	if changed > 0 {
		logrus.WithField("changed", changed).Info("category levels repaired")
	}
	return nil
}

// ReindexSearch pushes the whole catalog to the search index.
func ReindexSearch(ctx context.Context, c *catalog.Catalog, batch int) error {
	if !c.Search.Enabled() {
		logrus.Debug("search index not configured, skipping reindex")
		return nil
	}
	_, err := c.Search.Reindex(ctx, c.ProductRepo, batch)
	return err
}
