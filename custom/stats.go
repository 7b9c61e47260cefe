package custom

import (
	"context"

	productEntity "storefront.GO/model/entity/product"
	"storefront.GO/service/catalog"
)

type CatalogStats struct {
	Categories int   `json:"categories"`
	Roots      int   `json:"roots"`
	Products   int64 `json:"products"`
}

func Stats(ctx context.Context, c *catalog.Catalog) (CatalogStats, error) {
	tree, err := c.Categories.Tree(ctx)
	if err != nil {
		return CatalogStats{}, err
	}
	var n int64
	if err := c.DB.WithContext(ctx).Model(&productEntity.Product{}).Count(&n).Error; err != nil {
		return CatalogStats{}, err
	}
	return CatalogStats{Categories: tree.Len(), Roots: len(tree.Roots()), Products: n}, nil
}
