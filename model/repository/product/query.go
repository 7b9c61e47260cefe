package product

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	productEntity "storefront.GO/model/entity/product"
)

// Criteria is the base restriction shared by listing and facet tallies.
type Criteria struct {
	// CategoryIDs restricts to these categories; empty means any category.
	CategoryIDs []uint
	MinPrice    *float64
	MaxPrice    *float64
	// RestrictIDs limits the set to IDs (possibly none), e.g. search hits.
	RestrictIDs bool
	IDs         []uint
	// NameLike is a case-insensitive substring match on name.
	NameLike string
	InStock  bool
	// Tags matches products carrying any of the tags.
	Tags []string
}

// ListQuery is a paged listing over Criteria plus attribute selections.
type ListQuery struct {
	Criteria
	// Attributes maps an attribute name to accepted values: AND across
	// names, OR within one name.
	Attributes map[string][]string
	OrderBy    string
	// RankIDs orders by position in the list, overriding OrderBy.
	RankIDs []uint
	Offset  int
	Limit   int
}

// FacetRow is one (attribute, value) tally.
type FacetRow struct {
	Name  string `gorm:"column:name"`
	Value string `gorm:"column:value"`
	Count int64  `gorm:"column:count"`
}

func (r *ProductRepository) applyCriteria(q *gorm.DB, c Criteria) *gorm.DB {
	if len(c.CategoryIDs) > 0 {
		q = q.Where("p.category_id IN ?", c.CategoryIDs)
	}
	if c.MinPrice != nil {
		q = q.Where("p.price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		q = q.Where("p.price <= ?", *c.MaxPrice)
	}
	if c.RestrictIDs {
		if len(c.IDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("p.entity_id IN ?", c.IDs)
		}
	}
	if c.NameLike != "" {
		q = q.Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(c.NameLike)+"%")
	}
	if c.InStock {
		q = q.Where("p.stock > 0")
	}
	if len(c.Tags) > 0 {
		anyTag := make([]clause.Expression, len(c.Tags))
		for i, tag := range c.Tags {
			anyTag[i] = datatypes.JSONArrayQuery("p.tags").Contains(tag)
		}
		if len(anyTag) == 1 {
			q = q.Where(anyTag[0])
		} else {
			q = q.Where(clause.Or(anyTag...))
		}
	}
	return q
}

// rankOrder sorts rows by their position in ids; rows not listed go last.
func rankOrder(ids []uint) clause.OrderBy {
	var sql strings.Builder
	vars := make([]interface{}, 0, 2*len(ids)+1)
	sql.WriteString("CASE p.entity_id")
	for i, id := range ids {
		sql.WriteString(" WHEN ? THEN ?")
		vars = append(vars, id, i)
	}
	sql.WriteString(" ELSE ? END, p.entity_id DESC")
	vars = append(vars, len(ids))
	return clause.OrderBy{Expression: clause.Expr{SQL: sql.String(), Vars: vars}}
}

// List returns one page of products matching q and the total match count.
func (r *ProductRepository) List(ctx context.Context, q ListQuery) ([]productEntity.Product, int64, error) {
	db := r.db.WithContext(ctx)
	base := r.applyCriteria(db.Table("catalog_product AS p"), q.Criteria)

	names := make([]string, 0, len(q.Attributes))
	for name, values := range q.Attributes {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sub := db.Table("catalog_product_attribute").
			Select("product_id").
			Where("name = ? AND value IN ?", name, q.Attributes[name])
		base = base.Where("p.entity_id IN (?)", sub)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "p.created_at DESC"
	}
	var products []productEntity.Product
	page := base.Select("p.*")
	if len(q.RankIDs) > 0 {
		page = page.Order(rankOrder(q.RankIDs))
	} else {
		page = page.Order(orderBy).Order("p.entity_id DESC")
	}
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	if q.Offset > 0 {
		page = page.Offset(q.Offset)
	}
	if err := page.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if err := r.attachChildren(db, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FacetCounts tallies distinct products per (attribute, value) over c.
func (r *ProductRepository) FacetCounts(ctx context.Context, c Criteria) ([]FacetRow, error) {
	q := r.db.WithContext(ctx).Table("catalog_product_attribute AS a").
		Select("a.name AS name, a.value AS value, COUNT(DISTINCT a.product_id) AS count").
		Joins("JOIN catalog_product AS p ON p.entity_id = a.product_id").
		Where("a.value <> ''")
	q = r.applyCriteria(q, c)

	var rows []FacetRow
	if err := q.Group("a.name, a.value").Order("a.name ASC, a.value ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("facet counts: %w", err)
	}
	return rows, nil
}
