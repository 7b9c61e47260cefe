package product

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"storefront.GO/core/apperror"
	productEntity "storefront.GO/model/entity/product"
)

type ProductRepository struct {
	db *gorm.DB
}

var (
	productRepoInstance *ProductRepository
	productRepoOnce     sync.Once
)

// GetProductRepository returns a process-wide repository for db.
func GetProductRepository(db *gorm.DB) *ProductRepository {
	productRepoOnce.Do(func() {
		productRepoInstance = NewProductRepository(db)
	})
	return productRepoInstance
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID loads a product with its attribute and image lists.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*productEntity.Product, error) {
	var p productEntity.Product
	err := r.db.WithContext(ctx).First(&p, "entity_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	list := []productEntity.Product{p}
	if err := r.attachChildren(r.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// FindByIDs loads products in the order of ids; unknown ids are skipped.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]productEntity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []productEntity.Product
	if err := r.db.WithContext(ctx).Where("entity_id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if err := r.attachChildren(r.db.WithContext(ctx), found); err != nil {
		return nil, err
	}
	byID := make(map[uint]productEntity.Product, len(found))
	for _, p := range found {
		byID[p.EntityID] = p
	}
	out := make([]productEntity.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ExistsByCategory reports whether any product references categoryID.
func (r *ProductRepository) ExistsByCategory(ctx context.Context, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&productEntity.Product{}).
		Where("category_id = ?", categoryID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count products of category %d: %w", categoryID, err)
	}
	return count > 0, nil
}

// Create inserts the product row plus attribute and image rows in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *productEntity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := replaceAttributes(tx, p.EntityID, p.Attributes); err != nil {
			return err
		}
		return replaceImages(tx, p.EntityID, p.Images)
	})
}

// Save rewrites the product row, its attributes and images in one transaction.
func (r *ProductRepository) Save(ctx context.Context, p *productEntity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("save product %d: %w", p.EntityID, err)
		}
		if err := replaceAttributes(tx, p.EntityID, p.Attributes); err != nil {
			return err
		}
		return replaceImages(tx, p.EntityID, p.Images)
	})
}

// SaveImages replaces only the image list of productID.
func (r *ProductRepository) SaveImages(ctx context.Context, productID uint, images []productEntity.Image) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceImages(tx, productID, images)
	})
}

// Delete removes a product and its child rows.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&productEntity.Product{}, "entity_id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("product", id)
		}
		if err := tx.Where("product_id = ?", id).Delete(&productEntity.ProductAttribute{}).Error; err != nil {
			return fmt.Errorf("delete attributes of %d: %w", id, err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&productEntity.ProductImage{}).Error; err != nil {
			return fmt.Errorf("delete images of %d: %w", id, err)
		}
		return nil
	})
}

// EachBatch calls fn with successive batches of fully loaded products.
func (r *ProductRepository) EachBatch(ctx context.Context, size int, fn func([]productEntity.Product) error) error {
	if size <= 0 {
		size = 500
	}
	var batch []productEntity.Product
	res := r.db.WithContext(ctx).Order("entity_id ASC").FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
		if err := r.attachChildren(r.db.WithContext(ctx), batch); err != nil {
			return err
		}
		return fn(batch)
	})
	return res.Error
}

func replaceAttributes(tx *gorm.DB, productID uint, attrs []productEntity.Attribute) error {
	if err := tx.Where("product_id = ?", productID).Delete(&productEntity.ProductAttribute{}).Error; err != nil {
		return fmt.Errorf("clear attributes of %d: %w", productID, err)
	}
	rows := productEntity.AttributeRows(productID, attrs)
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("write attributes of %d: %w", productID, err)
	}
	return nil
}

func replaceImages(tx *gorm.DB, productID uint, images []productEntity.Image) error {
	if err := tx.Where("product_id = ?", productID).Delete(&productEntity.ProductImage{}).Error; err != nil {
		return fmt.Errorf("clear images of %d: %w", productID, err)
	}
	if len(images) == 0 {
		return nil
	}
	rows := make([]productEntity.ProductImage, len(images))
	for i, img := range images {
		rows[i] = productEntity.ProductImage{ProductID: productID, URL: img.URL, Order: img.Order}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("write images of %d: %w", productID, err)
	}
	return nil
}

// attachChildren fills Attributes and Images for products with two batched reads.
func (r *ProductRepository) attachChildren(db *gorm.DB, products []productEntity.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uint, len(products))
	index := make(map[uint]int, len(products))
	for i, p := range products {
		ids[i] = p.EntityID
		index[p.EntityID] = i
	}

	var attrRows []productEntity.ProductAttribute
	if err := db.Where("product_id IN ?", ids).Order("product_id ASC, position ASC, value_id ASC").Find(&attrRows).Error; err != nil {
		return fmt.Errorf("load product attributes: %w", err)
	}
	grouped := make(map[uint][]productEntity.ProductAttribute)
	for _, row := range attrRows {
		grouped[row.ProductID] = append(grouped[row.ProductID], row)
	}

	var imageRows []productEntity.ProductImage
	if err := db.Where("product_id IN ?", ids).Order("product_id ASC, image_order ASC, value_id ASC").Find(&imageRows).Error; err != nil {
		return fmt.Errorf("load product images: %w", err)
	}

	for i := range products {
		products[i].Attributes = productEntity.AttributesFromRows(grouped[products[i].EntityID])
		products[i].Images = []productEntity.Image{}
	}
	for _, row := range imageRows {
		p := &products[index[row.ProductID]]
		p.Images = append(p.Images, productEntity.Image{URL: row.URL, Order: row.Order})
	}
	return nil
}
