package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront.GO/core/apperror"
	categoryEntity "storefront.GO/model/entity/category"
	productEntity "storefront.GO/model/entity/product"
)

// Store is the product persistence used by Service.
type Store interface {
	FindByID(ctx context.Context, id uint) (*productEntity.Product, error)
	Create(ctx context.Context, p *productEntity.Product) error
	Save(ctx context.Context, p *productEntity.Product) error
	SaveImages(ctx context.Context, productID uint, images []productEntity.Image) error
	Delete(ctx context.Context, id uint) error
}

// SchemaSource resolves the inherited attribute schema of a category.
type SchemaSource interface {
	EffectiveSchema(ctx context.Context, categoryID uint) ([]categoryEntity.AttributeDefinition, error)
}

// Indexer mirrors products into a search index.
type Indexer interface {
	IndexProducts(ctx context.Context, products []productEntity.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

// UpdateInput carries partial product changes. Nil fields are left untouched.
type UpdateInput struct {
	Name          *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	CategoryID    *uint
	Stock         *int
	Tags          *[]string
	Attributes    *[]productEntity.Attribute
}

// Service saves products so that attributes always satisfy the category
// schema and image orders stay contiguous.
type Service struct {
	store   Store
	schemas SchemaSource
	indexer Indexer
	changed []func(ctx context.Context, productID uint)
	log     *logrus.Entry
}

// NewService builds a Service. indexer may be nil.
func NewService(store Store, schemas SchemaSource, indexer Indexer) *Service {
	return &Service{
		store:   store,
		schemas: schemas,
		indexer: indexer,
		log:     logrus.WithField("service", "product"),
	}
}

// OnChange registers fn to run after a product is created, updated or deleted.
func (s *Service) OnChange(fn func(ctx context.Context, productID uint)) *Service {
	s.changed = append(s.changed, fn)
	return s
}

func (s *Service) notify(ctx context.Context, id uint) {
	for _, fn := range s.changed {
		fn(ctx, id)
	}
}

// Get returns one product with attributes and images.
func (s *Service) Get(ctx context.Context, id uint) (*productEntity.Product, error) {
	return s.store.FindByID(ctx, id)
}

func checkFields(p *productEntity.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.InvalidOperation("product", p.EntityID, "name is required")
	}
	if p.Price < 0 {
		return apperror.InvalidOperation("product", p.EntityID, "price must not be negative")
	}
	if p.Stock < 0 {
		return apperror.InvalidOperation("product", p.EntityID, "stock must not be negative")
	}
	for _, a := range p.Attributes {
		if strings.TrimSpace(a.Name) == "" {
			return apperror.InvalidOperation("product", p.EntityID, "attribute name is required")
		}
		for _, v := range a.Value {
			if strings.TrimSpace(v) == "" {
				return apperror.InvalidAttributeValue(a.Name, "blank value")
			}
		}
	}
	return nil
}

// ValidateAttributes checks p against the effective schema of its category.
func (s *Service) ValidateAttributes(ctx context.Context, p *productEntity.Product) error {
	schema, err := s.schemas.EffectiveSchema(ctx, p.CategoryID)
	if err != nil {
		return err
	}
	return Validate(p, schema)
}

// Create validates and inserts p. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, p *productEntity.Product) error {
	if err := checkFields(p); err != nil {
		return err
	}
	if err := s.ValidateAttributes(ctx, p); err != nil {
		return err
	}
	p.Images = Normalize(p.Images)
	if err := s.store.Create(ctx, p); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"product_id": p.EntityID, "category_id": p.CategoryID}).Info("product created")
	s.notify(ctx, p.EntityID)
	s.reindex(ctx, p)
	return nil
}

// Update applies in to product id. Attributes are revalidated when the
// category or the attributes change.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*productEntity.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	revalidate := false
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = in.OriginalPrice
	}
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		p.CategoryID = *in.CategoryID
		revalidate = true
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Attributes != nil {
		p.Attributes = *in.Attributes
		revalidate = true
	}
	if err := checkFields(p); err != nil {
		return nil, err
	}
	if revalidate {
		if err := s.ValidateAttributes(ctx, p); err != nil {
			return nil, err
		}
	}
	p.Images = Normalize(p.Images)
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"product_id": id, "revalidated": revalidate}).Info("product updated")
	s.notify(ctx, id)
	s.reindex(ctx, p)
	return p, nil
}

// Delete removes product id.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	s.notify(ctx, id)
	if s.indexer != nil {
		if err := s.indexer.DeleteProduct(ctx, id); err != nil {
			s.log.WithError(err).WithField("product_id", id).Warn("search index delete failed")
		}
	}
	return nil
}

// AddImages appends urls to the product's image list.
func (s *Service) AddImages(ctx context.Context, id uint, urls []string) (*productEntity.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, apperror.InvalidOperation("product", id, "no images given")
	}
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			return nil, apperror.InvalidOperation("product", id, "image url must not be empty")
		}
	}
	images := AddImages(p.Images, urls)
	if err := s.store.SaveImages(ctx, id, images); err != nil {
		return nil, err
	}
	p.Images = images
	s.log.WithFields(logrus.Fields{"product_id": id, "added": len(urls)}).Info("product images added")
	return p, nil
}

// ReorderImages replaces the product's image order with urls.
func (s *Service) ReorderImages(ctx context.Context, id uint, urls []string) (*productEntity.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := Reorder(id, p.Images, urls)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveImages(ctx, id, images); err != nil {
		return nil, err
	}
	p.Images = images
	s.log.WithField("product_id", id).Info("product images reordered")
	return p, nil
}

// ClearImages removes every image of product id. When the write fails the
// returned product still carries its previous images.
func (s *Service) ClearImages(ctx context.Context, id uint) (*productEntity.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.Images
	p.Images = []productEntity.Image{}
	if err := s.store.SaveImages(ctx, id, p.Images); err != nil {
		p.Images = previous
		s.log.WithError(err).WithField("product_id", id).Error("clearing product images failed, previous images restored")
		return p, fmt.Errorf("clear images of product %d: %w", id, err)
	}
	s.log.WithField("product_id", id).Info("product images cleared")
	return p, nil
}

func (s *Service) reindex(ctx context.Context, p *productEntity.Product) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexProducts(ctx, []productEntity.Product{*p}); err != nil {
		s.log.WithError(err).WithField("product_id", p.EntityID).Warn("search index update failed")
	}
}
