package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront.GO/core/apperror"
	"storefront.GO/core/cache"
	categoryEntity "storefront.GO/model/entity/category"
	categoryRepo "storefront.GO/model/repository/category"
	productRepo "storefront.GO/model/repository/product"
)

const (
	// CacheTag marks every cache entry derived from the category table.
	CacheTag     = "catalog_category"
	treeCacheKey = "catalog_category:tree"
	treeCacheTTL = 300
	entityName   = "category"
)

// Store is the persistence the service needs; *categoryRepo.CategoryRepository satisfies it.
type Store interface {
	FindByID(ctx context.Context, id uint) (*categoryEntity.Category, error)
	All(ctx context.Context) ([]categoryEntity.Category, error)
	Create(ctx context.Context, cat *categoryEntity.Category) error
	Save(ctx context.Context, cat *categoryEntity.Category) error
	UpdateLevel(ctx context.Context, id uint, level int) error
	Deactivate(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// ProductReferences answers whether products still point at a category.
type ProductReferences interface {
	ExistsByCategory(ctx context.Context, categoryID uint) (bool, error)
}

// CreateInput carries the fields accepted when creating a category.
type CreateInput struct {
	Name        string                               `json:"name"`
	Alias       string                               `json:"alias"`
	Description string                               `json:"description"`
	ParentID    *uint                                `json:"parent_id"`
	Attributes  []categoryEntity.AttributeDefinition `json:"attributes"`
	IsActive    *bool                                `json:"is_active"`
}

// ParentUpdate moves a category. A nil ID moves it to the root.
type ParentUpdate struct {
	ID *uint
}

// UpdateInput carries partial changes. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Alias       *string
	Description *string
	Attributes  *[]categoryEntity.AttributeDefinition
	IsActive    *bool
	Parent      *ParentUpdate
}

// DeleteResult reports how a delete was carried out.
type DeleteResult struct {
	Soft bool `json:"soft"`
}

// Service owns the category tree: hierarchy edits, lookups and schema
// inheritance.
type Service struct {
	store    Store
	products ProductReferences
	cache    *cache.Cache
	log      *logrus.Entry
	mu       sync.Mutex
}

var (
	serviceInstance *Service
	serviceOnce     sync.Once
)

// GetCategoryService wires the service to the shared repositories and cache.
func GetCategoryService(catRepo *categoryRepo.CategoryRepository, prodRepo *productRepo.ProductRepository) *Service {
	serviceOnce.Do(func() {
		serviceInstance = NewService(catRepo, prodRepo, cache.GetInstance())
	})
	return serviceInstance
}

// NewService builds a Service. c may be nil to disable snapshot caching.
func NewService(store Store, products ProductReferences, c *cache.Cache) *Service {
	return &Service{
		store:    store,
		products: products,
		cache:    c,
		log:      logrus.WithField("service", "category"),
	}
}

// Tree returns a snapshot of the whole hierarchy, served from cache when warm.
func (s *Service) Tree(ctx context.Context) (*Tree, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(treeCacheKey); ok {
			return v.(*Tree), nil
		}
	}
	t, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(treeCacheKey, t, treeCacheTTL, []string{CacheTag})
	}
	return t, nil
}

func (s *Service) loadTree(ctx context.Context) (*Tree, error) {
	cats, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return NewTree(cats), nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.DeleteByTag(CacheTag)
	}
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, id uint) (*categoryEntity.Category, error) {
	return s.store.FindByID(ctx, id)
}

// List returns the active categories ordered by level then name.
func (s *Service) List(ctx context.Context) ([]categoryEntity.Category, error) {
	cats, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]categoryEntity.Category, 0, len(cats))
	for _, c := range cats {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// Roots returns the active top-level categories.
func (s *Service) Roots(ctx context.Context) ([]categoryEntity.Category, error) {
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	var roots []categoryEntity.Category
	for _, c := range t.Roots() {
		if c.IsActive {
			roots = append(roots, c)
		}
	}
	return roots, nil
}

// TreeNodes returns the nested view of active categories.
func (s *Service) TreeNodes(ctx context.Context) ([]Node, error) {
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return t.ActiveNodes(), nil
}

// Path returns the root-first chain ending at id.
func (s *Service) Path(ctx context.Context, id uint) ([]categoryEntity.Category, error) {
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return t.Path(id)
}

// Descendants returns every category below id, breadth first.
func (s *Service) Descendants(ctx context.Context, id uint) ([]categoryEntity.Category, error) {
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Get(id); !ok {
		return nil, apperror.NotFound(entityName, id)
	}
	return t.Descendants(id), nil
}

// ExpandIDs returns the union of every id and its descendants, keeping first
// occurrence order. Unknown ids contribute only themselves.
func (s *Service) ExpandIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	var out []uint
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		add(id)
		for _, d := range t.DescendantIDs(id) {
			add(d)
		}
	}
	return out, nil
}

// EffectiveSchema returns the attribute definitions that apply to products in
// category id, inherited from its ancestors.
func (s *Service) EffectiveSchema(ctx context.Context, id uint) ([]categoryEntity.AttributeDefinition, error) {
	path, err := s.Path(ctx, id)
	if err != nil {
		return nil, err
	}
	return EffectiveSchema(path), nil
}

func validateDefinitions(defs []categoryEntity.AttributeDefinition) error {
	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return apperror.InvalidOperation(entityName, 0, "%v", err)
		}
		if names[d.Name] {
			return apperror.InvalidOperation(entityName, 0, "attribute %q defined twice", d.Name)
		}
		names[d.Name] = true
	}
	return nil
}

// levelFor computes the level from the live parent row.
func (s *Service) levelFor(ctx context.Context, parentID *uint) (int, error) {
	if parentID == nil {
		return 0, nil
	}
	parent, err := s.store.FindByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("load parent %d: %w", *parentID, err)
	}
	return parent.Level + 1, nil
}

// Create inserts a new category. The alias defaults to a slug of the name.
func (s *Service) Create(ctx context.Context, in CreateInput) (*categoryEntity.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.InvalidOperation(entityName, 0, "name is required")
	}
	if err := validateDefinitions(in.Attributes); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	level, err := s.levelFor(ctx, in.ParentID)
	if err != nil {
		return nil, err
	}
	cat := &categoryEntity.Category{
		Name:        name,
		Alias:       categoryEntity.NormalizeAlias(in.Alias, name),
		Description: in.Description,
		ParentID:    in.ParentID,
		Level:       level,
		Attributes:  in.Attributes,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if cat.Attributes == nil {
		cat.Attributes = []categoryEntity.AttributeDefinition{}
	}
	if err := s.store.Create(ctx, cat); err != nil {
		return nil, err
	}
	s.invalidate()
	s.log.WithFields(logrus.Fields{"category_id": cat.EntityID, "level": cat.Level}).Info("category created")
	return cat, nil
}

// Update applies the non-nil fields of in. Parent changes follow SetParent rules.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*categoryEntity.Category, error) {
	if in.Attributes != nil {
		if err := validateDefinitions(*in.Attributes); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.InvalidOperation(entityName, id, "name is required")
		}
		cat.Name = name
	}
	if in.Alias != nil {
		cat.Alias = categoryEntity.NormalizeAlias(*in.Alias, cat.Name)
	}
	if in.Description != nil {
		cat.Description = *in.Description
	}
	if in.Attributes != nil {
		cat.Attributes = *in.Attributes
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if in.Parent != nil {
		if err := s.checkParent(ctx, id, in.Parent.ID); err != nil {
			return nil, err
		}
		cat.ParentID = in.Parent.ID
	}
	if err := s.save(ctx, cat); err != nil {
		return nil, err
	}
	s.log.WithField("category_id", id).Info("category updated")
	return cat, nil
}

// SetParent moves category id under newParentID, or to the root when nil.
// Only the moved category's level is recomputed; its descendants keep their
// stored levels until RefreshLevels runs.
func (s *Service) SetParent(ctx context.Context, id uint, newParentID *uint) (*categoryEntity.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, newParentID); err != nil {
		return nil, err
	}
	cat.ParentID = newParentID
	if err := s.save(ctx, cat); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"category_id": id, "parent_id": newParentID, "level": cat.Level}).Info("category moved")
	return cat, nil
}

// checkParent rejects a parent equal to id or inside id's subtree.
func (s *Service) checkParent(ctx context.Context, id uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return apperror.InvalidOperation(entityName, id, "category cannot be its own parent")
	}
	t, err := s.loadTree(ctx)
	if err != nil {
		return err
	}
	if _, ok := t.Get(*parentID); !ok {
		return apperror.NotFound(entityName, *parentID)
	}
	if t.IsDescendant(id, *parentID) {
		return apperror.InvalidOperation(entityName, id, "cannot set a descendant (%d) as parent", *parentID)
	}
	return nil
}

// save recomputes the level from the live parent and persists cat.
func (s *Service) save(ctx context.Context, cat *categoryEntity.Category) error {
	level, err := s.levelFor(ctx, cat.ParentID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	cat.Level = level
	if err := s.store.Save(ctx, cat); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes category id. Categories with children cannot be deleted;
// categories still referenced by products are only deactivated.
func (s *Service) Delete(ctx context.Context, id uint) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.loadTree(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	if _, ok := t.Get(id); !ok {
		return DeleteResult{}, apperror.NotFound(entityName, id)
	}
	if t.HasChildren(id) {
		return DeleteResult{}, apperror.Conflict(entityName, id, "category has subcategories; delete or move them first")
	}
	inUse, err := s.products.ExistsByCategory(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if inUse {
		if err := s.store.Deactivate(ctx, id); err != nil {
			return DeleteResult{}, err
		}
	} else if err := s.store.Delete(ctx, id); err != nil {
		return DeleteResult{}, err
	}
	s.invalidate()
	s.log.WithFields(logrus.Fields{"category_id": id, "soft": inUse}).Info("category deleted")
	return DeleteResult{Soft: inUse}, nil
}

// RefreshLevels rewrites every stored level that disagrees with the tree and
// returns how many rows changed.
func (s *Service) RefreshLevels(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.loadTree(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for id, level := range t.ExpectedLevels() {
		c, _ := t.Get(id)
		if c.Level == level {
			continue
		}
		if err := s.store.UpdateLevel(ctx, id, level); err != nil {
			return changed, err
		}
		changed++
	}
	if changed > 0 {
		s.invalidate()
	}
	s.log.WithField("changed", changed).Debug("category levels refreshed")
	return changed, nil
}
