package category

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"storefront.GO/core/apperror"
	categoryEntity "storefront.GO/model/entity/category"
)

type CategoryRepository struct {
	db *gorm.DB
}

var (
	categoryRepoInstance *CategoryRepository
	categoryRepoOnce     sync.Once
)

// GetCategoryRepository returns a process-wide repository for db.
func GetCategoryRepository(db *gorm.DB) *CategoryRepository {
	categoryRepoOnce.Do(func() {
		categoryRepoInstance = NewCategoryRepository(db)
	})
	return categoryRepoInstance
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByID returns the category or an apperror NotFound.
func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*categoryEntity.Category, error) {
	var cat categoryEntity.Category
	err := r.db.WithContext(ctx).First(&cat, "entity_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}
	return &cat, nil
}

// FindByAlias returns (nil, nil) when no category has alias.
func (r *CategoryRepository) FindByAlias(ctx context.Context, alias string) (*categoryEntity.Category, error) {
	var cats []categoryEntity.Category
	if err := r.db.WithContext(ctx).Where("alias = ?", alias).Limit(1).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("load category by alias %q: %w", alias, err)
	}
	if len(cats) == 0 {
		return nil, nil
	}
	return &cats[0], nil
}

// All returns every category, active or not, ordered by level then name.
func (r *CategoryRepository) All(ctx context.Context) ([]categoryEntity.Category, error) {
	var cats []categoryEntity.Category
	if err := r.db.WithContext(ctx).Order("level ASC, name ASC, entity_id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return cats, nil
}

// Children returns the direct children of parentID.
func (r *CategoryRepository) Children(ctx context.Context, parentID uint) ([]categoryEntity.Category, error) {
	var cats []categoryEntity.Category
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("entity_id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("load children of %d: %w", parentID, err)
	}
	return cats, nil
}

// Create inserts cat. A duplicate alias is reported as Conflict.
func (r *CategoryRepository) Create(ctx context.Context, cat *categoryEntity.Category) error {
	existing, err := r.FindByAlias(ctx, cat.Alias)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperror.Conflict("category", existing.EntityID, "alias %q must be unique", cat.Alias)
	}
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("category", 0, "alias %q must be unique", cat.Alias)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Save updates every column of cat. A duplicate alias is reported as Conflict.
func (r *CategoryRepository) Save(ctx context.Context, cat *categoryEntity.Category) error {
	existing, err := r.FindByAlias(ctx, cat.Alias)
	if err != nil {
		return err
	}
	if existing != nil && existing.EntityID != cat.EntityID {
		return apperror.Conflict("category", cat.EntityID, "alias %q must be unique", cat.Alias)
	}
	if err := r.db.WithContext(ctx).Save(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("category", cat.EntityID, "alias %q must be unique", cat.Alias)
		}
		return fmt.Errorf("save category %d: %w", cat.EntityID, err)
	}
	return nil
}

// UpdateLevel writes only the level column.
func (r *CategoryRepository) UpdateLevel(ctx context.Context, id uint, level int) error {
	err := r.db.WithContext(ctx).Model(&categoryEntity.Category{}).
		Where("entity_id = ?", id).
		Update("level", level).Error
	if err != nil {
		return fmt.Errorf("update level of %d: %w", id, err)
	}
	return nil
}

// Deactivate soft-deletes a category.
func (r *CategoryRepository) Deactivate(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&categoryEntity.Category{}).
		Where("entity_id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("deactivate category %d: %w", id, err)
	}
	return nil
}

// Delete removes a category row.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&categoryEntity.Category{}, "entity_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete category %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("category", id)
	}
	return nil
}
