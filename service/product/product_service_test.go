package product

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront.GO/config"
	"storefront.GO/core/apperror"
	"storefront.GO/core/cache"
	categoryEntity "storefront.GO/model/entity/category"
	productEntity "storefront.GO/model/entity/product"
	categoryRepo "storefront.GO/model/repository/category"
	productRepo "storefront.GO/model/repository/product"
	categoryService "storefront.GO/service/category"
)

type failingImages struct {
	*productRepo.ProductRepository
}

var errDiskFull = errors.New("disk full")

func (f failingImages) SaveImages(context.Context, uint, []productEntity.Image) error {
	return errDiskFull
}

type recordingIndexer struct {
	indexed []uint
	deleted []uint
}

func (r *recordingIndexer) IndexProducts(_ context.Context, products []productEntity.Product) error {
	for _, p := range products {
		r.indexed = append(r.indexed, p.EntityID)
	}
	return nil
}

func (r *recordingIndexer) DeleteProduct(_ context.Context, id uint) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type fixture struct {
	repo       *productRepo.ProductRepository
	categories *categoryService.Service
	indexer    *recordingIndexer
	svc        *Service
	clothing   *categoryEntity.Category
	outerwear  *categoryEntity.Category
	apparel    *categoryEntity.Category
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.AutoMigrate(db))

	repo := productRepo.NewProductRepository(db)
	cats := categoryService.NewService(categoryRepo.NewCategoryRepository(db), repo, cache.NewCache())
	ctx := context.Background()

	clothing, err := cats.Create(ctx, categoryService.CreateInput{
		Name: "Clothing",
		Attributes: []categoryEntity.AttributeDefinition{
			{Name: "Length", Type: categoryEntity.AttributeRange, Required: true, Min: f64(10), Max: f64(50)},
		},
	})
	require.NoError(t, err)
	outerwear, err := cats.Create(ctx, categoryService.CreateInput{
		Name:     "Outerwear",
		ParentID: &clothing.EntityID,
		Attributes: []categoryEntity.AttributeDefinition{
			{Name: "Type", Type: categoryEntity.AttributeRadio, Required: true, Values: options("jacket", "vest")},
		},
	})
	require.NoError(t, err)
	apparel, err := cats.Create(ctx, categoryService.CreateInput{
		Name:       "Apparel",
		Attributes: sizeSchema,
	})
	require.NoError(t, err)

	idx := &recordingIndexer{}
	return fixture{
		repo:       repo,
		categories: cats,
		indexer:    idx,
		svc:        NewService(repo, cats, idx),
		clothing:   clothing,
		outerwear:  outerwear,
		apparel:    apparel,
	}
}

func TestService_RejectsBlankAttributeValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &productEntity.Product{
		Name:       "Tee",
		Price:      15,
		CategoryID: f.apparel.EntityID,
		Attributes: []productEntity.Attribute{attr("Size", "M"), attr("Features", "", "organic")},
	}
	err := f.svc.Create(ctx, p)
	require.ErrorIs(t, err, apperror.ErrInvalidAttributeValue)
	name, _ := apperror.AttributeName(err)
	assert.Equal(t, "Features", name)
	assert.Zero(t, p.EntityID)

	p.Attributes = []productEntity.Attribute{attr("Size", "M"), attr("Features", "organic")}
	require.NoError(t, f.svc.Create(ctx, p))

	bad := []productEntity.Attribute{attr("Size", "M"), attr("Features", "organic", "  ")}
	_, err = f.svc.Update(ctx, p.EntityID, UpdateInput{Attributes: &bad})
	require.ErrorIs(t, err, apperror.ErrInvalidAttributeValue)

	unnamed := []productEntity.Attribute{attr("Size", "M"), attr(" ", "x")}
	_, err = f.svc.Update(ctx, p.EntityID, UpdateInput{Attributes: &unnamed})
	require.ErrorIs(t, err, apperror.ErrInvalidOperation)

	stored, err := f.svc.Get(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Equal(t, []productEntity.Attribute{attr("Size", "M"), attr("Features", "organic")}, stored.Attributes)
}

func TestService_CreateValidatesInheritedSchema(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok := &productEntity.Product{
		Name:       "Parka",
		Price:      120,
		CategoryID: f.outerwear.EntityID,
		Attributes: []productEntity.Attribute{attr("Length", "30"), attr("Type", "jacket")},
		Images:     []productEntity.Image{{URL: "b.jpg", Order: 4}, {URL: "a.jpg", Order: 1}},
	}
	require.NoError(t, f.svc.Create(ctx, ok))
	assert.NotZero(t, ok.EntityID)
	assert.Equal(t, []uint{ok.EntityID}, f.indexer.indexed)

	stored, err := f.svc.Get(ctx, ok.EntityID)
	require.NoError(t, err)
	assert.True(t, OrdersContiguous(stored.Images))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, urls(stored.Images))

	tooLong := &productEntity.Product{
		Name:       "Trench",
		Price:      90,
		CategoryID: f.outerwear.EntityID,
		Attributes: []productEntity.Attribute{attr("Length", "60"), attr("Type", "jacket")},
	}
	err = f.svc.Create(ctx, tooLong)
	assert.ErrorIs(t, err, apperror.ErrInvalidAttributeValue)
	assert.Zero(t, tooLong.EntityID)

	err = f.svc.Create(ctx, &productEntity.Product{Name: "Ghost", CategoryID: 999})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.svc.Create(ctx, &productEntity.Product{Name: "", CategoryID: f.apparel.EntityID})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

func TestService_SizeProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		attrs []productEntity.Attribute
		want  error
	}{
		{"missing", nil, apperror.ErrMissingAttribute},
		{"not allowed", []productEntity.Attribute{attr("Size", "XL")}, apperror.ErrInvalidAttributeValue},
		{"allowed", []productEntity.Attribute{attr("Size", "M")}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &productEntity.Product{Name: "Tee", Price: 15, CategoryID: f.apparel.EntityID, Attributes: tc.attrs}
			err := f.svc.Create(ctx, p)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestService_UpdateRevalidatesOnCategoryChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &productEntity.Product{Name: "Tee", Price: 15, CategoryID: f.apparel.EntityID, Attributes: []productEntity.Attribute{attr("Size", "M")}}
	require.NoError(t, f.svc.Create(ctx, p))

	price := 18.5
	updated, err := f.svc.Update(ctx, p.EntityID, UpdateInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 18.5, updated.Price)

	_, err = f.svc.Update(ctx, p.EntityID, UpdateInput{CategoryID: &f.outerwear.EntityID})
	assert.ErrorIs(t, err, apperror.ErrMissingAttribute)

	bad := []productEntity.Attribute{attr("Size", "XXL")}
	_, err = f.svc.Update(ctx, p.EntityID, UpdateInput{Attributes: &bad})
	assert.ErrorIs(t, err, apperror.ErrInvalidAttributeValue)

	stored, err := f.svc.Get(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Equal(t, f.apparel.EntityID, stored.CategoryID)
	assert.Equal(t, "M", stored.Attributes[0].Value.First())
	assert.Equal(t, 18.5, stored.Price)
}

func TestService_ImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &productEntity.Product{Name: "Tee", Price: 15, CategoryID: f.apparel.EntityID, Attributes: []productEntity.Attribute{attr("Size", "S")}}
	require.NoError(t, f.svc.Create(ctx, p))

	got, err := f.svc.AddImages(ctx, p.EntityID, []string{"1.jpg", "2.jpg"})
	require.NoError(t, err)
	assert.True(t, OrdersContiguous(got.Images))

	got, err = f.svc.AddImages(ctx, p.EntityID, []string{"3.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"}, urls(got.Images))

	got, err = f.svc.ReorderImages(ctx, p.EntityID, []string{"3.jpg", "1.jpg", "2.jpg"})
	require.NoError(t, err)
	stored, err := f.svc.Get(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Equal(t, urls(got.Images), urls(stored.Images))
	assert.True(t, OrdersContiguous(stored.Images))

	_, err = f.svc.ReorderImages(ctx, p.EntityID, []string{"3.jpg", "nope.jpg"})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	_, err = f.svc.AddImages(ctx, p.EntityID, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	cleared, err := f.svc.ClearImages(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Images)
	stored, err = f.svc.Get(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Empty(t, stored.Images)
}

func TestService_ClearImagesRestoresOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &productEntity.Product{
		Name:       "Tee",
		Price:      15,
		CategoryID: f.apparel.EntityID,
		Attributes: []productEntity.Attribute{attr("Size", "L")},
		Images:     []productEntity.Image{{URL: "a.jpg"}, {URL: "b.jpg", Order: 1}},
	}
	require.NoError(t, f.svc.Create(ctx, p))

	broken := NewService(failingImages{f.repo}, f.categories, nil)
	got, err := broken.ClearImages(ctx, p.EntityID)
	require.ErrorIs(t, err, errDiskFull)
	require.NotNil(t, got)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, urls(got.Images))

	stored, err := f.svc.Get(ctx, p.EntityID)
	require.NoError(t, err)
	assert.Len(t, stored.Images, 2)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var changed []uint
	f.svc.OnChange(func(_ context.Context, id uint) { changed = append(changed, id) })

	p := &productEntity.Product{Name: "Tee", Price: 15, CategoryID: f.apparel.EntityID, Attributes: []productEntity.Attribute{attr("Size", "L")}}
	require.NoError(t, f.svc.Create(ctx, p))
	require.NoError(t, f.svc.Delete(ctx, p.EntityID))
	assert.Equal(t, []uint{p.EntityID}, f.indexer.deleted)
	assert.Equal(t, []uint{p.EntityID, p.EntityID}, changed)

	_, err := f.svc.Get(ctx, p.EntityID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, p.EntityID), apperror.ErrNotFound)
}
