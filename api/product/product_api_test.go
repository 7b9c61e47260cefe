package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront.GO/config"
	"storefront.GO/core/cache"
	categoryEntity "storefront.GO/model/entity/category"
	productEntity "storefront.GO/model/entity/product"
	"storefront.GO/service/catalog"
	categoryService "storefront.GO/service/category"
	"storefront.GO/service/filter"
)

func newServer(t *testing.T) (*echo.Echo, *catalog.Catalog) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.AutoMigrate(db))

	cat := catalog.New(db, catalog.Options{Cache: cache.NewCache(), FacetCacheTTL: 30})
	ctx := context.Background()
	_, err = cat.Categories.Create(ctx, categoryService.CreateInput{
		Name: "Apparel",
		Attributes: []categoryEntity.AttributeDefinition{{
			Name: "Size", Type: categoryEntity.AttributeRadio, Required: true,
			Values: []categoryEntity.AttributeOption{{Label: "S", Value: "S"}, {Label: "M", Value: "M"}, {Label: "L", Value: "L"}},
		}},
	})
	require.NoError(t, err)

	e := echo.New()
	RegisterProductRoutes(e.Group("/api"), cat)
	return e, cat
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeProduct(t *testing.T, rec *httptest.ResponseRecorder) productEntity.Product {
	t.Helper()
	var p productEntity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestProductRoutes_CreateValidation(t *testing.T) {
	e, _ := newServer(t)

	rec := do(e, http.MethodPost, "/api/products", `{"name":"Tee","price":15,"category_id":1,"attributes":[]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Size", body["attribute"])

	rec = do(e, http.MethodPost, "/api/products", `{"name":"Tee","price":15,"category_id":1,"attributes":[{"name":"Size","value":"XL"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPost, "/api/products", `{"name":"Tee","price":15,"category_id":1,"stock":4,"attributes":[{"name":"Size","value":"M"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeProduct(t, rec)
	assert.NotZero(t, created.EntityID)

	rec = do(e, http.MethodPost, "/api/products", `{"name":"Ghost","price":1,"category_id":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductRoutes_UpdateAndImages(t *testing.T) {
	e, _ := newServer(t)

	rec := do(e, http.MethodPost, "/api/products", `{"name":"Tee","price":15,"category_id":1,"attributes":[{"name":"Size","value":"S"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPut, "/api/products/1", `{"price":19.5,"attributes":[{"name":"Size","value":["L"]}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeProduct(t, rec)
	assert.Equal(t, 19.5, updated.Price)
	assert.Equal(t, "L", updated.Attributes[0].Value.First())

	rec = do(e, http.MethodPost, "/api/products/1/images", `{"urls":["a.jpg","b.jpg","c.jpg"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPatch, "/api/products/1/images/reorder", `{"urls":["c.jpg","a.jpg","b.jpg"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	reordered := decodeProduct(t, rec)
	require.Len(t, reordered.Images, 3)
	for i, img := range reordered.Images {
		assert.Equal(t, i, img.Order)
	}
	assert.Equal(t, "c.jpg", reordered.Images[0].URL)

	rec = do(e, http.MethodPatch, "/api/products/1/images/reorder", `{"urls":["missing.jpg"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/api/products/1/images", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeProduct(t, rec).Images)

	rec = do(e, http.MethodDelete, "/api/products/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductRoutes_FilterAndSearch(t *testing.T) {
	e, _ := newServer(t)
	for _, body := range []string{
		`{"name":"Linen Shirt","price":30,"category_id":1,"stock":2,"tags":["summer"],"attributes":[{"name":"Size","value":"M"}]}`,
		`{"name":"Wool Shirt","price":60,"category_id":1,"stock":0,"tags":["winter"],"attributes":[{"name":"Size","value":"L"}]}`,
		`{"name":"Parka","price":120,"category_id":1,"stock":1,"tags":["winter","outdoor"],"attributes":[{"name":"Size","value":"L"}]}`,
	} {
		rec := do(e, http.MethodPost, "/api/products", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodPost, "/api/products/filter", `{"categories":[1],"attributes":{"Size":["L"]},"sort":"price_desc","limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res filter.FilterResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Parka", res.Products[0].Name)
	assert.Equal(t, []filter.FacetValue{{Value: "L", Count: 2}, {Value: "M", Count: 1}}, res.Facets["Size"])

	rec = do(e, http.MethodGet, "/api/products/search?q=shirt&in_stock=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = filter.FilterResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Linen Shirt", res.Products[0].Name)

	rec = do(e, http.MethodGet, "/api/products/search?q=shirt&max_price=40", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = filter.FilterResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(1), res.Total)

	rec = do(e, http.MethodPost, "/api/products/filter", `{"tags":["winter"],"sort":"price_asc"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = filter.FilterResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Products, 2)
	assert.Equal(t, "Wool Shirt", res.Products[0].Name)
	assert.Equal(t, "Parka", res.Products[1].Name)

	rec = do(e, http.MethodGet, "/api/products/search?q=shirt&tag=summer&tag=outdoor", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = filter.FilterResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Linen Shirt", res.Products[0].Name)

	rec = do(e, http.MethodGet, "/api/products/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/products/search?q=x&page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
