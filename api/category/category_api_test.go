package category

import (
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
	"storefront.GO/service/catalog"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.AutoMigrate(db))

	e := echo.New()
	RegisterCategoryRoutes(e.Group("/api"), catalog.New(db, catalog.Options{Cache: cache.NewCache()}))
	return e
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

func decodeCategory(t *testing.T, rec *httptest.ResponseRecorder) categoryEntity.Category {
	t.Helper()
	var c categoryEntity.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCategoryRoutes_Lifecycle(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/categories", `{"name":"Clothing","attributes":[{"name":"Length","type":"range","required":true,"min":10,"max":50}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	clothing := decodeCategory(t, rec)
	assert.Equal(t, "clothing", clothing.Alias)

	rec = do(e, http.MethodPost, "/api/categories", `{"name":"Outerwear","parent_id":1,"attributes":[{"name":"Type","type":"radio","required":true,"values":[{"label":"Jacket","value":"jacket"},{"label":"Vest","value":"vest"}]}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	outerwear := decodeCategory(t, rec)
	assert.Equal(t, 1, outerwear.Level)

	rec = do(e, http.MethodGet, "/api/categories/2/attributes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var schema []categoryEntity.AttributeDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	require.Len(t, schema, 2)
	assert.Equal(t, "Length", schema[0].Name)
	assert.Equal(t, "Type", schema[1].Name)

	rec = do(e, http.MethodGet, "/api/categories/2/path", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var path []categoryEntity.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &path))
	require.Len(t, path, 2)
	assert.Equal(t, clothing.EntityID, path[0].EntityID)

	rec = do(e, http.MethodPost, "/api/categories", `{"name":"Dup","alias":"clothing"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPatch, "/api/categories/1/parent", `{"parent_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/api/categories/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPut, "/api/categories/2", `{"name":"Coats","parent_id":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decodeCategory(t, rec)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 0, moved.Level)
	assert.Equal(t, "Coats", moved.Name)

	rec = do(e, http.MethodGet, "/api/categories/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var nodes []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	assert.Len(t, nodes, 2)

	rec = do(e, http.MethodDelete, "/api/categories/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"soft":false}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/categories/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/categories/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []categoryEntity.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Coats", list[0].Name)
}

func TestParentUpdate(t *testing.T) {
	p, err := parentUpdate(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = parentUpdate(json.RawMessage("null"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.ID)

	p, err = parentUpdate(json.RawMessage("7"))
	require.NoError(t, err)
	require.NotNil(t, p.ID)
	assert.Equal(t, uint(7), *p.ID)

	_, err = parentUpdate(json.RawMessage(`"x"`))
	assert.Error(t, err)
}
