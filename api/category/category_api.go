package category

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	categoryEntity "storefront.GO/model/entity/category"
	"storefront.GO/service/catalog"
	categoryService "storefront.GO/service/category"
)

func init() {
	api.RegisterModule(RegisterCategoryRoutes)
}

type updateRequest struct {
	Name        *string                               `json:"name"`
	Alias       *string                               `json:"alias"`
	Description *string                               `json:"description"`
	Attributes  *[]categoryEntity.AttributeDefinition `json:"attributes"`
	IsActive    *bool                                 `json:"is_active"`
	ParentID    json.RawMessage                       `json:"parent_id"`
}

// parentUpdate distinguishes an absent parent_id from an explicit null.
func parentUpdate(raw json.RawMessage) (*categoryService.ParentUpdate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if string(raw) == "null" {
		return &categoryService.ParentUpdate{}, nil
	}
	var id uint
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	return &categoryService.ParentUpdate{ID: &id}, nil
}

// RegisterCategoryRoutes mounts /categories on g.
func RegisterCategoryRoutes(g *echo.Group, cat *catalog.Catalog) {
	svc := cat.Categories
	cg := g.Group("/categories")

	// GET /api/categories – active categories
	cg.GET("", func(c echo.Context) error {
		list, err := svc.List(c.Request().Context())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, list)
	})

	// GET /api/categories/tree – nested active tree
	cg.GET("/tree", func(c echo.Context) error {
		nodes, err := svc.TreeNodes(c.Request().Context())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, nodes)
	})

	cg.GET("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		found, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, found)
	})

	cg.GET("/:id/path", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		path, err := svc.Path(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, path)
	})

	cg.GET("/:id/descendants", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		list, err := svc.Descendants(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, list)
	})

	// GET /api/categories/:id/attributes – inherited schema
	cg.GET("/:id/attributes", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		schema, err := svc.EffectiveSchema(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, schema)
	})

	cg.POST("", func(c echo.Context) error {
		var in categoryService.CreateInput
		if err := c.Bind(&in); err != nil {
			return api.BadRequest(c, err.Error())
		}
		created, err := svc.Create(c.Request().Context(), in)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	})

	cg.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		var req updateRequest
		if err := c.Bind(&req); err != nil {
			return api.BadRequest(c, err.Error())
		}
		parent, err := parentUpdate(req.ParentID)
		if err != nil {
			return api.BadRequest(c, "parent_id must be a category id or null")
		}
		updated, err := svc.Update(c.Request().Context(), id, categoryService.UpdateInput{
			Name:        req.Name,
			Alias:       req.Alias,
			Description: req.Description,
			Attributes:  req.Attributes,
			IsActive:    req.IsActive,
			Parent:      parent,
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	})

	// PATCH /api/categories/:id/parent – {"parent_id": 3} or {"parent_id": null}
	cg.PATCH("/:id/parent", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		var body struct {
			ParentID *uint `json:"parent_id"`
		}
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		moved, err := svc.SetParent(c.Request().Context(), id, body.ParentID)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, moved)
	})

	cg.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		res, err := svc.Delete(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})
}
