package product

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	productEntity "storefront.GO/model/entity/product"
	"storefront.GO/service/catalog"
	"storefront.GO/service/filter"
	productService "storefront.GO/service/product"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

type updateRequest struct {
	Name          *string                    `json:"name"`
	Description   *string                    `json:"description"`
	Price         *float64                   `json:"price"`
	OriginalPrice *float64                   `json:"original_price"`
	CategoryID    *uint                      `json:"category_id"`
	Stock         *int                       `json:"stock"`
	Tags          *[]string                  `json:"tags"`
	Attributes    *[]productEntity.Attribute `json:"attributes"`
}

type imagesRequest struct {
	URLs []string `json:"urls"`
}

// RegisterProductRoutes mounts /products on g.
func RegisterProductRoutes(g *echo.Group, cat *catalog.Catalog) {
	svc := cat.Products
	engine := cat.Filter
	pg := g.Group("/products")

	// POST /api/products/filter – faceted listing
	pg.POST("/filter", func(c echo.Context) error {
		var req filter.FilterRequest
		if err := c.Bind(&req); err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := engine.Filter(c.Request().Context(), req)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/products/search?q=tent&category=2&min_price=10&in_stock=true&tag=camping
	// Without sort, results follow search relevance.
	pg.GET("/search", func(c echo.Context) error {
		var (
			req        filter.FilterRequest
			categoryID uint
			minPrice   float64
			maxPrice   float64
		)
		err := echo.QueryParamsBinder(c).
			String("q", &req.Query).
			Int("page", &req.Page).
			Int("limit", &req.Limit).
			String("sort", &req.Sort).
			Bool("in_stock", &req.InStock).
			Strings("tag", &req.Tags).
			Uint("category", &categoryID).
			Float64("min_price", &minPrice).
			Float64("max_price", &maxPrice).
			BindError()
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		if strings.TrimSpace(req.Query) == "" {
			return api.BadRequest(c, "q is required")
		}
		if categoryID != 0 {
			req.CategoryIDs = []uint{categoryID}
		}
		if c.QueryParam("min_price") != "" || c.QueryParam("max_price") != "" {
			req.PriceRange = &filter.PriceRange{}
			if c.QueryParam("min_price") != "" {
				req.PriceRange.Min = &minPrice
			}
			if c.QueryParam("max_price") != "" {
				req.PriceRange.Max = &maxPrice
			}
		}
		res, err := engine.Filter(c.Request().Context(), req)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	pg.GET("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		p, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	pg.POST("", func(c echo.Context) error {
		var p productEntity.Product
		if err := c.Bind(&p); err != nil {
			return api.BadRequest(c, err.Error())
		}
		p.EntityID = 0
		if err := svc.Create(c.Request().Context(), &p); err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusCreated, p)
	})

	pg.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		var req updateRequest
		if err := c.Bind(&req); err != nil {
			return api.BadRequest(c, err.Error())
		}
		p, err := svc.Update(c.Request().Context(), id, productService.UpdateInput{
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			OriginalPrice: req.OriginalPrice,
			CategoryID:    req.CategoryID,
			Stock:         req.Stock,
			Tags:          req.Tags,
			Attributes:    req.Attributes,
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	pg.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return api.Error(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	// POST /api/products/:id/images – {"urls": ["a.jpg"]}
	pg.POST("/:id/images", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		var req imagesRequest
		if err := c.Bind(&req); err != nil {
			return api.BadRequest(c, err.Error())
		}
		p, err := svc.AddImages(c.Request().Context(), id, req.URLs)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	pg.PATCH("/:id/images/reorder", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		var req imagesRequest
		if err := c.Bind(&req); err != nil {
			return api.BadRequest(c, err.Error())
		}
		p, err := svc.ReorderImages(c.Request().Context(), id, req.URLs)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	pg.DELETE("/:id/images", func(c echo.Context) error {
		id, err := api.ParamID(c, "id")
		if err != nil {
			return api.Error(c, err)
		}
		p, err := svc.ClearImages(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})
}
