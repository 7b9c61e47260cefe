package custom

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"storefront.GO/api"
	"storefront.GO/cmd"
	"storefront.GO/config"
	"storefront.GO/service/catalog"
)

func init() {
	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:stats",
		Short: "Print category and product counts",
		RunE: func(c *cobra.Command, args []string) error {
			db, err := config.GetDB()
			if err != nil {
				return err
			}
			s, err := Stats(c.Context(), catalog.Get(db))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "categories: %d (roots %d)\nproducts:   %d\n", s.Categories, s.Roots, s.Products)
			return nil
		},
	})

	// HTTP route
	api.RegisterRoute(func(e *echo.Echo, cat *catalog.Catalog) {
		e.GET("/health", func(c echo.Context) error {
			sqlDB, err := cat.DB.DB()
			if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
			}
			return c.JSON(http.StatusOK, map[string]interface{}{
				"status": "ok",
				"search": cat.Search.Enabled(),
			})
		})
	})
}
