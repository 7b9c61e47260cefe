//go:build !cli
// +build !cli

package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"storefront.GO/api"
	_ "storefront.GO/api/category"
	_ "storefront.GO/api/product"
	"storefront.GO/config"
	_ "storefront.GO/custom"
	"storefront.GO/service/catalog"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	config.InitLogger()

	config.InitRedis()
	logrus.Info(config.ProbeRedis())

	db, err := config.NewDB()
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Database connection successful.")

	cat := catalog.Get(db)
	if cat.Search.Enabled() {
		logrus.Info("Elasticsearch search enabled.")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(api.RequestDuration())

	api.ApplyModules(e.Group("/api"), cat)
	api.ApplyRoutes(e, cat)

	figure.NewFigure(cfg.AppName, "", true).Print()
	fmt.Println()
	logrus.Infof("Server running on :%s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
