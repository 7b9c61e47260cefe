package config

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categoryEntity "storefront.GO/model/entity/category"
	productEntity "storefront.GO/model/entity/product"
)

// NewDB opens the catalog store. DB_DRIVER selects sqlite (default, SQLITE_PATH)
// or mysql (MYSQL_DSN or MYSQL_USER/PASS/HOST/PORT/DB).
func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	if os.Getenv("GORM_LOG") == "off" {
		logMode = logger.Silent
	} else if os.Getenv("GORM_LOG") == "info" {
		logMode = logger.Info
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use log.Logger for Printf support
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      logMode,
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	switch GetEnv("DB_DRIVER", "sqlite") {
	case "mysql":
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			user := os.Getenv("MYSQL_USER")
			pass := os.Getenv("MYSQL_PASS")
			host := os.Getenv("MYSQL_HOST")
			port := GetEnv("MYSQL_PORT", "3306")
			db := os.Getenv("MYSQL_DB")
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, db)
		}
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(GetEnv("SQLITE_PATH", "storefront.db"))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", os.Getenv("DB_DRIVER"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the catalog tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&categoryEntity.Category{},
		&productEntity.Product{},
		&productEntity.ProductAttribute{},
		&productEntity.ProductImage{},
	)
}

var (
	sharedDB     *gorm.DB
	sharedDBErr  error
	sharedDBOnce sync.Once
)

// GetDB returns a process-wide connection, opened and migrated on first use.
// Used by cron jobs and CLI commands registered from init().
func GetDB() (*gorm.DB, error) {
	sharedDBOnce.Do(func() {
		sharedDB, sharedDBErr = NewDB()
		if sharedDBErr == nil {
			sharedDBErr = AutoMigrate(sharedDB)
		}
	})
	return sharedDB, sharedDBErr
}
