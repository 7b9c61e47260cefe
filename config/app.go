package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName  string
	Port     string
	Env      string
	Debug    bool
	MediaUrl string

	// Catalog listing defaults
	DefaultPageSize int
	MaxPageSize     int
	// FacetCacheTTL is in seconds; 0 disables facet caching
	FacetCacheTTL int64
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = &Config{
			AppName:         GetEnv("APP_NAME", "storefront"),
			Port:            GetEnv("PORT", "8080"),
			Env:             os.Getenv("APP_ENV"),
			Debug:           os.Getenv("DEBUG") == "true",
			MediaUrl:        os.Getenv("MEDIA_URL"),
			DefaultPageSize: GetEnvInt("DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:     GetEnvInt("MAX_PAGE_SIZE", 100),
			FacetCacheTTL:   int64(GetEnvInt("FACET_CACHE_TTL", 60)),
		}
	})
	return AppConfig
}
