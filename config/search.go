package config

import (
	"os"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewSearchClient returns an Elasticsearch client, or nil when
// ELASTICSEARCH_HOST is unset (search then falls back to SQL matching).
func NewSearchClient() (*elasticsearch.Client, error) {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		return nil, nil
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{host},
		Username:  os.Getenv("ELASTICSEARCH_USER"),
		Password:  os.Getenv("ELASTICSEARCH_PASS"),
	})
}

// SearchIndexName is the product index name.
func SearchIndexName() string {
	return GetEnv("ELASTICSEARCH_INDEX_PREFIX", "storefront") + "_catalog_product"
}
