package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"storefront.GO/config"
	productEntity "storefront.GO/model/entity/product"
)

// searchFields mirrors the weights of the storefront text index.
var searchFields = []string{"name^15", "description^3", "tags"}

// Document is the indexed form of a product.
type Document struct {
	EntityID    uint                `json:"entity_id" mapstructure:"entity_id"`
	Name        string              `json:"name" mapstructure:"name"`
	Description string              `json:"description" mapstructure:"description"`
	Tags        []string            `json:"tags" mapstructure:"tags"`
	CategoryID  uint                `json:"category_id" mapstructure:"category_id"`
	Price       float64             `json:"price" mapstructure:"price"`
	Stock       int                 `json:"stock" mapstructure:"stock"`
	Attributes  map[string][]string `json:"attributes" mapstructure:"attributes"`
}

// NewDocument flattens p for indexing.
func NewDocument(p productEntity.Product) Document {
	attrs := make(map[string][]string, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs[a.Name] = append(attrs[a.Name], a.Value...)
	}
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Document{
		EntityID:    p.EntityID,
		Name:        p.Name,
		Description: p.Description,
		Tags:        tags,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Stock:       p.Stock,
		Attributes:  attrs,
	}
}

// Service mirrors products into Elasticsearch. A Service without a client is
// disabled and every call is a no-op.
type Service struct {
	client *elasticsearch.Client
	index  string
	log    *logrus.Entry
}

var (
	searchServiceInstance *Service
	searchServiceOnce     sync.Once
)

// GetSearchService returns the process-wide service built from the environment.
func GetSearchService() *Service {
	searchServiceOnce.Do(func() {
		client, err := config.NewSearchClient()
		if err != nil {
			logrus.WithError(err).Warn("elasticsearch client disabled")
			client = nil
		}
		searchServiceInstance = NewService(client, config.SearchIndexName())
	})
	return searchServiceInstance
}

func NewService(client *elasticsearch.Client, index string) *Service {
	return &Service{
		client: client,
		index:  index,
		log:    logrus.WithFields(logrus.Fields{"service": "search", "index": index}),
	}
}

// Enabled reports whether a client is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil
}

// IndexProducts upserts products with one bulk request.
func (s *Service) IndexProducts(ctx context.Context, products []productEntity.Product) error {
	if !s.Enabled() || len(products) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]map[string]string{
			"index": {"_index": s.index, "_id": strconv.FormatUint(uint64(p.EntityID), 10)},
		}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(NewDocument(p)); err != nil {
			return err
		}
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.index),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var bulk struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if bulk.Errors {
		for _, item := range bulk.Items {
			for _, result := range item {
				if result.Error != nil {
					return fmt.Errorf("index product %s: %s: %s", result.ID, result.Error.Type, result.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk index reported errors")
	}
	s.log.WithField("count", len(products)).Debug("products indexed")
	return nil
}

// DeleteProduct removes one document. A missing document is not an error.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if !s.Enabled() {
		return nil
	}
	res, err := s.client.Delete(s.index, strconv.FormatUint(uint64(id), 10),
		s.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// Search returns the best matching documents for query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	body := map[string]interface{}{
		"size":    limit,
		"_source": []string{"entity_id", "name", "category_id", "price", "stock", "tags"},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": searchFields,
			},
		},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		doc, err := decodeDocument(hit.Source)
		if err != nil {
			s.log.WithError(err).Warn("skipping undecodable hit")
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SearchIDs returns matching product ids ordered by relevance.
func (s *Service) SearchIDs(ctx context.Context, query string, limit int) ([]uint, error) {
	docs, err := s.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(docs))
	for _, d := range docs {
		if d.EntityID != 0 {
			ids = append(ids, d.EntityID)
		}
	}
	return ids, nil
}

func decodeDocument(source map[string]interface{}) (Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
		TagName:          "mapstructure",
	})
	if err != nil {
		return doc, err
	}
	if err := dec.Decode(source); err != nil {
		return doc, err
	}
	return doc, nil
}

// BatchSource streams the catalog in batches.
type BatchSource interface {
	EachBatch(ctx context.Context, size int, fn func([]productEntity.Product) error) error
}

// Reindex pushes every product from src and returns how many were sent.
func (s *Service) Reindex(ctx context.Context, src BatchSource, batchSize int) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	total := 0
	err := src.EachBatch(ctx, batchSize, func(batch []productEntity.Product) error {
		if err := s.IndexProducts(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		return nil
	})
	if err != nil {
		return total, err
	}
	s.log.WithField("count", total).Info("search index rebuilt")
	return total, nil
}
