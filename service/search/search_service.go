// Package search runs full-text catalog queries against Elasticsearch and keeps
// the product index in step with the database.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	catalogEntity "storefront.GO/model/entity/catalog"
	catalogRepo "storefront.GO/model/repository/catalog"
)

// MaxHits caps the ids one query returns; filtering and paging happen in the database.
const MaxHits = 1000

type SearchService struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewSearchService returns a service that is disabled when host is empty.
func NewSearchService(host, index string, logger *zap.Logger) (*SearchService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index == "" {
		index = "storefront_products"
	}
	s := &SearchService{index: index, logger: logger}
	if host == "" {
		return s, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{host}})
	if err != nil {
		return nil, fmt.Errorf("search: elasticsearch client: %w", err)
	}
	s.client = client
	return s, nil
}

// Enabled reports whether an Elasticsearch host is configured.
func (s *SearchService) Enabled() bool {
	return s != nil && s.client != nil
}

// SearchIDs returns the ids of products matching query, best match first.
func (s *SearchService) SearchIDs(ctx context.Context, query string) ([]uint, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("search: elasticsearch not configured")
	}

	body := map[string]interface{}{
		"size":    MaxHits,
		"_source": []string{"product_id"},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "brand^2", "notes", "description"},
				"fuzziness": "AUTO",
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
		return nil, fmt.Errorf("search: elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ProductID uint `json:"product_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		if hit.Source.ProductID > 0 {
			ids = append(ids, hit.Source.ProductID)
		}
	}
	return ids, nil
}

type document struct {
	ProductID     uint     `json:"product_id"`
	SKU           string   `json:"sku"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Description   string   `json:"description,omitempty"`
	Notes         []string `json:"notes,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	Concentration string   `json:"concentration,omitempty"`
}

// Index upserts products into the index with one bulk request.
func (s *SearchService) Index(ctx context.Context, products []catalogEntity.Product) error {
	if !s.Enabled() || len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": strconv.FormatUint(uint64(p.ProductID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		doc := document{
			ProductID:     p.ProductID,
			SKU:           p.SKU,
			Name:          p.Name,
			Brand:         p.Brand,
			Description:   p.Description,
			Notes:         p.Notes,
			Gender:        p.Gender,
			Concentration: p.Concentration,
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.index),
	)
	if err != nil {
		return fmt.Errorf("search: bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: bulk index: %s", res.String())
	}

	var bulk struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("search: decode bulk response: %w", err)
	}
	if bulk.Errors {
		var failed []string
		for _, item := range bulk.Items {
			for _, r := range item {
				if len(r.Error) > 0 {
					failed = append(failed, r.ID)
				}
			}
		}
		return fmt.Errorf("search: %d documents failed: %s", len(failed), strings.Join(failed, ","))
	}
	return nil
}

// Reindex pushes every product to the index and returns how many were sent.
func (s *SearchService) Reindex(ctx context.Context, repo *catalogRepo.ProductRepository) (int, error) {
	if !s.Enabled() {
		return 0, fmt.Errorf("search: elasticsearch not configured")
	}
	total := 0
	err := repo.Each(ctx, 500, func(batch []catalogEntity.Product) error {
		if err := s.Index(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		s.logger.Debug("indexed batch", zap.Int("size", len(batch)), zap.Int("total", total))
		return nil
	})
	return total, err
}
