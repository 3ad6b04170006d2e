// Package search mirrors products into Elasticsearch and queries them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/phimart/internal/models"
)

var ErrNotConfigured = errors.New("search: ES_URL is empty")

type Config struct {
	URL      string
	Username string
	Password string
	Index    string

	// Transport replaces the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = "product"
	}
	return &Index{es: client, index: index}, nil
}

// Ping checks that the cluster answers.
func (i *Index) Ping(ctx context.Context) error {
	res, err := i.es.Info(i.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("search: marshal product: %w", err)
	}
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (i *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := i.es.Delete(i.index, id.String(), i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		prods[n] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op string, status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("search: %s failed: status %d: %s", op, status, bytes.TrimSpace(b))
}
