// Package elasticsearch exports similarity scores to an Elasticsearch index
// so they can be browsed and aggregated outside the tool.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// ScoreRecord is one scored pair of songs as stored in the index.
type ScoreRecord struct {
	ID         string    `json:"id"`
	DocumentA  string    `json:"document_a"`
	DocumentB  string    `json:"document_b"`
	TitleA     string    `json:"title_a"`
	TitleB     string    `json:"title_b"`
	SourceA    string    `json:"source_a"`
	SourceB    string    `json:"source_b"`
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}

// RecordID returns the index id of a pair; the order of the ids is irrelevant.
func RecordID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// Client wraps the Elasticsearch client with score export operations.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"document_a": { "type": "keyword" },
			"document_b": { "type": "keyword" },
			"title_a": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"title_b": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"source_a": { "type": "keyword" },
			"source_b": { "type": "keyword" },
			"score": { "type": "double" },
			"computed_at": { "type": "date" }
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// DeleteIndex removes the index (for testing/cleanup).
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// IndexScore indexes a single score, replacing an earlier one for the pair.
func (c *Client) IndexScore(ctx context.Context, record ScoreRecord) error {
	if record.ID == "" {
		record.ID = RecordID(record.DocumentA, record.DocumentB)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(record.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index score: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing score (status %d): %s", res.StatusCode, res.String())
	}
	return nil
}

// bulkResponse is the part of the bulk API response we look at.
type bulkResponse struct {
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

// IndexScores indexes records with the bulk API and returns how many were
// accepted.
func (c *Client) IndexScores(ctx context.Context, records []ScoreRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, record := range records {
		if record.ID == "" {
			record.ID = RecordID(record.DocumentA, record.DocumentB)
		}
		action := map[string]any{"index": map[string]any{"_index": c.index, "_id": record.ID}}
		if err := enc.Encode(action); err != nil {
			return 0, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		if err := enc.Encode(record); err != nil {
			return 0, fmt.Errorf("failed to marshal score: %w", err)
		}
	}

	res, err := c.es.Bulk(
		&buf,
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk index error: %s", res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	indexed := 0
	var firstErr error
	for _, item := range br.Items {
		for _, result := range item {
			if result.Error == nil {
				indexed++
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to index score %s: %s: %s", result.ID, result.Error.Type, result.Error.Reason)
			}
		}
	}
	if firstErr != nil {
		return indexed, firstErr
	}
	return indexed, nil
}

// Refresh forces an index refresh (useful for testing).
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool        `json:"found"`
	Source ScoreRecord `json:"_source"`
}

// GetScore retrieves the exported score of a pair, in either order.
// It returns nil if the pair has not been exported.
func (c *Client) GetScore(ctx context.Context, a, b string) (*ScoreRecord, error) {
	res, err := c.es.Get(
		c.index,
		RecordID(a, b),
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}
	return &gr.Source, nil
}
