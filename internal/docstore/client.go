// Package docstore is an HTTP client for the external document store.
//
// The store is an opaque collaborator: collections hold JSON documents, the
// store assigns document ids on insert, and lookups filter on exact field
// values. Nothing in this package knows what the documents mean.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Sentinel errors for the docstore package.
var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")

	// ErrUnhealthy is returned when the store health check fails.
	ErrUnhealthy = errors.New("document store health check failed")
)

// Document is a schemaless store document.
type Document map[string]any

// ID returns the store-assigned document id, if present.
func (d Document) ID() string {
	if v, ok := d["_id"].(string); ok {
		return v
	}
	return ""
}

// Client talks to the document store's HTTP API.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a new document store client.
// A zero timeout defaults to 15 seconds; every round trip is bounded.
func NewClient(storeURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url: strings.TrimSuffix(storeURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the store base URL.
func (c *Client) URL() string {
	return c.url
}

// HealthCheck checks if the document store is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// insertResponse is the store's reply to a document insert.
type insertResponse struct {
	ID string `json:"id"`
}

// Insert writes a document to a collection and returns the assigned id.
// Transient failures (network errors, 5xx) are retried a few times before
// giving up; 4xx responses fail immediately.
func (c *Client) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	var id string
	err = retry.Do(
		func() error {
			resp, err := c.post(ctx, c.collectionPath(collection, "documents"), body)
			if err != nil {
				return err
			}
			var ir insertResponse
			if err := json.Unmarshal(resp, &ir); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode insert response: %w", err))
			}
			if ir.ID == "" {
				return retry.Unrecoverable(fmt.Errorf("store returned no document id"))
			}
			id = ir.ID
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s failed: %w", collection, err)
	}
	return id, nil
}

// FindOne returns the first document matching the filter, or ErrNotFound.
func (c *Client) FindOne(ctx context.Context, collection string, filter Document) (Document, error) {
	docs, err := c.find(ctx, collection, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// Find returns every document matching the filter. An empty filter matches
// the whole collection.
func (c *Client) Find(ctx context.Context, collection string, filter Document) ([]Document, error) {
	return c.find(ctx, collection, filter, 0)
}

// Get returns a single document by its store-assigned id.
func (c *Client) Get(ctx context.Context, collection, id string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.collectionPath(collection, "documents/"+url.PathEscape(id)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// findRequest is the body of a collection search.
type findRequest struct {
	Filter Document `json:"filter"`
	Limit  int      `json:"limit,omitempty"`
}

func (c *Client) find(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	if filter == nil {
		filter = Document{}
	}
	body, err := json.Marshal(findRequest{Filter: filter, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filter: %w", err)
	}

	resp, err := c.post(ctx, c.collectionPath(collection, "search"), body)
	if err != nil {
		return nil, err
	}

	var docs []Document
	if err := json.Unmarshal(resp, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// post issues a JSON POST and returns the response body.
// 5xx responses come back as plain errors so callers can retry; 4xx come back
// wrapped in retry.Unrecoverable.
func (c *Client) post(ctx context.Context, postURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("store server error (status %d): %s", resp.StatusCode, string(respBody))
	case resp.StatusCode >= 400:
		return nil, retry.Unrecoverable(fmt.Errorf("store rejected request (status %d): %s", resp.StatusCode, string(respBody)))
	}

	return respBody, nil
}

func (c *Client) collectionPath(collection, suffix string) string {
	return c.url + "/api/v1/collections/" + url.PathEscape(collection) + "/" + suffix
}
