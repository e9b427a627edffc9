// Package client talks to the remote document store over its flat REST
// surface. The store is schemaless and non-transactional: records live
// under /{collection}.json, keys are assigned by the store on POST, and
// the only server-side filtering is a best-effort single-field equality
// query. Everything smarter than that belongs to the callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jokehub/punchline/internal/domain"
)

const defaultTimeout = 3 * time.Second

type Client struct {
	client  *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/" + collection + ".json"
}

func (c *Client) recordURL(collection, key string) string {
	return c.baseURL + "/" + collection + "/" + key + ".json"
}

// List fetches every record in a collection, keyed by store key. An
// empty collection decodes as JSON null and yields an empty map.
func (c *Client) List(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	var records map[string]json.RawMessage
	err := c.do(ctx, http.MethodGet, c.collectionURL(collection), nil, &records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	return records, nil
}

// Get fetches a single record by key. The store answers a missing key
// with a 200 and a null body, which is reported as NotFound.
func (c *Client) Get(ctx context.Context, collection, key string, out any) error {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, c.recordURL(collection, key), nil, &raw)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return domain.NotFoundError{Resource: collection + "/" + key}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.TransportError{Op: "get " + collection, Err: err}
	}
	return nil
}

// Create posts a new record and returns the store-assigned key.
func (c *Client) Create(ctx context.Context, collection string, payload any) (string, error) {
	var assigned struct {
		Name string `json:"name"`
	}
	err := c.do(ctx, http.MethodPost, c.collectionURL(collection), payload, &assigned)
	if err != nil {
		return "", err
	}
	if assigned.Name == "" {
		return "", domain.TransportError{Op: "create " + collection, Err: errors.New("store returned no key")}
	}
	return assigned.Name, nil
}

// Put replaces a record body wholesale.
func (c *Client) Put(ctx context.Context, collection, key string, payload any) error {
	return c.do(ctx, http.MethodPut, c.recordURL(collection, key), payload, nil)
}

// Patch updates only the fields present in the payload, leaving the
// rest of the record untouched.
func (c *Client) Patch(ctx context.Context, collection, key string, fields any, out any) error {
	return c.do(ctx, http.MethodPatch, c.recordURL(collection, key), fields, out)
}

// Delete removes a record. Deleting an absent key is not an error on
// this store.
func (c *Client) Delete(ctx context.Context, collection, key string) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(collection, key), nil, nil)
}

// QueryByField asks the store for records whose field equals value.
// The store only honors this for indexed fields and rejects the rest
// with a 400, so callers must be prepared to fall back to List.
func (c *Client) QueryByField(ctx context.Context, collection, field, value string) (map[string]json.RawMessage, error) {
	q := url.Values{}
	q.Set("orderBy", jsonLiteral(field))
	q.Set("equalTo", jsonLiteral(value))
	var records map[string]json.RawMessage
	err := c.do(ctx, http.MethodGet, c.collectionURL(collection)+"?"+q.Encode(), nil, &records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	return records, nil
}

// jsonLiteral renders a filter operand as the JSON string literal the
// store's query parameters expect.
func jsonLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any) error {
	op := method + " " + url

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to encode payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.TransportError{Op: op, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.TransportError{Op: op, Err: errors.Wrap(err, "failed to decode response")}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
