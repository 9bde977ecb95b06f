// Package mgmt is a thin client for a RabbitMQ-compatible management HTTP
// API: topology queries, idempotent create calls, and broker address
// resolution. It holds no state beyond the base URL and credentials.
package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/internal/syncer"
	"github.com/topomq/topomq/internal/topology"
)

// Credentials are the basic-auth credentials for the management API. The
// caller supplies them explicitly on every client; there is no process-wide
// default here.
type Credentials struct {
	Username string
	Password string
}

type Client struct {
	base  string
	creds Credentials
	hc    *http.Client
}

// NewClient returns a client for the management API rooted at base
// (scheme://host:port, no trailing slash).
func NewClient(base string, creds Credentials) *Client {
	return &Client{
		base:  base,
		creds: creds,
		hc:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the JSON error payload the management API attaches to
// non-success responses.
type apiError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func (e apiError) String() string {
	if e.Reason == "" {
		return e.Error
	}
	return fmt.Sprintf("%s: %s", e.Error, e.Reason)
}

func decodeAPIError(body []byte) string {
	var msg apiError
	if err := json.Unmarshal(body, &msg); err == nil && msg.Error != "" {
		return msg.String()
	}
	return string(body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("path", path).Msg("Management API request")
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("management API request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read management API response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

func (c *Client) getRecords(ctx context.Context, path string) ([]topology.Record, error) {
	status, payload, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d: %s", path, status, decodeAPIError(payload))
	}
	var records []topology.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("malformed response from GET %s: %w", path, err)
	}
	return records, nil
}

// ListExchanges fetches the raw exchange records of the broker.
func (c *Client) ListExchanges(ctx context.Context) ([]topology.Record, error) {
	return c.getRecords(ctx, "/api/exchanges")
}

// ListQueues fetches the raw queue records of the broker.
func (c *Client) ListQueues(ctx context.Context) ([]topology.Record, error) {
	return c.getRecords(ctx, "/api/queues")
}

// ListBindings fetches the raw binding records of the broker.
func (c *Client) ListBindings(ctx context.Context) ([]topology.Record, error) {
	return c.getRecords(ctx, "/api/bindings")
}

// Overview fetches the broker overview document.
func (c *Client) Overview(ctx context.Context) (topology.Record, error) {
	status, payload, err := c.do(ctx, http.MethodGet, "/api/overview", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET /api/overview returned status %d: %s", status, decodeAPIError(payload))
	}
	var rec topology.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("malformed response from GET /api/overview: %w", err)
	}
	return rec, nil
}

func created(status int) bool {
	// The management API answers 201 on create and 204 when the resource
	// already exists with the same definition.
	return status == http.StatusCreated || status == http.StatusNoContent || status == http.StatusOK
}

func (c *Client) create(ctx context.Context, method, path string, body any) error {
	status, payload, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if created(status) {
		return nil
	}
	return &syncer.MutationError{Status: status, Payload: decodeAPIError(payload)}
}

func vhostPath(vhost string) string {
	if vhost == "" {
		vhost = "/"
	}
	return url.PathEscape(vhost)
}

// CreateExchange declares an exchange on the target broker.
func (c *Client) CreateExchange(ctx context.Context, ex topology.Exchange) error {
	path := fmt.Sprintf("/api/exchanges/%s/%s", vhostPath(ex.VHost), url.PathEscape(ex.Name))
	return c.create(ctx, http.MethodPut, path, map[string]any{
		"type":        ex.Type,
		"durable":     ex.Durable,
		"auto_delete": ex.AutoDelete,
		"internal":    ex.Internal,
		"arguments":   ex.Arguments,
	})
}

// CreateQueue declares a queue on the target broker.
func (c *Client) CreateQueue(ctx context.Context, q topology.Queue) error {
	path := fmt.Sprintf("/api/queues/%s/%s", vhostPath(q.VHost), url.PathEscape(q.Name))
	return c.create(ctx, http.MethodPut, path, map[string]any{
		"durable":     q.Durable,
		"auto_delete": q.AutoDelete,
		"arguments":   q.Arguments,
	})
}

// CreateBinding binds a queue to its source exchange on the target broker.
func (c *Client) CreateBinding(ctx context.Context, b topology.Binding) error {
	path := fmt.Sprintf("/api/bindings/%s/e/%s/q/%s",
		vhostPath(b.VHost), url.PathEscape(b.Source), url.PathEscape(b.Destination))
	return c.create(ctx, http.MethodPost, path, map[string]any{
		"routing_key": b.RoutingKey,
		"arguments":   b.Arguments,
	})
}
