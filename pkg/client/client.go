// Package client is an HTTP client for a kernel running with -mode serve.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/api"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/export"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

// DefaultURL is the address of a kernel served with the default config.
const DefaultURL = "http://localhost:8081"

// Client talks to the kernel REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. An empty baseURL means DefaultURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.APIError   `json:"error"`
}

// Health fetches liveness and the current generation.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/api/health", nil, &out)
}

// Snapshot fetches the population.
func (c *Client) Snapshot(ctx context.Context) (*engine.Snapshot, error) {
	var out engine.Snapshot
	return &out, c.do(ctx, http.MethodGet, "/api/snapshot", nil, &out)
}

// Entity fetches one entity by id.
func (c *Client) Entity(ctx context.Context, id uint32) (*engine.EntityView, error) {
	var out engine.EntityView
	return &out, c.do(ctx, http.MethodGet, fmt.Sprintf("/api/entities/%d", id), nil, &out)
}

// Activate switches entity id on.
func (c *Client) Activate(ctx context.Context, id uint32) (*engine.EntityView, error) {
	var out engine.EntityView
	return &out, c.do(ctx, http.MethodPost, fmt.Sprintf("/api/entities/%d/activate", id), nil, &out)
}

// Tick advances the remote clock by n and returns the new tick.
func (c *Client) Tick(ctx context.Context, n int) (uint32, error) {
	var out api.TickResponse
	err := c.do(ctx, http.MethodPost, "/api/tick", map[string]int{"count": n}, &out)
	return out.Tick, err
}

// Update runs n passes on the remote kernel.
func (c *Client) Update(ctx context.Context, n int) (*api.UpdateResponse, error) {
	var out api.UpdateResponse
	return &out, c.do(ctx, http.MethodPost, "/api/update", map[string]int{"count": n}, &out)
}

// AssignTask gives entity id the task symbol on pathID.
func (c *Client) AssignTask(ctx context.Context, id uint32, symbol string, pathID uint32) (*engine.EntityView, error) {
	body := map[string]interface{}{"entityId": id, "symbol": symbol, "pathId": pathID}
	var out engine.EntityView
	return &out, c.do(ctx, http.MethodPost, "/api/tasks", body, &out)
}

// Reset reboots the remote kernel.
func (c *Client) Reset(ctx context.Context) (*host.BootReport, error) {
	var out host.BootReport
	return &out, c.do(ctx, http.MethodPost, "/api/reset", nil, &out)
}

// Digest fetches the reproducibility digest of the remote run.
func (c *Client) Digest(ctx context.Context) (*export.Digest, error) {
	var out export.Digest
	return &out, c.do(ctx, http.MethodGet, "/api/digest", nil, &out)
}

// IsAvailable reports whether the kernel answers its health check.
func (c *Client) IsAvailable(ctx context.Context) bool {
	h, err := c.Health(ctx)
	return err == nil && h.Status == "ok"
}

// do sends one request and decodes the envelope's data into out. API errors
// come back as HoloErrors carrying the server's code.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkWrap(err, errors.ErrNetworkUnreachable, "kernel not reachable").
			WithContext("url", c.baseURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode >= 300 {
		code, msg := "HTTP_"+fmt.Sprint(resp.StatusCode), string(respBody)
		if env.Error != nil {
			code, msg = strings.ToUpper(env.Error.Code), env.Error.Message
		}
		return errors.AttachSuggestions(errors.New(code, errors.CategoryNetwork, msg)).
			WithContext("status", fmt.Sprint(resp.StatusCode)).
			WithContext("path", path)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
