package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pong/pkg/logger"
)

// client is a JSON client for the tournament API.
type client struct {
	http    *http.Client
	baseURL string
	verbose bool
	logger  logger.Logger

	requests atomic.Int64
	failed   atomic.Int64
	replays  atomic.Int64
}

func newClient(baseURL string, timeout time.Duration, verbose bool, l logger.Logger) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		verbose: verbose,
		logger:  l,
	}
}

// call sends body as JSON and decodes a 2xx answer into out. A non-empty key
// is sent as the Idempotency-Key header. It reports whether the server
// answered from a replayed key.
func (c *client) call(ctx context.Context, method, path, key string, body, out any) (bool, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}

	start := time.Now()
	c.requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		c.failed.Add(1)
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	replayed := resp.Header.Get(replayedHeader) == "true"
	if replayed {
		c.replays.Add(1)
	}
	if c.verbose {
		c.logger.Debug(ctx, "request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.Bool("replayed", replayed),
			logger.Duration("took", time.Since(start)))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.failed.Add(1)
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(raw, apiErr) != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return replayed, apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return replayed, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return replayed, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return replayed, nil
}

func (c *client) get(ctx context.Context, path string, out any) error {
	_, err := c.call(ctx, http.MethodGet, path, "", nil, out)
	return err
}

// mutate sends a write with a fresh idempotency key.
func (c *client) mutate(ctx context.Context, method, path string, body, out any) error {
	_, err := c.call(ctx, method, path, uuid.NewString(), body, out)
	return err
}
