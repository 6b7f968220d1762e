// Package backend is the data-access primitive shared by every entity
// package: one JSON-over-HTTP call per function, response envelope unwrapped,
// failures normalised into *Error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const maxBodyBytes = 4 << 20

// Options configures a Client for one upstream service.
type Options struct {
	Name      string
	BaseURL   string
	Timeout   time.Duration
	RetryMax  int
	Transport http.RoundTripper
	Observer  Observer
	Logger    *slog.Logger
}

// Client talks to a single upstream base URL.
type Client struct {
	name    string
	baseURL string
	reads   *http.Client
	writes  *http.Client
}

// NewClient builds a Client. Reads go through a retryablehttp client that
// only retries transport failures and only when RetryMax > 0; writes are
// never retried.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	rt := NewRoundTripper(opts.Transport, opts.Name, opts.Observer, opts.Logger)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.HTTPClient.Transport = rt
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}

	return &Client{
		name:    opts.Name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		reads:   retryClient.StandardClient(),
		writes:  &http.Client{Timeout: opts.Timeout, Transport: rt},
	}
}

// Name returns the upstream service name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Path joins escaped segments into a path relative to the base URL.
func Path(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "/" + strings.Join(escaped, "/")
}

// Do performs one call. body is JSON encoded when non-nil; out receives the
// decoded payload, unwrapped from a {"data": ...} envelope when present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + c.name + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.writes
	if method == http.MethodGet {
		httpClient = c.reads
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(ctx, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:      op,
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: extractMessage(raw),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func decodeEnvelope(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if data, ok := env["data"]; ok {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode data envelope: %w", err)
			}
			return nil
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get fetches path and decodes the payload into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Post creates a resource and decodes the returned representation.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

// Patch partially updates a resource.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPatch, path, body, &out)
	return out, err
}

// Put replaces a resource.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out)
	return out, err
}

// Delete removes a resource; any response body is ignored.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Ping reports whether the upstream answers at all. Any status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	op := "PING " + c.name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	resp, err := c.writes.Do(req)
	if err != nil {
		return transportError(ctx, op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 500 {
		return &Error{Op: op, Kind: KindStatus, Status: resp.StatusCode}
	}
	return nil
}
