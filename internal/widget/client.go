package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnexpectedStatus is returned when the counter service answers with a
// non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from counter service")

// Source is the remote counter the widget mirrors.
type Source interface {
	Fetch(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
}

// Client talks to a counter service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. A nil httpClient
// uses http.DefaultClient, so no timeout applies beyond the transport's.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type countResponse struct {
	Count *int64 `json:"count"`
}

// Fetch returns the current count via GET /count.
func (c *Client) Fetch(ctx context.Context) (int64, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/count")
}

// Increment asks the service to add one via PUT /count/ and returns the
// value it reports.
func (c *Client) Increment(ctx context.Context) (int64, error) {
	return c.do(ctx, http.MethodPut, c.baseURL+"/count/")
}

func (c *Client) do(ctx context.Context, method, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out countResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding %s %s: %w", method, url, err)
	}
	if out.Count == nil {
		return 0, fmt.Errorf("decoding %s %s: missing count field", method, url)
	}
	if *out.Count < 0 {
		return 0, fmt.Errorf("decoding %s %s: negative count %d", method, url, *out.Count)
	}
	return *out.Count, nil
}
