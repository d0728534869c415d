package routing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// HTTPRouteTool calls an external routing service over HTTP. It implements
// RouteTool; wrap it in a RealProvider to get fixture fallback on failure.
type HTTPRouteTool struct {
	baseURL string
	key     string
	client  *http.Client
}

// HTTPToolOption configures the route tool.
type HTTPToolOption func(*HTTPRouteTool)

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) HTTPToolOption {
	return func(t *HTTPRouteTool) {
		t.key = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) HTTPToolOption {
	return func(t *HTTPRouteTool) {
		t.client = hc
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) HTTPToolOption {
	return func(t *HTTPRouteTool) {
		t.client.Timeout = d
	}
}

// NewHTTPRouteTool creates a route tool against baseURL.
func NewHTTPRouteTool(baseURL string, opts ...HTTPToolOption) *HTTPRouteTool {
	t := &HTTPRouteTool{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type routeResponse struct {
	Minutes int `json:"minutes"`
}

// Route asks the service for travel minutes between the query's endpoints.
func (t *HTTPRouteTool) Route(q Query) (int, error) {
	u, err := url.Parse(t.baseURL + "/route")
	if err != nil {
		return 0, eris.Wrap(err, "routing: parse base url")
	}
	params := url.Values{}
	params.Set("from_lat", fmt.Sprintf("%.6f", q.From.Lat))
	params.Set("from_lng", fmt.Sprintf("%.6f", q.From.Lng))
	params.Set("to_lat", fmt.Sprintf("%.6f", q.To.Lat))
	params.Set("to_lng", fmt.Sprintf("%.6f", q.To.Lng))
	params.Set("mode", string(q.Mode))
	if !q.Departure.IsZero() {
		params.Set("departure", q.Departure.Format(time.RFC3339))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, eris.Wrap(err, "routing: build request")
	}
	if t.key != "" {
		req.Header.Set("Authorization", "Bearer "+t.key)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "routing: route request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, eris.Errorf("routing: route request returned %d: %s", resp.StatusCode, string(body))
	}

	var out routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, eris.Wrap(err, "routing: decode response")
	}
	if out.Minutes <= 0 {
		return 0, eris.Errorf("routing: service returned non-positive minutes %d", out.Minutes)
	}
	return out.Minutes, nil
}
