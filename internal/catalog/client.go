package catalog

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

	"github.com/google/uuid"
)

// API is the remote collaborator the store depends on. *Client implements it;
// tests may substitute their own.
type API interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id ID, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id ID) error
	ListCategories(ctx context.Context) ([]string, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

var (
	// ErrUnavailable wraps transport failures: refused connections, timeouts,
	// cancelled contexts.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrBadStatus wraps any response with status >= 400.
	ErrBadStatus = errors.New("catalog bad status")
)

const (
	DefaultBaseURL   = "https://fakestoreapi.com"
	defaultUserAgent = "shelf/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 512

	requestIDHeader = "X-Request-Id"
)

// Client talks to the catalog REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	metrics   *Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics records every request on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListProducts retrieves the full collection.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var payload []Product
	if err := c.do(ctx, "list", http.MethodGet, "/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ListByCategory retrieves the products of one category. An empty category
// lists the full collection.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return c.ListProducts(ctx)
	}
	seg, err := pathSegment(category)
	if err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}
	var payload []Product
	if err := c.do(ctx, "list_category", http.MethodGet, "/products/category/"+seg, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateProduct posts p and returns the server's copy with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = ""
	var created Product
	if err := c.do(ctx, "create", http.MethodPost, "/products", p, &created); err != nil {
		return Product{}, err
	}
	return created, nil
}

// UpdateProduct replaces the product at id and returns the server's copy.
func (c *Client) UpdateProduct(ctx context.Context, id ID, p Product) (Product, error) {
	if id.IsZero() {
		return Product{}, fmt.Errorf("update product: id required")
	}
	path, err := itemPath(id)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	var updated Product
	if err := c.do(ctx, "update", http.MethodPut, path, p, &updated); err != nil {
		return Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes the product at id. The response body is ignored.
func (c *Client) DeleteProduct(ctx context.Context, id ID) error {
	if id.IsZero() {
		return fmt.Errorf("delete product: id required")
	}
	path, err := itemPath(id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return c.do(ctx, "delete", http.MethodDelete, path, nil, nil)
}

// ListCategories retrieves the category names known to the API.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var payload []string
	if err := c.do(ctx, "categories", http.MethodGet, "/products/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func itemPath(id ID) (string, error) {
	seg, err := pathSegment(id.String())
	if err != nil {
		return "", err
	}
	return "/products/" + seg, nil
}

// pathSegment escapes v for use as one path segment. Dot segments are refused
// since servers collapse them into the parent path.
func pathSegment(v string) (string, error) {
	if v == "." || v == ".." {
		return "", fmt.Errorf("invalid path segment %q", v)
	}
	return url.PathEscape(v), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	// Paths may carry escaped segments, so set both forms on a copy of the base.
	reqURL := *c.baseURL
	reqURL.Path = mustUnescape(path)
	reqURL.RawPath = path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, method, 0, start)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.observe(op, method, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return fmt.Errorf("%w: %s %s returned status %d", ErrBadStatus, method, path, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s %s returned status %d: %s", ErrBadStatus, method, path, resp.StatusCode, msg)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mustUnescape(p string) string {
	if u, err := url.PathUnescape(p); err == nil {
		return u
	}
	return p
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
