// Package catalog implements the HTTP client for the external read-only
// product catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopfront/api/internal/domain"
)

const (
	defaultBaseURL = "https://fakestoreapi.com"
	defaultTimeout = 10 * time.Second

	maxResponseBytes = 4 * 1024 * 1024
)

// ErrProductNotFound indicates the catalog has no product with the given id.
var ErrProductNotFound = errors.New("catalog: product not found")

// ClientDeps wires the construction inputs for the catalog client.
type ClientDeps struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the catalog API. It holds no state beyond its transport.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client, applying defaults for unset dependencies.
func NewClient(deps ClientDeps) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("catalog: invalid base url %q: %w", baseURL, err)
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		timeout := deps.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// productPayload mirrors the catalog API's JSON product shape.
type productPayload struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       int64(math.Round(p.Price * 100)),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: domain.Rating{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

// ListProducts fetches the full product list, optionally truncated server-side
// when limit is positive.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	endpoint := "/products"
	if limit > 0 {
		endpoint = fmt.Sprintf("/products?limit=%d", limit)
	}
	var payload []productPayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toDomain())
	}
	return products, nil
}

// GetProduct fetches a single product by id. The upstream API answers an
// unknown id with an empty body rather than a 404, so both map to
// ErrProductNotFound.
func (c *Client) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/products/%d", id))
	if err != nil {
		return domain.Product{}, err
	}
	if status == http.StatusNotFound {
		return domain.Product{}, ErrProductNotFound
	}
	if status != http.StatusOK {
		return domain.Product{}, fmt.Errorf("catalog: unexpected status %d fetching product %d", status, id)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return domain.Product{}, ErrProductNotFound
	}

	var payload productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Product{}, fmt.Errorf("catalog: decoding product %d: %w", id, err)
	}
	if payload.ID == 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return payload.toDomain(), nil
}

// ListByCategory fetches the products belonging to a single category.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return c.ListProducts(ctx, 0)
	}
	var payload []productPayload
	endpoint := "/products/category/" + url.PathEscape(category)
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toDomain())
	}
	return products, nil
}

// ListCategories fetches the catalog's category names.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("catalog: unexpected status %d for %s", status, endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("catalog: decoding %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: building request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: reading %s: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}
