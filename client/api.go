package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"storefront/models"
)

const responseBodyLimit int64 = 1 << 20

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNetworkError reports whether err came from failing to reach the server.
// Rejections (*APIError) and unreadable replies are not network errors.
func IsNetworkError(err error) bool {
	var netErr net.Error // includes the *url.Error http.Client returns
	return errors.As(err, &netErr)
}

// APIClient calls the storefront HTTP API.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *APIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewAPIClient builds a client for the server at baseURL (e.g. http://localhost:3000).
func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the server address the client talks to.
func (c *APIClient) BaseURL() string { return c.baseURL }

// ProductDraft is the body of a create-product request.
type ProductDraft struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// ProductChanges is the body of an update-product request. Only non-nil
// fields are sent, so only they change on the server.
type ProductChanges struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListProducts fetches the catalog.
func (c *APIClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AdminLogin exchanges the admin credential for a token.
func (c *APIClient) AdminLogin(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", "", credentials{username, password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// CreateProduct adds a product. Requires an admin token.
func (c *APIClient) CreateProduct(ctx context.Context, token string, draft ProductDraft) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, http.MethodPost, "/api/products", token, draft, &p)
	return p, err
}

// UpdateProduct merges changes into product id. Requires an admin token.
func (c *APIClient) UpdateProduct(ctx context.Context, token string, id int64, changes ProductChanges) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), token, changes, &p)
	return p, err
}

// DeleteProduct removes product id and returns it. Requires an admin token.
func (c *APIClient) DeleteProduct(ctx context.Context, token string, id int64) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), token, nil, &p)
	return p, err
}

// Register creates an account.
func (c *APIClient) Register(ctx context.Context, username, email, password string) (models.PublicUser, error) {
	body := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{username, email, password}
	var resp struct {
		User models.PublicUser `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users/register", "", body, &resp)
	return resp.User, err
}

// Login authenticates a user and returns the account with a user token.
func (c *APIClient) Login(ctx context.Context, username, password string) (models.PublicUser, string, error) {
	var resp struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", credentials{username, password}, &resp); err != nil {
		return models.PublicUser{}, "", err
	}
	return resp.User, resp.Token, nil
}

// AddSearch records term in the user's history and returns the new history.
func (c *APIClient) AddSearch(ctx context.Context, token string, userID int64, term string) ([]models.SearchEntry, error) {
	body := struct {
		SearchTerm string `json:"searchTerm"`
	}{term}
	var resp struct {
		SearchHistory []models.SearchEntry `json:"searchHistory"`
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/search-history", userID), token, body, &resp)
	return resp.SearchHistory, err
}

// ClearSearch empties the user's history.
func (c *APIClient) ClearSearch(ctx context.Context, token string, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/search-history", userID), token, nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
