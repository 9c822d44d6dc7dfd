package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnauthorized is returned when Supabase rejects the bearer token
var ErrUnauthorized = errors.New("supabase: unauthorized")

// Error is a non-2xx response from PostgREST or GoTrue
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// request describes one PostgREST call
type request struct {
	method string
	path   string
	query  map[string]interface{}
	body   interface{}
	prefer string
	token  string
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var reader io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.URL+r.path, reader)
	if err != nil {
		return nil, err
	}

	if len(r.query) > 0 {
		q := url.Values{}
		for key, value := range r.query {
			q.Add(key, fmt.Sprintf("%v", value))
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("apikey", c.ServiceKey)

	// Use user token if provided, otherwise use service key
	token := r.token
	if token == "" {
		token = c.ServiceKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// Query selects rows from a table. Keys are PostgREST query parameters.
func (c *Client) Query(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: "/rest/v1/" + table, query: query})
}

// Insert inserts one record or a slice of records and returns the stored rows
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		body:   data,
		prefer: "return=representation",
	})
}

// Upsert inserts or updates a record in a Supabase table
// onConflict specifies the columns to detect conflicts (e.g., "user_id,pattern_type")
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  map[string]interface{}{"on_conflict": onConflict},
		body:   data,
		// resolution=merge-duplicates will update existing rows
		prefer: "return=representation,resolution=merge-duplicates",
	})
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(ctx context.Context, table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + table,
		query:  query,
		body:   data,
		prefer: "return=representation",
	})
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(ctx context.Context, table string, query map[string]interface{}) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/rest/v1/" + table, query: query})
	return err
}

// RPC calls a Postgres function exposed by PostgREST. The function runs in a
// single transaction.
func (c *Client) RPC(ctx context.Context, function string, args interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + function,
		body:   args,
	})
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user", token: token})
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Body)
		}
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
