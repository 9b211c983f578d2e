// Package api is the REST client for the docdeck backend. Every list
// endpoint returns an {items, total} page; pagination, sorting, and filter
// decisions belong to the caller.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to one backend with one bearer token.
type Client struct {
	base  *url.URL
	token string
	httpc *http.Client
}

// New builds a client for the given base URL. The token may be empty for
// unauthenticated development backends.
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Client{
		base:  u,
		token: token,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// ListParams is the wire form of a pagination descriptor.
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
	Filters  map[string]string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
		if p.Order != "" {
			q.Set("order", p.Order)
		}
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Body)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
