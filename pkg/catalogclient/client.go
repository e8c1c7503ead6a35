// Package catalogclient talks to the product API over HTTP.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/listview"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrValidation  = errors.New("product rejected")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// ValidationError carries the per-field messages of a rejected form. It
// matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrValidation, e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

// List fetches one page of products whose name contains search.
func (c *Client) List(ctx context.Context, search string, page int) (listview.Page[catalog.Product], error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	u := c.BaseURL + "/products"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var out listview.Page[catalog.Product]
	err := c.do(ctx, http.MethodGet, u, nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodGet, c.productURL(id), nil, http.StatusOK, &p)
	return p, err
}

func (c *Client) Add(ctx context.Context, form catalog.ProductForm) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodPost, c.BaseURL+"/products", form, http.StatusCreated, &p)
	return p, err
}

func (c *Client) Edit(ctx context.Context, id int, form catalog.ProductForm) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodPut, c.productURL(id), form, http.StatusOK, &p)
	return p, err
}

func (c *Client) productURL(id int) string {
	return fmt.Sprintf("%s/products/%d", c.BaseURL, id)
}

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, u string, body any, want int, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == want:
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest && body != nil:
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error == "validation failed" {
			return &ValidationError{Fields: eb.Details}
		}
		return fmt.Errorf("%w: status=%d error=%q", ErrBadStatus, resp.StatusCode, eb.Error)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
