// Package apiclient implements catalog.Service on top of the JSON API.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/model"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ catalog.Service = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

func (c *Client) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

func (c *Client) Get(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodGet, bookPath(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) Create(ctx context.Context, fields validation.Fields) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodPost, "/books", fields, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) Update(ctx context.Context, id uint, fields validation.Fields) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodPut, bookPath(id), fields, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) Delete(ctx context.Context, id uint) (catalog.Deletion, error) {
	var deletion catalog.Deletion
	if err := c.do(ctx, http.MethodDelete, bookPath(id), nil, &deletion); err != nil {
		return catalog.Deletion{}, err
	}
	return deletion, nil
}

func bookPath(id uint) string {
	return "/books/" + strconv.FormatUint(uint64(id), 10)
}

// do sends one request and maps the API's status codes back onto the
// catalog error values.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("%w: decode %s %s: %v", catalog.ErrUpstreamUnavailable, method, path, err)
		}
		return nil

	case resp.StatusCode == http.StatusBadRequest:
		var verr validation.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&verr); err != nil {
			return fmt.Errorf("%w: decode validation error: %v", catalog.ErrUpstreamUnavailable, err)
		}
		return validation.FromResponse(verr)

	case resp.StatusCode == http.StatusNotFound:
		return catalog.ErrNotFound

	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s",
			catalog.ErrUpstreamUnavailable, method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
}
