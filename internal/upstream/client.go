// Package upstream is the REST client for the marketplace backend.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marketgrid/admin-gateway/internal/model"
)

// Client calls the marketplace admin API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListItems fetches one page of the admin item list.
func (c *Client) ListItems(ctx context.Context, filters model.Filters, page, limit int) (*model.ItemPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filters.Term != "" {
		q.Set("term", filters.Term)
	}
	if filters.ID != "" {
		q.Set("id", filters.ID)
	}
	if filters.Status != "" {
		q.Set("status", string(filters.Status))
	}
	if filters.Kind != "" {
		q.Set("kind", string(filters.Kind))
	}

	var result model.ItemPage
	if err := c.get(ctx, "/admin/items?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetItem fetches a single item by UUID.
func (c *Client) GetItem(ctx context.Context, uuid string) (*model.Item, error) {
	var item model.Item
	if err := c.get(ctx, "/admin/items/"+uuid, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem sends a partial update containing only the changed fields and
// returns the canonical updated item.
func (c *Client) UpdateItem(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error) {
	payload := make(map[string]any, len(fields))
	for f, v := range fields {
		payload[string(f)] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/admin/items/"+uuid, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var item model.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode updated item: %w", err)
	}
	return &item, nil
}

// BlockReasons fetches the valid block reasons for an item subtype.
func (c *Client) BlockReasons(ctx context.Context, kind model.Kind) ([]model.BlockReason, error) {
	path := "/admin/block-reasons"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(string(kind))
	}

	var reasons []model.BlockReason
	if err := c.get(ctx, path, &reasons); err != nil {
		return nil, err
	}
	return reasons, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) > 0 {
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, body)
	}
	return fmt.Errorf("upstream returned status %d", resp.StatusCode)
}
