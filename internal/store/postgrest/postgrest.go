// Package postgrest implements store.Store against a Supabase/PostgREST
// table over HTTP/JSON.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/store"
)

// Config holds connection settings for a PostgREST endpoint.
type Config struct {
	BaseURL      string        // e.g. "https://xyz.supabase.co"
	APIKey       string        // sent as apikey and bearer token
	Table        string        // default "market_list"
	Timeout      time.Duration // per HTTP request; default 10s
	MaxRetries   int           // extra attempts for idempotent requests
	RetryBackoff time.Duration // base delay between attempts; default 200ms
	PageSize     int           // rows per GET page; default 1000
}

// Client is the List Store Client.
type Client struct {
	cfg        Config
	tablePath  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ store.Store = (*Client)(nil)

// New creates a client. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("postgrest: base URL is required")
	}
	if cfg.Table == "" {
		cfg.Table = "market_list"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		tablePath:  "/rest/v1/" + url.PathEscape(cfg.Table),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Close is a no-op for the HTTP client.
func (c *Client) Close() error { return nil }

// row mirrors the table layout: (id, telegram_user_id, product_name,
// checked, created_at).
type row struct {
	ID          flexID    `json:"id"`
	OwnerID     int64     `json:"telegram_user_id"`
	ProductName string    `json:"product_name"`
	Checked     bool      `json:"checked"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *row) toItem() *model.Item {
	return &model.Item{
		ID:        string(r.ID),
		OwnerID:   r.OwnerID,
		Name:      r.ProductName,
		Checked:   r.Checked,
		CreatedAt: r.CreatedAt,
	}
}

// flexID accepts both string (uuid) and numeric (bigint identity) keys.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", data)
	}
	*f = flexID(n.String())
	return nil
}

func (c *Client) AddItem(ctx context.Context, ownerID int64, name string) (*model.Item, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return nil, store.ErrEmptyName
	}
	body := map[string]any{
		"telegram_user_id": ownerID,
		"product_name":     name,
	}
	var rows []row
	if err := c.doJSON(ctx, http.MethodPost, c.tablePath, body, &rows); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("add item: %w: empty representation", store.ErrUnavailable)
	}
	return rows[0].toItem(), nil
}

func (c *Client) ListItems(ctx context.Context, ownerID int64) ([]*model.Item, error) {
	q := url.Values{}
	q.Set("telegram_user_id", "eq."+strconv.FormatInt(ownerID, 10))
	q.Set("order", "created_at.asc,id.asc")
	items, err := c.listRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (c *Client) ListAllItems(ctx context.Context) ([]*model.Item, error) {
	q := url.Values{}
	q.Set("order", "telegram_user_id.asc,created_at.asc,id.asc")
	items, err := c.listRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list all items: %w", err)
	}
	return items, nil
}

// listRows pages through a query with limit/offset until a short page
// comes back, so server-side row caps never truncate the result.
func (c *Client) listRows(ctx context.Context, q url.Values) ([]*model.Item, error) {
	items := []*model.Item{}
	for offset := 0; ; offset += c.cfg.PageSize {
		q.Set("limit", strconv.Itoa(c.cfg.PageSize))
		q.Set("offset", strconv.Itoa(offset))
		var rows []row
		if err := c.doJSON(ctx, http.MethodGet, c.tablePath+"?"+q.Encode(), nil, &rows); err != nil {
			return nil, err
		}
		for i := range rows {
			items = append(items, rows[i].toItem())
		}
		if len(rows) < c.cfg.PageSize {
			return items, nil
		}
	}
}

func (c *Client) SetChecked(ctx context.Context, itemID string, checked bool) error {
	q := url.Values{}
	q.Set("id", "eq."+itemID)
	var rows []row
	if err := c.doJSON(ctx, http.MethodPatch, c.tablePath+"?"+q.Encode(), map[string]bool{"checked": checked}, &rows); err != nil {
		return fmt.Errorf("set checked: %w", err)
	}
	if len(rows) == 0 {
		c.logger.Warn("postgrest: set checked matched no rows", "item", itemID)
	}
	return nil
}

func (c *Client) SwapChecked(ctx context.Context, itemID string, oldVal, newVal bool) (bool, error) {
	q := url.Values{}
	q.Set("id", "eq."+itemID)
	q.Set("checked", "eq."+strconv.FormatBool(oldVal))
	var rows []row
	if err := c.doJSON(ctx, http.MethodPatch, c.tablePath+"?"+q.Encode(), map[string]bool{"checked": newVal}, &rows); err != nil {
		return false, fmt.Errorf("swap checked: %w", err)
	}
	return len(rows) > 0, nil
}

func (c *Client) ClearAll(ctx context.Context, ownerID int64) error {
	q := url.Values{}
	q.Set("telegram_user_id", "eq."+strconv.FormatInt(ownerID, 10))
	if err := c.doJSON(ctx, http.MethodDelete, c.tablePath+"?"+q.Encode(), nil, nil); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	return nil
}

// --- internal helpers ---

// APIError is an error response from PostgREST.
type APIError struct {
	StatusCode int
	Code       string // PostgREST/Postgres error code, e.g. "22P02"
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps 4xx to store.ErrRejected and everything else to
// store.ErrUnavailable.
func (e *APIError) Unwrap() error {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return store.ErrRejected
	}
	return store.ErrUnavailable
}

// doJSON performs a request, retrying idempotent methods on
// store.ErrUnavailable. POST is attempted exactly once.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	attempts := 1
	if method != http.MethodPost {
		attempts += c.cfg.MaxRetries
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := c.cfg.RetryBackoff * time.Duration(1<<(i-1))
			c.logger.Debug("postgrest: retrying", "method", method, "attempt", i+1, "delay", delay, "err", err)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", store.ErrUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}
		err = c.doOnce(ctx, method, path, body, result)
		if err == nil || !errors.Is(err, store.ErrUnavailable) {
			return err
		}
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshaling request body: %w", store.ErrRejected, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", store.ErrRejected, err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if result != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: performing request: %w", store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", store.ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Code: errResp.Code, Message: errResp.Message}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding response: %w", store.ErrUnavailable, err)
		}
	}
	return nil
}
