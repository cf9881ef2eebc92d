// Package remote implements gateway.Gateway and session.Authenticator against
// the energyd HTTP API.
package remote

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

	"go.uber.org/zap"

	"energy-admin/config"
	"energy-admin/internal/dashboard"
	"energy-admin/internal/gateway"
	"energy-admin/internal/session"
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() string
}

// Client talks to energyd.
type Client struct {
	base   *url.URL
	client *http.Client
	tokens TokenSource
	log    *zap.Logger
}

var (
	_ gateway.Gateway       = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

// New creates a client for cfg.APIURL. An invalid proxy URL is logged and
// ignored.
func New(cfg *config.ConsoleConfig, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", cfg.APIURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid proxy url, not using a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   base,
		client: &http.Client{Transport: transport, Timeout: timeout},
		log:    log,
	}, nil
}

// UseTokens sets where bearer tokens come from, normally the session store.
func (c *Client) UseTokens(ts TokenSource) {
	c.tokens = ts
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.Info, error) {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signin", nil, body, &resp, ""); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return session.Info{}, gateway.ErrInvalidCredentials
		}
		return session.Info{}, err
	}
	return session.Info{
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// List fetches one page of table.
func (c *Client) List(ctx context.Context, table string, q gateway.Query) (gateway.Page, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Desc {
		params.Set("dir", "desc")
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	for k, v := range q.Eq {
		params.Set("eq."+k, v)
	}

	var page gateway.Page
	if err := c.do(ctx, http.MethodGet, "/api/v1/"+url.PathEscape(table), params, nil, &page, table); err != nil {
		return gateway.Page{}, err
	}
	for i, r := range page.Rows {
		page.Rows[i] = normalizeRow(r)
	}
	return page, nil
}

// ExistsByName asks the server whether name is taken within scope.
func (c *Client) ExistsByName(ctx context.Context, table, name string, scope gateway.Scope, excludeID string) (bool, error) {
	params := url.Values{"name": {name}}
	if !scope.IsGlobal() {
		params.Set("scope_column", scope.Column)
		params.Set("scope_value", scope.Value)
	}
	if excludeID != "" {
		params.Set("exclude_id", excludeID)
	}
	var resp struct {
		Exists bool `json:"exists"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/"+url.PathEscape(table)+"/exists", params, nil, &resp, table); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// Insert creates a row. The server attributes it to the token's user; actor
// only has to be present.
func (c *Client) Insert(ctx context.Context, table string, fields gateway.Fields, actor string) (gateway.Row, error) {
	if actor == "" {
		return nil, gateway.ErrNotAuthenticated
	}
	var row gateway.Row
	if err := c.do(ctx, http.MethodPost, "/api/v1/"+url.PathEscape(table), nil, fields, &row, table); err != nil {
		return nil, err
	}
	return normalizeRow(row), nil
}

// Update replaces the fields of row id.
func (c *Client) Update(ctx context.Context, table, id string, fields gateway.Fields, actor string) (gateway.Row, error) {
	if actor == "" {
		return nil, gateway.ErrNotAuthenticated
	}
	var row gateway.Row
	path := "/api/v1/" + url.PathEscape(table) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, nil, fields, &row, table); err != nil {
		return nil, err
	}
	return normalizeRow(row), nil
}

// Dashboard fetches the overview payload.
func (c *Client) Dashboard(ctx context.Context) (dashboard.Data, error) {
	var data dashboard.Data
	err := c.do(ctx, http.MethodGet, "/api/v1/dashboard", nil, nil, &data, "dashboard")
	return data, err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any, table string) error {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.log.Debug("api error", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return decodeError(resp.StatusCode, raw, table)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

var timeColumns = []string{"created_at", "updated_at"}

// normalizeRow turns RFC 3339 audit timestamps back into time.Time.
func normalizeRow(r gateway.Row) gateway.Row {
	for _, col := range timeColumns {
		if s, ok := r[col].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				r[col] = t
			}
		}
	}
	return r
}
