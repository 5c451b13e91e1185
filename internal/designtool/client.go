// Package designtool là client cho REST API của công cụ thiết kế (tương thích Figma).
// Token được truyền theo từng lời gọi vì mỗi account có integration riêng.
package designtool

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
)

// Config cấu hình client
type Config struct {
	APIURL  string
	Timeout time.Duration
}

// APIError lỗi HTTP non-2xx trả về từ API thiết kế
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("designtool: unexpected status %d: %s", e.StatusCode, e.Message)
}

// ErrMissingToken gọi API mà không có access token
var ErrMissingToken = errors.New("designtool: access token is required")

// Client gọi API thiết kế
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// NewClient tạo client; Timeout mặc định 10 giây
func NewClient(cfg Config) *Client {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.figma.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
	}
}

// FileRaw GET /v1/files/:key, trả nguyên JSON
func (c *Client) FileRaw(ctx context.Context, token, fileKey string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodGet, "/v1/files/"+url.PathEscape(fileKey), query, nil, &out)
	return out, err
}

// File GET /v1/files/:key, giải mã cây tài liệu
func (c *Client) File(ctx context.Context, token, fileKey string) (*File, error) {
	var out File
	if err := c.do(ctx, token, http.MethodGet, "/v1/files/"+url.PathEscape(fileKey), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NodesRaw GET /v1/files/:key/nodes?ids=...
func (c *Client) NodesRaw(ctx context.Context, token, fileKey string, ids []string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodGet, "/v1/files/"+url.PathEscape(fileKey)+"/nodes", idsQuery(ids), nil, &out)
	return out, err
}

// Nodes giống NodesRaw nhưng giải mã từng node
func (c *Client) Nodes(ctx context.Context, token, fileKey string, ids []string) (*NodesResponse, error) {
	var out NodesResponse
	if err := c.do(ctx, token, http.MethodGet, "/v1/files/"+url.PathEscape(fileKey)+"/nodes", idsQuery(ids), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Images GET /v1/images/:key, render node thành URL ảnh
func (c *Client) Images(ctx context.Context, token, fileKey string, ids []string, opts ImageOptions) (*ImagesResponse, error) {
	q := idsQuery(ids)
	if opts.Format != "" {
		q.Set("format", opts.Format)
	}
	if opts.Scale > 0 {
		q.Set("scale", strconv.FormatFloat(opts.Scale, 'f', -1, 64))
	}
	var out ImagesResponse
	if err := c.do(ctx, token, http.MethodGet, "/v1/images/"+url.PathEscape(fileKey), q, nil, &out); err != nil {
		return nil, err
	}
	if out.Err != nil && *out.Err != "" {
		return nil, &APIError{StatusCode: http.StatusBadRequest, Message: *out.Err}
	}
	return &out, nil
}

// Comments GET /v1/files/:key/comments
func (c *Client) Comments(ctx context.Context, token, fileKey string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, "/v1/files/"+url.PathEscape(fileKey)+"/comments", nil)
}

// PostComment POST /v1/files/:key/comments
func (c *Client) PostComment(ctx context.Context, token, fileKey string, body CommentRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodPost, "/v1/files/"+url.PathEscape(fileKey)+"/comments", nil, body, &out)
	return out, err
}

// Styles GET /v1/files/:key/styles
func (c *Client) Styles(ctx context.Context, token, fileKey string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, "/v1/files/"+url.PathEscape(fileKey)+"/styles", nil)
}

// Components GET /v1/files/:key/components
func (c *Client) Components(ctx context.Context, token, fileKey string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, "/v1/files/"+url.PathEscape(fileKey)+"/components", nil)
}

// Versions GET /v1/files/:key/versions
func (c *Client) Versions(ctx context.Context, token, fileKey string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, "/v1/files/"+url.PathEscape(fileKey)+"/versions", nil)
}

// TeamProjects GET /v1/teams/:team_id/projects
func (c *Client) TeamProjects(ctx context.Context, token, teamID string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, "/v1/teams/"+url.PathEscape(teamID)+"/projects", nil)
}

// CreateWebhook POST /v2/webhooks
func (c *Client) CreateWebhook(ctx context.Context, token string, body WebhookRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodPost, "/v2/webhooks", nil, body, &out)
	return out, err
}

func (c *Client) getRaw(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodGet, path, query, nil, &out)
	return out, err
}

func idsQuery(ids []string) url.Values {
	q := url.Values{}
	if len(ids) > 0 {
		q.Set("ids", strings.Join(ids, ","))
	}
	return q
}

type errorResponse struct {
	Status  int    `json:"status"`
	Err     string `json:"err"`
	Message string `json:"message"`
}

// do gửi request với Bearer token; không retry
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, in, out any) error {
	if token == "" {
		return ErrMissingToken
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("designtool: marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("designtool: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("designtool: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("designtool: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(raw))
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil {
			if e.Err != "" {
				msg = e.Err
			} else if e.Message != "" {
				msg = e.Message
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if rawOut, ok := out.(*json.RawMessage); ok {
		*rawOut = append((*rawOut)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("designtool: decode response: %w", err)
	}
	return nil
}
