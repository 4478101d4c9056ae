package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
)

// IdempotencyHeader is the header the backend de-duplicates writes on
const IdempotencyHeader = "X-Idempotency-Key"

// TokenSource provides and forgets the bearer token
type TokenSource interface {
	Token(ctx context.Context) string
	ClearToken(ctx context.Context)
}

// RequestOptions describes one call. JSON and Form are mutually exclusive.
type RequestOptions struct {
	Method string
	Query  url.Values
	JSON   any
	Form   url.Values
	Header http.Header
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource

	// OnUnauthorized runs after a 401 cleared the token; front-ends send the
	// user back to the login screen from here
	OnUnauthorized func()

	HTTPClient *http.Client
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	streamClient   *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// streams stay open indefinitely, so they must not inherit the timeout
	streamClient := &http.Client{Transport: httpClient.Transport}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     httpClient,
		streamClient:   streamClient,
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do performs the request and decodes the JSON response into out (which may
// be nil). A 2xx response with an empty body decodes as {}.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	req, err := c.newRequest(ctx, endpoint, opts)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrTransportFailed(err).
			WithDetail("method", req.Method).
			WithDetail("endpoint", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrTransportFailed(err).WithDetail("endpoint", endpoint)
	}

	if err := c.checkStatus(ctx, resp.StatusCode, body); err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ErrInvalidResponse(err).WithDetail("endpoint", endpoint)
	}
	return nil
}

// Stream opens a long-lived response (server push). The caller owns the
// returned body; cancelling ctx closes it.
func (c *Client) Stream(ctx context.Context, endpoint string, query url.Values) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: query})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, ErrTransportFailed(err).WithDetail("endpoint", endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if err := c.checkStatus(ctx, resp.StatusCode, body); err != nil {
			return nil, err
		}
	}

	return resp.Body, nil
}

func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.Do(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, out any) error {
	return c.Do(ctx, endpoint, RequestOptions{Method: http.MethodPost, JSON: body}, out)
}

func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	return c.Do(ctx, endpoint, RequestOptions{Method: http.MethodPost, Form: form}, out)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any, out any) error {
	return c.Do(ctx, endpoint, RequestOptions{Method: http.MethodPatch, JSON: body}, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, endpoint, RequestOptions{Method: http.MethodDelete}, out)
}

func (c *Client) newRequest(ctx context.Context, endpoint string, opts RequestOptions) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.Form != nil:
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case opts.JSON != nil:
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, ErrInvalidResponse(err).WithDetail("endpoint", endpoint).WithMessage("Failed to encode request body")
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, ErrTransportFailed(err).WithDetail("endpoint", endpoint)
	}

	for k, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if key := IdempotencyKeyFrom(ctx); key != "" && method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(IdempotencyHeader, key)
	}

	return req, nil
}

func (c *Client) checkStatus(ctx context.Context, status int, body []byte) error {
	if status == http.StatusUnauthorized {
		logx.Warn("API returned 401, clearing session")
		if c.tokens != nil {
			c.tokens.ClearToken(ctx)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized()
	}

	if status < 200 || status > 299 {
		return ErrRequestFailed(status, string(body))
	}
	return nil
}

func messageFromBody(body string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
