// Package api is the remote resource transport of the OpenCircle client:
// typed HTTP calls, multipart submissions, cookie handling, and centralized
// failure interception.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
	"github.com/llwyd-bot123/opencircle-client/internal/obs"
)

// SessionCookieName is the cookie the server sets after a successful signin.
// The client only reads it, never writes it.
const SessionCookieName = "session_token"

// Client issues requests against the OpenCircle REST backend. It owns the
// cookie jar, maps statuses onto the failure taxonomy, and fires the
// session-loss hook on a 401 from any non-auth endpoint.
type Client struct {
	baseURL   *url.URL
	uploadURL string
	http      *http.Client
	log       logging.Logger
	metrics   *obs.Metrics

	mu             sync.Mutex
	onUnauthorized func()
	sessionLost    bool
}

// New builds a Client from cfg. The metrics argument may be nil.
func New(cfg *config.Config, log logging.Logger, metrics *obs.Metrics) (*Client, error) {
	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.APIBaseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init cookie jar: %w", err)
	}
	return &Client{
		baseURL:   base,
		uploadURL: strings.TrimRight(cfg.UploadBaseURL, "/"),
		http:      &http.Client{Jar: jar, Timeout: cfg.RequestTimeout},
		log:       log.With("component", "api"),
		metrics:   metrics,
	}, nil
}

// SetUnauthorizedHook registers the redirect-to-login side effect fired on a
// 401 from a non-auth endpoint. It runs at most once per session loss.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// ResetSessionLoss re-arms the unauthorized hook. Called after a new login.
func (c *Client) ResetSessionLoss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLost = false
}

// HasSessionCookie reports whether the jar currently holds the named cookie
// for the API origin.
func (c *Client) HasSessionCookie(name string) bool {
	if c.http.Jar == nil {
		return false
	}
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == name && ck.Value != "" {
			return true
		}
	}
	return false
}

// SessionCookie returns the named cookie's value, or "" when absent.
func (c *Client) SessionCookie(name string) string {
	if c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// AssetURL resolves a server-hosted asset to a fetchable URL.
func (c *Client) AssetURL(directory, filename string) string {
	if filename == "" {
		return ""
	}
	return c.uploadURL + "/" + strings.Trim(directory, "/") + "/" + filename
}

// Get issues a GET and decodes the success payload into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostForm issues a multipart POST.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	return c.doForm(ctx, http.MethodPost, path, form, out)
}

// PutForm issues a multipart PUT.
func (c *Client) PutForm(ctx context.Context, path string, form *Form, out any) error {
	return c.doForm(ctx, http.MethodPut, path, form, out)
}

// Delete issues a DELETE and decodes the success payload into out when out is
// non-nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

type bodySpec struct {
	reader      io.Reader
	contentType string
}

func (c *Client) doForm(ctx context.Context, method, path string, form *Form, out any) error {
	if form == nil {
		form = NewForm()
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, nil, &bodySpec{reader: body, contentType: contentType}, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body *bodySpec, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	done := c.metrics.Begin(method)
	resp, err := c.http.Do(req)
	if err != nil {
		done(0)
		c.log.Error(ctx, "request failed before reaching the server", "method", method, "path", path, "err", err)
		return newNetworkError(err)
	}
	defer resp.Body.Close()
	done(resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := newStatusError(resp.StatusCode, serverMessage(raw))
		if resp.StatusCode == 401 && !isAuthEndpoint(path) {
			c.fireSessionLoss(ctx)
		}
		c.log.Warn(ctx, "request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// isAuthEndpoint reports whether a 401 from path must be surfaced inline
// instead of triggering the global session-loss redirect.
func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "signin") || strings.HasSuffix(path, "/two_fa/verify")
}

// fireSessionLoss runs the unauthorized hook at most once until it is
// re-armed by the next login.
func (c *Client) fireSessionLoss(ctx context.Context) {
	c.mu.Lock()
	hook := c.onUnauthorized
	fire := !c.sessionLost && hook != nil
	c.sessionLost = true
	c.mu.Unlock()

	if fire {
		c.log.Info(ctx, "session lost, redirecting to login")
		hook()
	}
}

// serverMessage extracts the server's message field from an error body.
func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
