package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// Requests that take longer than this are aborted and surface as a
	// NetworkError.
	defaultTimeout = 15 * time.Second

	loginPath      = "/login"
	adminLoginPath = "/admin/login"

	throttledDetail = "Too many requests. Please slow down."
)

// TokenSource supplies the bearer token attached to outbound requests.
type TokenSource interface {
	Token() (string, bool)
}

// SessionClearer tears down the persisted user session.
type SessionClearer interface {
	Clear()
}

// Navigator abstracts the client's notion of "where the user currently is"
// and how to move them. The CLI and tests plug in their own implementations.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Client is the HTTP core every user-scoped call goes through. It attaches the
// user bearer token, enforces a request timeout and a client-side rate limit,
// translates failures into NetworkError/HTTPError, and applies one
// cross-cutting policy: any 401 response clears the user session and navigates
// to the login page, so session expiry behaves identically no matter which
// call detected it. Admin-scoped calls use AdminGateway instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	sessions   SessionClearer
	nav        Navigator
	log        zerolog.Logger
}

// New creates a client for the given API base URL.
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		// Generous ceiling that still keeps a misbehaving loop from
		// hammering the server into 429s.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     log,
	}
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// AttachSession wires the user token source, the session to clear on 401, and
// the navigator used for the expiry redirect.
func (c *Client) AttachSession(tokens TokenSource, sessions SessionClearer, nav Navigator) {
	c.tokens = tokens
	c.sessions = sessions
	c.nav = nav
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes a JSON response into out (out may be
// nil). The user bearer token is attached when present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reader, out)
}

// DoForm sends a request with a caller-built body (multipart uploads) and
// decodes a JSON response into out.
func (c *Client) DoForm(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	return c.send(ctx, method, path, contentType, body, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.translateFailure(req, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// translateFailure turns a non-2xx response into an HTTPError and applies the
// cross-cutting status policies.
func (c *Client) translateFailure(req *http.Request, resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.handleUnauthorized(req)
	case http.StatusTooManyRequests:
		if detail == "" {
			detail = throttledDetail
		}
	}

	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{Status: resp.StatusCode, Detail: detail}
}

// handleUnauthorized is the session-expiry circuit breaker: clear the
// persisted user session and force navigation to the login page. When the
// user is already on a login page the 401 is a rejected credential entry,
// not an expiry, so the stored session is still dropped but there is no
// redirect and no alarm in the log.
func (c *Client) handleUnauthorized(req *http.Request) {
	if c.onLoginPage() {
		c.log.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("Credentials rejected on login page")
		if c.sessions != nil {
			c.sessions.Clear()
		}
		return
	}

	c.log.Warn().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("Session rejected by server, clearing credentials")

	if c.sessions != nil {
		c.sessions.Clear()
	}
	if c.nav != nil {
		c.nav.Navigate(loginPath)
	}
}

func (c *Client) onLoginPage() bool {
	if c.nav == nil {
		return false
	}
	current := c.nav.CurrentPath()
	return strings.HasPrefix(current, loginPath) || strings.HasPrefix(current, adminLoginPath)
}

// readDetail pulls the server's {"detail": "..."} message out of a failure
// body, tolerating empty and non-JSON bodies.
func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return payload.Detail
}
