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
)

// adminPrefix is prepended to every gateway endpoint.
const adminPrefix = "/admin"

// AdminGateway builds admin-scoped requests. It authorizes with the admin
// token, never the user token, and deliberately stays outside the user
// client's 401 circuit breaker: an expired admin session is detected by the
// admin entrypoint, which redirects to the admin login, not the user one. If
// no admin token is stored the request goes out unauthenticated and the server
// rejects it.
type AdminGateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

// NewAdminGateway creates a gateway for the given API base URL and admin
// token source.
func NewAdminGateway(baseURL string, tokens TokenSource, log zerolog.Logger) *AdminGateway {
	return &AdminGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		tokens: tokens,
		log:    log,
	}
}

// SetHTTPClient sets a custom HTTP client.
func (g *AdminGateway) SetHTTPClient(httpClient *http.Client) {
	g.httpClient = httpClient
}

// Request sends a JSON request to an admin endpoint (relative to /admin) and
// decodes the response payload into out. Callers never see the transport
// envelope.
func (g *AdminGateway) Request(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+adminPrefix+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if token, ok := g.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	g.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Admin request")

	if resp.StatusCode >= http.StatusBadRequest {
		detail := readDetail(resp.Body)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return &HTTPError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
