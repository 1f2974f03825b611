package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token string
}

func (f *fakeTokens) Token() (string, bool) {
	return f.token, f.token != ""
}

type fakeSession struct {
	cleared bool
}

func (f *fakeSession) Clear() {
	f.cleared = true
}

type fakeNavigator struct {
	current    string
	navigated  []string
}

func (f *fakeNavigator) CurrentPath() string {
	return f.current
}

func (f *fakeNavigator) Navigate(path string) {
	f.navigated = append(f.navigated, path)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *fakeTokens, *fakeSession, *fakeNavigator) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := &fakeTokens{}
	sessions := &fakeSession{}
	nav := &fakeNavigator{current: "/listings"}

	client := New(server.URL, zerolog.Nop())
	client.AttachSession(tokens, sessions, nav)
	return client, tokens, sessions, nav
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, tokens, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))

	tokens.token = "T"
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil))
	assert.Equal(t, "Bearer T", gotAuth)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/listings", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestClientDecodesResponse(t *testing.T) {
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "name": "Bob"}`))
	}))

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/users/7", nil, &out))
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "Bob", out.Name)
}

func TestClientUnauthorizedClearsSessionAndRedirects(t *testing.T) {
	client, tokens, sessions, nav := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid or expired token"}`))
	}))
	tokens.token = "stale"

	// The endpoint that produced the 401 is irrelevant; the policy is global.
	err := client.Do(context.Background(), http.MethodGet, "/messages/conversations", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.True(t, sessions.cleared)
	assert.Equal(t, []string{"/login"}, nav.navigated)
}

func TestClientUnauthorizedOnLoginPageDoesNotRedirect(t *testing.T) {
	for _, current := range []string{"/login", "/admin/login"} {
		client, _, sessions, nav := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		nav.current = current

		err := client.Do(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a@x"}, nil)
		require.Error(t, err)
		// The session is still cleared, but no redirect loop.
		assert.True(t, sessions.cleared, "current=%s", current)
		assert.Empty(t, nav.navigated, "current=%s", current)
	}
}

func TestClientRewritesThrottledMessage(t *testing.T) {
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	err := client.Do(context.Background(), http.MethodGet, "/listings", nil, nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Equal(t, throttledDetail, httpErr.Detail)
}

func TestClientKeepsServerThrottleDetail(t *testing.T) {
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail": "Rate limit exceeded, retry in 30s"}`))
	}))

	err := client.Do(context.Background(), http.MethodGet, "/listings", nil, nil)
	assert.Equal(t, "Rate limit exceeded, retry in 30s", Detail(err, "fallback"))
}

func TestClientSurfacesServerDetail(t *testing.T) {
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Email already registered"}`))
	}))

	err := client.Do(context.Background(), http.MethodPost, "/auth/register", map[string]string{}, nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Email already registered", httpErr.Detail)
}

func TestClientTimeoutIsNetworkError(t *testing.T) {
	client, _, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	client.SetHTTPClient(&http.Client{Timeout: 20 * time.Millisecond})

	err := client.Do(context.Background(), http.MethodGet, "/listings", nil, nil)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestClientConnectionRefusedIsNetworkError(t *testing.T) {
	client := New("http://127.0.0.1:1", zerolog.Nop())

	err := client.Do(context.Background(), http.MethodGet, "/listings", nil, nil)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestDetailFallback(t *testing.T) {
	assert.Equal(t, "generic", Detail(errors.New("boom"), "generic"))
	assert.Equal(t, "generic", Detail(&HTTPError{Status: 500}, "generic"))
	assert.Equal(t, "specific", Detail(&HTTPError{Status: 500, Detail: "specific"}, "generic"))
}
