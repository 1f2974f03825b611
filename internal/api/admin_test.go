package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGatewayUsesAdminTokenOnly(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	// Both sessions exist at once; the gateway must pick the admin token.
	adminTokens := &fakeTokens{token: "ADMIN"}
	userTokens := &fakeTokens{token: "USER"}

	client := New(server.URL, zerolog.Nop())
	client.AttachSession(userTokens, &fakeSession{}, &fakeNavigator{})
	gateway := NewAdminGateway(server.URL, adminTokens, zerolog.Nop())

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, gateway.Request(context.Background(), http.MethodGet, "/verify", nil, &out))

	assert.Equal(t, "Bearer ADMIN", gotAuth)
	assert.Equal(t, "/admin/verify", gotPath)
	assert.Equal(t, "ok", out.Status)
}

func TestAdminGatewaySendsUnauthenticatedWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Not authenticated"}`))
	}))
	defer server.Close()

	gateway := NewAdminGateway(server.URL, &fakeTokens{}, zerolog.Nop())

	// The gateway does not pre-empt the server's rejection.
	err := gateway.Request(context.Background(), http.MethodGet, "/dashboard/stats", nil, nil)
	assert.Empty(t, gotAuth)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Not authenticated", Detail(err, ""))
}

func TestAdminGatewayUnauthorizedSkipsUserCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sessions := &fakeSession{}
	nav := &fakeNavigator{current: "/admin/users"}
	client := New(server.URL, zerolog.Nop())
	client.AttachSession(&fakeTokens{token: "USER"}, sessions, nav)

	gateway := NewAdminGateway(server.URL, &fakeTokens{token: "expired"}, zerolog.Nop())
	err := gateway.Request(context.Background(), http.MethodGet, "/verify", nil, nil)

	// An expired admin session must not clear the user session or bounce the
	// admin into the user login page.
	require.Error(t, err)
	assert.False(t, sessions.cleared)
	assert.Empty(t, nav.navigated)
}

func TestAdminGatewaySendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	gateway := NewAdminGateway(server.URL, &fakeTokens{token: "A"}, zerolog.Nop())
	body := map[string]string{"reason": "spam"}
	require.NoError(t, gateway.Request(context.Background(), http.MethodPut, "/listings/3/hide", body, nil))

	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"reason": "spam"}`, string(gotBody))
}
