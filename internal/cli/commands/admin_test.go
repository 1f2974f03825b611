package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradehub-dev/tradehub/internal/admin"
	"github.com/tradehub-dev/tradehub/internal/session"
)

func mockAdminServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/login":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req["email"] != "root@apsit.edu.in" || req["password"] != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid admin credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "admin-tok",
				"token_type":   "bearer",
				"user":         map[string]any{"id": 1, "email": "root@apsit.edu.in", "role": "admin"},
			})
		case "/admin/verify":
			if r.Header.Get("Authorization") != "Bearer admin-tok" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"valid": true, "role": "admin"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAdminLoginStoresSeparateSession(t *testing.T) {
	server := mockAdminServer(t)
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	cmd := NewAdminCmd()
	cmd.SetArgs([]string{"login", "--email", "root@apsit.edu.in", "--password", "hunter2"})
	require.NoError(t, cmd.Execute())

	backend := session.NewFileBackend(sessionFile)
	adminStore := session.New[admin.User](backend, session.AdminTokenKey, session.AdminPrincipalKey)
	token, ok := adminStore.Token()
	require.True(t, ok)
	assert.Equal(t, "admin-tok", token)

	// The user session stays empty.
	userToken, ok := backend.Get(session.UserTokenKey)
	assert.False(t, ok)
	assert.Empty(t, userToken)
}

func TestAdminVerifyWithoutSession(t *testing.T) {
	server := mockAdminServer(t)
	defer server.Close()

	setupTestEnvironment(t, server.URL)

	cmd := NewAdminCmd()
	cmd.SetArgs([]string{"verify"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin session invalid")
}

func TestAdminVerifyAfterLogin(t *testing.T) {
	server := mockAdminServer(t)
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	adminStore := session.New[admin.User](session.NewFileBackend(sessionFile), session.AdminTokenKey, session.AdminPrincipalKey)
	require.NoError(t, adminStore.SetToken("admin-tok"))

	cmd := NewAdminCmd()
	cmd.SetArgs([]string{"verify"})
	require.NoError(t, cmd.Execute())
}
