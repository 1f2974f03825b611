package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradehub-dev/tradehub/internal/marketplace"
	"github.com/tradehub-dev/tradehub/internal/session"
)

// setupTestEnvironment isolates config and session storage and points the CLI
// at the given mock server.
func setupTestEnvironment(t *testing.T, serverURL string) string {
	t.Helper()

	home := t.TempDir()
	sessionFile := filepath.Join(home, "session.json")
	t.Setenv("HOME", home)
	t.Setenv("TRADEHUB_SESSION_FILE", sessionFile)
	t.Setenv("TRADEHUB_API_URL", serverURL)
	return sessionFile
}

// mockAPIServer serves the auth endpoints the login commands hit.
func mockAPIServer(t *testing.T, email, password, token string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if req.Email != email || req.Password != password {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"token": token,
				"user":  map[string]any{"id": 1, "email": req.Email, "name": "Test User"},
			})
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "email": email, "name": "Test User"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLoginCommand_SuccessfulLogin(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	cmd := NewLoginCmd()
	cmd.SetArgs([]string{"--email", "test@apsit.edu.in", "--password", "password123"})
	require.NoError(t, cmd.Execute())

	store := session.New[marketplace.User](session.NewFileBackend(sessionFile), session.UserTokenKey, session.UserPrincipalKey)
	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "test-token-abc", token)

	user, ok := store.Principal()
	require.True(t, ok)
	assert.Equal(t, "test@apsit.edu.in", user.Email)
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	cmd := NewLoginCmd()
	cmd.SetArgs([]string{"--email", "test@apsit.edu.in", "--password", "wrong"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")

	store := session.New[marketplace.User](session.NewFileBackend(sessionFile), session.UserTokenKey, session.UserPrincipalKey)
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLoginCommand_RejectedPasswordShowsOnlyFormError(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	setupTestEnvironment(t, server.URL)

	// The 401 from a wrong password must not trip the session-expiry path:
	// no redirect hint, no logout chatter, just the form error.
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	defer func() { os.Stderr = old }()

	cmd := NewLoginCmd()
	cmd.SetArgs([]string{"--email", "test@apsit.edu.in", "--password", "wrong"})
	execErr := cmd.Execute()

	require.NoError(t, w.Close())
	os.Stderr = old
	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	require.Error(t, execErr)
	assert.Contains(t, execErr.Error(), "Invalid email or password")
	assert.NotContains(t, string(captured), "Session expired")
	assert.NotContains(t, string(captured), "Session rejected by server")
	assert.NotContains(t, string(captured), "Logged out")
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	setupTestEnvironment(t, "http://127.0.0.1:0")

	cmd := NewLoginCmd()
	cmd.SetArgs([]string{"--password", "password123"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestLoginCommand_EnvVarCredentials(t *testing.T) {
	server := mockAPIServer(t, "env@apsit.edu.in", "envpass", "env-token")
	defer server.Close()

	setupTestEnvironment(t, server.URL)
	t.Setenv("TRADEHUB_EMAIL", "env@apsit.edu.in")
	t.Setenv("TRADEHUB_PASSWORD", "envpass")

	cmd := NewLoginCmd()
	require.NoError(t, cmd.Execute())
}

func TestWhoamiRequiresLogin(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	setupTestEnvironment(t, server.URL)

	cmd := NewWhoamiCmd()
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestWhoamiAfterLogin(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	store := session.New[marketplace.User](session.NewFileBackend(sessionFile), session.UserTokenKey, session.UserPrincipalKey)
	require.NoError(t, store.SetToken("test-token-abc"))

	cmd := NewWhoamiCmd()
	require.NoError(t, cmd.Execute())
}

func TestLogoutForgetsSession(t *testing.T) {
	server := mockAPIServer(t, "test@apsit.edu.in", "password123", "test-token-abc")
	defer server.Close()

	sessionFile := setupTestEnvironment(t, server.URL)

	store := session.New[marketplace.User](session.NewFileBackend(sessionFile), session.UserTokenKey, session.UserPrincipalKey)
	require.NoError(t, store.SetToken("test-token-abc"))

	cmd := NewLogoutCmd()
	require.NoError(t, cmd.Execute())

	fresh := session.New[marketplace.User](session.NewFileBackend(sessionFile), session.UserTokenKey, session.UserPrincipalKey)
	_, ok := fresh.Token()
	assert.False(t, ok)
}
