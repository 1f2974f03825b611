package session

import "encoding/json"

// Persisted key names. The user and admin sessions live under disjoint keys so
// the two authorization scopes can never read each other's credentials.
const (
	UserTokenKey     = "token"
	UserPrincipalKey = "user"

	AdminTokenKey     = "admin_token"
	AdminPrincipalKey = "admin_user"
)

// Backend is a string key/value store for session material. Absence is a valid
// state, not an error, so reads report presence with a bool.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Store persists one session: a bearer token and a cached principal snapshot of
// type P. It performs no validation and no network access. The same generic
// type backs both the end-user and the admin session, instantiated with
// distinct keys, so the two copies cannot drift apart.
type Store[P any] struct {
	backend      Backend
	tokenKey     string
	principalKey string
}

// New creates a store over the given backend and key pair.
func New[P any](backend Backend, tokenKey, principalKey string) *Store[P] {
	return &Store[P]{
		backend:      backend,
		tokenKey:     tokenKey,
		principalKey: principalKey,
	}
}

// Token returns the persisted bearer token, if any.
func (s *Store[P]) Token() (string, bool) {
	tok, ok := s.backend.Get(s.tokenKey)
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// SetToken persists the bearer token.
func (s *Store[P]) SetToken(token string) error {
	return s.backend.Set(s.tokenKey, token)
}

// Principal returns the cached principal snapshot, if any. A snapshot that no
// longer parses is treated as absent.
func (s *Store[P]) Principal() (*P, bool) {
	raw, ok := s.backend.Get(s.principalKey)
	if !ok || raw == "" {
		return nil, false
	}
	var p P
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// SetPrincipal persists the principal snapshot as JSON.
func (s *Store[P]) SetPrincipal(p *P) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.backend.Set(s.principalKey, string(data))
}

// Clear removes both the token and the principal. It is idempotent: clearing
// an already-empty session is a no-op.
func (s *Store[P]) Clear() {
	_ = s.backend.Delete(s.tokenKey)
	_ = s.backend.Delete(s.principalKey)
}
