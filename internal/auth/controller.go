package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
	"github.com/tradehub-dev/tradehub/internal/session"
)

// State is the in-memory session state. Authenticated is derived: the session
// is authenticated exactly when a principal is present.
type State struct {
	Principal *marketplace.User
	Loading   bool
}

// Authenticated reports whether a principal is present.
func (s State) Authenticated() bool {
	return s.Principal != nil
}

// Status reduces State to the two bits the route guard consumes.
func (s State) Status() Status {
	return Status{Loading: s.Loading, Authenticated: s.Authenticated()}
}

// Credentials is an email/password login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the account-creation form. Registration is restricted to
// the campus email domain.
type Registration struct {
	Email    string `json:"email" validate:"required,email,campus_email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone,omitempty" validate:"max=20"`
}

// tokenResponse is the server's session envelope for every auth flow.
type tokenResponse struct {
	Token string           `json:"token"`
	User  marketplace.User `json:"user"`
}

// Controller owns the end-user session: it is the only mutator of State and
// of the persisted user session. It orchestrates login, registration, the two
// OAuth exchange variants, logout, and startup bootstrap. It never navigates;
// what happens after a transition is the caller's concern.
type Controller struct {
	client *api.Client
	store  *session.Store[marketplace.User]
	log    zerolog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewController creates a controller in the BOOTSTRAPPING state, seeded with
// the cached principal if one is persisted. Call Bootstrap to resolve it.
func NewController(client *api.Client, store *session.Store[marketplace.User], log zerolog.Logger) *Controller {
	principal, _ := store.Principal()
	return &Controller{
		client: client,
		store:  store,
		log:    log,
		state:  State{Principal: principal, Loading: true},
		subs:   map[int]func(State){},
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the guard-facing reduction of the current state.
func (c *Controller) Status() Status {
	return c.State().Status()
}

// Subscribe registers fn to run after every state transition and returns an
// unsubscribe function. The guard uses this to re-evaluate on background
// expiry.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Bootstrap resolves the startup session exactly once. With a persisted token
// it asks the server who the token belongs to; success refreshes the cached
// principal, any failure (expiry included) clears the persisted session. With
// no token it skips the network entirely. Either way loading ends false and
// Bootstrap never returns an error to the caller.
func (c *Controller) Bootstrap(ctx context.Context) {
	if _, ok := c.store.Token(); !ok {
		c.setState(nil, false)
		return
	}

	var principal marketplace.User
	if err := c.client.Do(ctx, http.MethodGet, "/auth/me", nil, &principal); err != nil {
		c.log.Debug().Err(err).Msg("Stored session rejected, starting anonymous")
		c.store.Clear()
		c.setState(nil, false)
		return
	}

	// Refresh the cached snapshot before flipping state, so a concurrent
	// read of the persisted session observes a consistent pair.
	if err := c.store.SetPrincipal(&principal); err != nil {
		c.log.Warn().Err(err).Msg("Failed to refresh cached principal")
	}
	c.setState(&principal, false)
}

// Login authenticates with email and password. On failure the state is left
// unchanged and the error carries the server's detail for the caller's form.
func (c *Controller) Login(ctx context.Context, creds Credentials) (*marketplace.User, error) {
	return c.exchange(ctx, "/auth/login", creds, "Login failed")
}

// Register creates an account and signs the new user in. Same contract as
// Login.
func (c *Controller) Register(ctx context.Context, reg Registration) (*marketplace.User, error) {
	return c.exchange(ctx, "/auth/register", reg, "Registration failed")
}

// LoginWithCredential exchanges a Google ID token (the credential produced by
// the sign-in button flow) for a session.
func (c *Controller) LoginWithCredential(ctx context.Context, credential string) (*marketplace.User, error) {
	body := map[string]string{"token": credential}
	return c.exchange(ctx, "/auth/google", body, "Google login failed")
}

// LoginWithAccessToken exchanges an opaque Google OAuth access token for a
// session. Some OAuth flows surface only an access token rather than an ID
// token; callers need not know which flow produced theirs.
func (c *Controller) LoginWithAccessToken(ctx context.Context, accessToken string) (*marketplace.User, error) {
	body := map[string]string{"access_token": accessToken}
	return c.exchange(ctx, "/auth/google-token", body, "Google login failed")
}

// Logout clears the persisted session and transitions to anonymous. It never
// fails.
func (c *Controller) Logout() {
	c.Clear()
	c.log.Info().Msg("Logged out")
}

// Clear implements api.SessionClearer so the HTTP core's 401 circuit breaker
// tears down the in-memory state along with the persisted session. It is
// silent: the breaker decides what, if anything, to report.
func (c *Controller) Clear() {
	c.store.Clear()
	c.setState(nil, false)
}

func (c *Controller) exchange(ctx context.Context, path string, body any, fallback string) (*marketplace.User, error) {
	var resp tokenResponse
	if err := c.client.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		// Surface the failure but re-raise it: the calling form relies on
		// the error to keep its own submit state correct.
		c.log.Warn().Str("reason", api.Detail(err, fallback)).Msg(fallback)
		return nil, err
	}

	// Persist token and principal before the in-memory flip.
	if err := c.store.SetToken(resp.Token); err != nil {
		return nil, err
	}
	if err := c.store.SetPrincipal(&resp.User); err != nil {
		return nil, err
	}

	c.setState(&resp.User, false)
	c.log.Info().Str("email", resp.User.Email).Msg("Signed in")
	return &resp.User, nil
}

func (c *Controller) setState(principal *marketplace.User, loading bool) {
	c.mu.Lock()
	c.state = State{Principal: principal, Loading: loading}
	state := c.state
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
