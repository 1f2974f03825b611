package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tradehub-dev/tradehub/internal/admin"
	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/auth"
	"github.com/tradehub-dev/tradehub/internal/cli/config"
	"github.com/tradehub-dev/tradehub/internal/logger"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
	"github.com/tradehub-dev/tradehub/internal/session"
)

// app wires the services one command invocation needs.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	client     *api.Client
	nav        *terminalNavigator
	userStore  *session.Store[marketplace.User]
	adminStore *session.Store[admin.User]
	controller *auth.Controller
	adminSvc   *admin.Service

	listings *marketplace.ListingService
	messages *marketplace.MessageService
	reviews  *marketplace.ReviewService
	users    *marketplace.UserService
}

// sessionBackend picks where session material lives. The OS keychain is the
// default; TRADEHUB_SESSION_FILE switches to a plain file for headless
// machines and CI.
func sessionBackend() session.Backend {
	if path := os.Getenv("TRADEHUB_SESSION_FILE"); path != "" {
		return session.NewFileBackend(path)
	}
	return session.NewKeyringBackend()
}

// newApp loads config and wires the full service graph. The transport's 401
// handling is attached to the user session so an expired token tears down the
// cached state before the next command touches it.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	backend := sessionBackend()
	userStore := session.New[marketplace.User](backend, session.UserTokenKey, session.UserPrincipalKey)
	adminStore := session.New[admin.User](backend, session.AdminTokenKey, session.AdminPrincipalKey)

	client := api.New(cfg.APIURL, log)
	nav := &terminalNavigator{}
	controller := auth.NewController(client, userStore, log)
	client.AttachSession(userStore, controller, nav)

	gateway := api.NewAdminGateway(cfg.APIURL, adminStore, log)

	return &app{
		cfg:        cfg,
		log:        log,
		client:     client,
		nav:        nav,
		userStore:  userStore,
		adminStore: adminStore,
		controller: controller,
		adminSvc:   admin.NewService(gateway, adminStore, log),
		listings:   marketplace.NewListingService(client),
		messages:   marketplace.NewMessageService(client),
		reviews:    marketplace.NewReviewService(client),
		users:      marketplace.NewUserService(client),
	}, nil
}

// requireUser bootstraps the session and gates the command the way the route
// guard gates a page: an unresolved or unauthenticated session stops here.
func (a *app) requireUser(ctx context.Context) (*marketplace.User, error) {
	a.controller.Bootstrap(ctx)

	guard := auth.NewUserGuard()
	if decision, _ := guard.Check(a.controller.Status()); decision != auth.Allow {
		return nil, fmt.Errorf("not logged in. Run 'tradehub login' first")
	}
	return a.controller.State().Principal, nil
}

// requireAdmin verifies the stored admin token and returns the role it
// carries.
func (a *app) requireAdmin(ctx context.Context) (string, error) {
	role, err := a.adminSvc.Verify(ctx)
	if err != nil {
		return "", fmt.Errorf("admin session invalid: %s. Run 'tradehub admin login'", api.Detail(err, "not authenticated"))
	}
	return role, nil
}

// terminalNavigator satisfies the transport's navigation hook. A CLI has no
// router, so the "current path" is whichever screen the running command
// stands in for; commands that collect credentials park it on the login page
// so a rejected password is not mistaken for an expired session. A forced
// redirect just tells the user what happened.
type terminalNavigator struct {
	path string
}

func (t *terminalNavigator) CurrentPath() string {
	if t.path == "" {
		return "/"
	}
	return t.path
}

func (t *terminalNavigator) Navigate(path string) {
	if path == "/login" {
		fmt.Fprintln(os.Stderr, "Session expired. Run 'tradehub login' to sign in again.")
	}
}
