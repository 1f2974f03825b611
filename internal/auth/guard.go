package auth

// Status carries the two bits a navigation gate needs.
type Status struct {
	Loading       bool
	Authenticated bool
}

// Decision is a route guard verdict.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota
	// Pending means bootstrap has not resolved yet; show a neutral pending
	// indicator and make no redirect decision. Redirecting now would bounce
	// a returning authenticated user to login.
	Pending
	// Redirect sends the visitor to the guard's login destination.
	Redirect
)

// Guard gates navigation on session status. The user and admin navigation
// trees carry separate guards with separate login destinations, so an expired
// admin is never bounced into the user login page. Check is pure: callers
// re-invoke it whenever status changes (a background 401 must retroactively
// redirect).
type Guard struct {
	loginPath string
}

// NewUserGuard gates the user navigation tree.
func NewUserGuard() *Guard {
	return &Guard{loginPath: "/login"}
}

// NewAdminGuard gates the admin navigation tree.
func NewAdminGuard() *Guard {
	return &Guard{loginPath: "/admin/login"}
}

// Check returns the verdict for the given status, and the redirect
// destination when the verdict is Redirect.
func (g *Guard) Check(status Status) (Decision, string) {
	if status.Loading {
		return Pending, ""
	}
	if !status.Authenticated {
		return Redirect, g.loginPath
	}
	return Allow, ""
}
