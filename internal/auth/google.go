package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ErrWrongDomain means the Google account is outside the campus email domain.
// The server enforces the same rule; this pre-check just fails fast before
// the exchange round-trip.
var ErrWrongDomain = errors.New("email domain not allowed")

const googleFlowTimeout = 2 * time.Minute

// GoogleIdentity is what the client can read off a Google ID token without
// verifying it. Verification is the server's job during the exchange.
type GoogleIdentity struct {
	Email   string
	Name    string
	Picture string
}

// GoogleFlow obtains a Google sign-in credential by hosting the sign-in
// button on a loopback HTTP server: the browser opens the local page, the
// user picks an account, and Google posts the credential back to the local
// callback. The credential is then exchanged for a session via the
// controller's OAuth operations.
type GoogleFlow struct {
	ClientID      string
	AllowedDomain string
	Log           zerolog.Logger

	// OnReady receives the local URL to open once the server is listening.
	// The default prints it; tests drive the browser themselves.
	OnReady func(url string)
}

// Run serves the sign-in page and blocks until a credential arrives, the
// context is cancelled, or the flow times out.
func (f *GoogleFlow) Run(ctx context.Context) (string, error) {
	if f.ClientID == "" {
		return "", errors.New("google client ID is not configured")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to open loopback listener: %w", err)
	}

	credentials := make(chan string, 1)
	localURL := fmt.Sprintf("http://%s", listener.Addr().String())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// The sign-in button iframe and the credential POST originate from
	// Google's origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"https://accounts.google.com"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	router.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		signInPage.Execute(c.Writer, map[string]string{
			"ClientID": f.ClientID,
			"LoginURI": localURL + "/callback",
		})
	})
	router.POST("/callback", func(c *gin.Context) {
		credential := c.PostForm("credential")
		if credential == "" {
			c.String(http.StatusBadRequest, "missing credential")
			return
		}
		c.String(http.StatusOK, "Signed in. You can close this window and return to the terminal.")
		select {
		case credentials <- credential:
		default:
		}
	})

	server := &http.Server{Handler: router}
	go server.Serve(listener)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if f.OnReady != nil {
		f.OnReady(localURL)
	} else {
		fmt.Printf("Open %s in your browser to sign in with Google\n", localURL)
	}
	f.Log.Debug().Str("url", localURL).Msg("Waiting for Google credential")

	select {
	case credential := <-credentials:
		return credential, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(googleFlowTimeout):
		return "", errors.New("timed out waiting for Google sign-in")
	}
}

// Identity decodes the identity claims from a Google ID token without
// verifying its signature, and rejects accounts outside the campus domain so
// the user sees the restriction before the exchange is attempted.
func (f *GoogleFlow) Identity(credential string) (*GoogleIdentity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("failed to decode Google credential: %w", err)
	}

	identity := &GoogleIdentity{
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
	}
	if identity.Email == "" {
		return nil, errors.New("google credential carries no email")
	}

	if f.AllowedDomain != "" &&
		!strings.HasSuffix(strings.ToLower(identity.Email), "@"+strings.ToLower(f.AllowedDomain)) {
		return identity, fmt.Errorf("%w: only @%s accounts may sign in", ErrWrongDomain, f.AllowedDomain)
	}
	return identity, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if value, ok := claims[name].(string); ok {
		return value
	}
	return ""
}

var signInPage = template.Must(template.New("signin").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>TradeHub sign in</title>
  <script src="https://accounts.google.com/gsi/client" async></script>
</head>
<body>
  <p>Sign in with your campus Google account.</p>
  <div id="g_id_onload"
       data-client_id="{{.ClientID}}"
       data-login_uri="{{.LoginURI}}"
       data-ux_mode="redirect">
  </div>
  <div class="g_id_signin" data-type="standard"></div>
</body>
</html>
`))
