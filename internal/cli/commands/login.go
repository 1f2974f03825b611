package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/auth"
	"github.com/tradehub-dev/tradehub/internal/validate"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var google bool
	var accessToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the marketplace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if google {
				return runGoogleLogin(cmd)
			}
			if accessToken != "" {
				return runAccessTokenLogin(cmd, accessToken)
			}
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set TRADEHUB_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TRADEHUB_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&google, "google", false, "Sign in with Google through a browser")
	cmd.Flags().StringVar(&accessToken, "google-access-token", "", "Sign in with a Google OAuth access token")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	if email == "" {
		email = os.Getenv("TRADEHUB_EMAIL")
	}
	if password == "" {
		password = os.Getenv("TRADEHUB_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or TRADEHUB_EMAIL env var)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or TRADEHUB_PASSWORD env var)")
		}
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	// A 401 here means the credentials were wrong, not that a session
	// expired. Parking on the login page keeps the breaker quiet.
	app.nav.path = "/login"

	user, err := app.controller.Login(cmd.Context(), auth.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %s", api.Detail(err, "could not reach the server"))
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	return nil
}

func runGoogleLogin(cmd *cobra.Command) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	if app.cfg.GoogleClientID == "" {
		return fmt.Errorf("google_client_id is not configured. Set it in the config file or TRADEHUB_GOOGLE_CLIENT_ID")
	}

	flow := &auth.GoogleFlow{
		ClientID:      app.cfg.GoogleClientID,
		AllowedDomain: app.cfg.AllowedEmailDomain,
		Log:           app.log,
	}

	credential, err := flow.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("google sign-in failed: %w", err)
	}

	// The domain check runs locally before the credential goes anywhere.
	identity, err := flow.Identity(credential)
	if err != nil {
		if errors.Is(err, auth.ErrWrongDomain) {
			return fmt.Errorf("only @%s accounts can sign in", app.cfg.AllowedEmailDomain)
		}
		return fmt.Errorf("google sign-in failed: %w", err)
	}

	app.nav.path = "/login"
	user, err := app.controller.LoginWithCredential(cmd.Context(), credential)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.Detail(err, "could not reach the server"))
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, identity.Email)
	return nil
}

func runAccessTokenLogin(cmd *cobra.Command, accessToken string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	app.nav.path = "/login"
	user, err := app.controller.LoginWithAccessToken(cmd.Context(), accessToken)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.Detail(err, "could not reach the server"))
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var email, name, phone, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a marketplace account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, email, name, phone, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Campus email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (optional)")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(cmd *cobra.Command, email, name, phone, password string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Println()
	}

	reg := auth.Registration{Email: email, Name: name, Phone: phone, Password: password}
	if err := validate.New(app.cfg.AllowedEmailDomain).Struct(reg); err != nil {
		return err
	}

	app.nav.path = "/login"
	user, err := app.controller.Register(cmd.Context(), reg)
	if err != nil {
		return fmt.Errorf("registration failed: %s", api.Detail(err, "could not reach the server"))
	}

	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			app.controller.Logout()
			fmt.Println("✓ Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			user, err := app.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n", user.Name, user.Email)
			if user.Phone != "" {
				fmt.Printf("Phone: %s\n", user.Phone)
			}
			if expiry, ok := sessionExpiry(app); ok {
				fmt.Printf("Session expires: %s\n", expiry.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// sessionExpiry reads the exp claim out of the stored token without verifying
// it. Display only; the server decides whether the token is still good.
func sessionExpiry(app *app) (time.Time, bool) {
	token, ok := app.userStore.Token()
	if !ok {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
