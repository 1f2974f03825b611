package commands

import (
	"fmt"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit profiles",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a profile (yours when no id is given)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			var profile *marketplace.Profile
			if len(args) == 1 {
				id, convErr := strconv.Atoi(args[0])
				if convErr != nil {
					return fmt.Errorf("invalid user id: %s", args[0])
				}
				profile, err = app.users.Get(cmd.Context(), id)
			} else {
				profile, err = app.users.Me(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to fetch profile: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("%s (%s)\n", profile.Name, profile.Email)
			if profile.Phone != "" {
				fmt.Printf("Phone:    %s\n", profile.Phone)
			}
			fmt.Printf("Listings: %d (%d sold)\n", profile.ListingCount, profile.SoldCount)
			if profile.AvgRating != nil {
				fmt.Printf("Rating:   %.1f (%d reviews)\n", *profile.AvgRating, profile.ReviewCount)
			}
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var name, phone string
	var changePassword bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			var update marketplace.ProfileUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("phone") {
				update.Phone = &phone
			}

			if changePassword {
				if !term.IsTerminal(int(syscall.Stdin)) {
					return fmt.Errorf("password change requires an interactive terminal")
				}
				current, err := promptPassword("Current password: ")
				if err != nil {
					return err
				}
				next, err := promptPassword("New password: ")
				if err != nil {
					return err
				}
				update.CurrentPassword = &current
				update.NewPassword = &next
			}

			profile, err := app.users.UpdateMe(cmd.Context(), update)
			if err != nil {
				return fmt.Errorf("failed to update profile: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("✓ Profile updated: %s\n", profile.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().BoolVar(&changePassword, "change-password", false, "Change your password (prompts)")

	return cmd
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return string(bytePassword), nil
}
