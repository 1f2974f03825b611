package commands

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tradehub-dev/tradehub/internal/admin"
	"github.com/tradehub-dev/tradehub/internal/api"
)

// NewAdminCmd creates the admin command group. Every subcommand except login
// requires a verified admin session; the admin session is stored separately
// from the user session and neither can stand in for the other.
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office administration",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminLogoutCmd())
	cmd.AddCommand(newAdminVerifyCmd())
	cmd.AddCommand(newAdminDashboardCmd())
	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminListingsCmd())
	cmd.AddCommand(newAdminReportsCmd())
	cmd.AddCommand(newAdminAnalyticsCmd())
	cmd.AddCommand(newAdminCategoriesCmd())
	cmd.AddCommand(newAdminActivityLogCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the back office",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = os.Getenv("TRADEHUB_ADMIN_EMAIL")
			}
			if password == "" {
				password = os.Getenv("TRADEHUB_ADMIN_PASSWORD")
			}
			if email == "" {
				return fmt.Errorf("email is required (use --email flag or TRADEHUB_ADMIN_EMAIL env var)")
			}
			if password == "" {
				if !term.IsTerminal(int(syscall.Stdin)) {
					return fmt.Errorf("password is required in non-interactive mode")
				}
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			app, err := newApp()
			if err != nil {
				return err
			}

			user, err := app.adminSvc.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("admin login failed: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Println("✓ Admin login successful!")
			fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
			fmt.Printf("  Role: %s\n", user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email (or set TRADEHUB_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TRADEHUB_ADMIN_PASSWORD, will prompt if not provided)")

	return cmd
}

func newAdminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			app.adminSvc.Logout()
			fmt.Println("✓ Admin session cleared.")
			return nil
		},
	}
}

func newAdminVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			role, err := app.requireAdmin(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("✓ Admin session valid (role: %s)\n", role)
			return nil
		},
	}
}

func newAdminDashboardCmd() *cobra.Command {
	var activityLimit int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			stats, err := app.adminSvc.DashboardStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch dashboard: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("Users:    %d total, %d banned, %d new today\n", stats.TotalUsers, stats.BannedUsers, stats.NewUsersToday)
			fmt.Printf("Listings: %d total, %d active, %d new today\n", stats.TotalListings, stats.ActiveListings, stats.NewListingsToday)
			fmt.Printf("Messages: %d\n", stats.TotalMessages)
			fmt.Printf("Trades:   %d\n", stats.TotalTrades)
			fmt.Printf("Reports:  %d pending\n", stats.PendingReports)

			activity, err := app.adminSvc.RecentActivity(cmd.Context(), activityLimit)
			if err != nil {
				return fmt.Errorf("failed to fetch activity: %s", api.Detail(err, "could not reach the server"))
			}
			if len(activity) > 0 {
				fmt.Println("\nRecent activity:")
				for _, item := range activity {
					fmt.Printf("  [%s] %s", item.CreatedAt.Local().Format("Jan 02 15:04"), item.Action)
					if item.AdminName != "" {
						fmt.Printf(" by %s", item.AdminName)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&activityLimit, "activity", 10, "Number of recent activity entries")

	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage marketplace users",
	}

	var filter admin.UserFilter
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			page, err := app.adminSvc.Users(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list users: %s", api.Detail(err, "could not reach the server"))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tBANNED\tLISTINGS")
			fmt.Fprintln(w, "──\t─────\t────\t────\t──────\t────────")
			for _, u := range page.Users {
				banned := ""
				if u.IsBanned {
					banned = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", u.ID, u.Email, u.Name, u.Role, banned, u.ListingCount)
			}
			w.Flush()
			fmt.Printf("\nPage %d of %d (%d users total)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}
	lsCmd.Flags().StringVar(&filter.Search, "search", "", "Search by name or email")
	lsCmd.Flags().StringVar(&filter.Role, "role", "", "Role filter (user, admin, super_admin)")
	lsCmd.Flags().StringVar(&filter.Status, "status", "", "Status filter (active, banned)")
	lsCmd.Flags().StringVar(&filter.SortBy, "sort", "", "Sort order")
	lsCmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	lsCmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")
	cmd.AddCommand(lsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a user in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			detail, err := app.adminSvc.UserDetail(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch user: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("%s (%s)  role=%s\n", detail.Name, detail.Email, detail.Role)
			if detail.IsBanned {
				fmt.Printf("BANNED: %s\n", detail.BannedReason)
				if detail.BanExpiresAt != nil {
					fmt.Printf("Ban expires: %s\n", detail.BanExpiresAt.Local().Format("2006-01-02"))
				}
			}
			fmt.Printf("Listings: %d total, %d active, %d sold\n", detail.TotalListings, detail.ActiveListings, detail.SoldListings)
			fmt.Printf("Messages: %d sent, %d received\n", detail.MessagesSent, detail.MessagesReceived)
			fmt.Printf("Reports:  %d filed, %d against\n", detail.ReportsFiled, detail.ReportsAgainst)
			if detail.AvgRating != nil {
				fmt.Printf("Rating:   %.1f (%d reviews)\n", *detail.AvgRating, detail.ReviewsReceived)
			}
			return nil
		},
	})

	var banReq admin.BanRequest
	var banDays int
	banCmd := &cobra.Command{
		Use:   "ban <id>",
		Short: "Ban a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if banReq.Reason == "" {
				return fmt.Errorf("--reason is required")
			}
			if cmd.Flags().Changed("days") {
				banReq.DurationDays = &banDays
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.BanUser(cmd.Context(), id, banReq); err != nil {
				return fmt.Errorf("failed to ban user: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ User banned.")
			return nil
		},
	}
	banCmd.Flags().StringVar(&banReq.Reason, "reason", "", "Why the user is being banned")
	banCmd.Flags().IntVar(&banDays, "days", 0, "Ban duration in days (permanent if omitted)")
	banCmd.Flags().BoolVar(&banReq.DeleteListings, "delete-listings", false, "Also remove the user's listings")
	banCmd.Flags().BoolVar(&banReq.NotifyUser, "notify", false, "Email the user about the ban")
	cmd.AddCommand(banCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "unban <id>",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.UnbanUser(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to unban user: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Ban lifted.")
			return nil
		},
	})

	var newRole string
	roleCmd := &cobra.Command{
		Use:   "role <id>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if newRole == "" {
				return fmt.Errorf("--set is required (user, admin, super_admin)")
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.ChangeRole(cmd.Context(), id, newRole); err != nil {
				return fmt.Errorf("failed to change role: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Printf("✓ Role set to %s.\n", newRole)
			return nil
		},
	}
	roleCmd.Flags().StringVar(&newRole, "set", "", "New role")
	cmd.AddCommand(roleCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.DeleteUser(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete user: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ User deleted.")
			return nil
		},
	})

	return cmd
}

func newAdminListingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Moderate listings",
	}

	var filter admin.ListingFilter
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List listings for moderation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			page, err := app.adminSvc.Listings(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list listings: %s", api.Detail(err, "could not reach the server"))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS\tSELLER\tREPORTS")
			fmt.Fprintln(w, "──\t─────\t─────\t──────\t──────\t───────")
			for _, l := range page.Listings {
				fmt.Fprintf(w, "%d\t%s\t₹%.2f\t%s\t%s\t%d\n", l.ID, l.Title, l.Price, l.Status, l.SellerEmail, l.ReportsCount)
			}
			w.Flush()
			fmt.Printf("\nPage %d of %d (%d listings total)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}
	lsCmd.Flags().StringVar(&filter.Search, "search", "", "Search term")
	lsCmd.Flags().StringVar(&filter.Status, "status", "", "Status filter")
	lsCmd.Flags().StringVar(&filter.Category, "category", "", "Category filter")
	lsCmd.Flags().StringVar(&filter.SortBy, "sort", "", "Sort order")
	lsCmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	lsCmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")
	cmd.AddCommand(lsCmd)

	var hideReason string
	hideCmd := &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide a listing from the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "listing")
			if err != nil {
				return err
			}
			if hideReason == "" {
				return fmt.Errorf("--reason is required")
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.HideListing(cmd.Context(), id, hideReason); err != nil {
				return fmt.Errorf("failed to hide listing: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Listing hidden.")
			return nil
		},
	}
	hideCmd.Flags().StringVar(&hideReason, "reason", "", "Reason shown to the seller")
	cmd.AddCommand(hideCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Restore a hidden listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "listing")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.ShowListing(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to restore listing: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Listing restored.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "listing")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.DeleteListing(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete listing: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Listing deleted.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "feature <id>",
		Short: "Toggle a listing's featured flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "listing")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.ToggleFeature(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to toggle feature: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Featured flag toggled.")
			return nil
		},
	})

	return cmd
}

func newAdminReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Work the report queue",
	}

	var filter admin.ReportFilter
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			page, err := app.adminSvc.Reports(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list reports: %s", api.Detail(err, "could not reach the server"))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tREASON\tSTATUS\tREPORTER")
			fmt.Fprintln(w, "──\t────\t──────\t──────\t────────")
			for _, r := range page.Reports {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.ReportType, truncate(r.Reason, 40), r.Status, r.ReporterEmail)
			}
			w.Flush()
			fmt.Printf("\nPage %d of %d (%d reports total)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}
	lsCmd.Flags().StringVar(&filter.Status, "status", "", "Status filter (pending, reviewed, resolved, dismissed)")
	lsCmd.Flags().StringVar(&filter.ReportType, "type", "", "Report type filter")
	lsCmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	lsCmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")
	cmd.AddCommand(lsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "report")
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			r, err := app.adminSvc.ReportDetail(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch report: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("Report #%d (%s) status=%s\n", r.ID, r.ReportType, r.Status)
			fmt.Printf("Reporter: %s\n", r.ReporterEmail)
			if r.ListingTitle != "" {
				fmt.Printf("Listing:  %s\n", r.ListingTitle)
			}
			if r.ReportedUserName != "" {
				fmt.Printf("Against:  %s\n", r.ReportedUserName)
			}
			fmt.Printf("Reason:   %s\n", r.Reason)
			if r.Description != "" {
				fmt.Printf("\n%s\n", r.Description)
			}
			if r.AdminNotes != "" {
				fmt.Printf("\nAdmin notes: %s\n", r.AdminNotes)
			}
			return nil
		},
	})

	var review admin.ReviewRequest
	reviewCmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Record the outcome of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "report")
			if err != nil {
				return err
			}
			if review.Status == "" {
				return fmt.Errorf("--status is required (reviewed, resolved, dismissed)")
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.adminSvc.ReviewReport(cmd.Context(), id, review); err != nil {
				return fmt.Errorf("failed to review report: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Report reviewed.")
			return nil
		},
	}
	reviewCmd.Flags().StringVar(&review.Status, "status", "", "New status")
	reviewCmd.Flags().StringVar(&review.AdminNotes, "notes", "", "Internal notes")
	reviewCmd.Flags().StringVar(&review.ActionTaken, "action", "", "Action taken")
	cmd.AddCommand(reviewCmd)

	return cmd
}

func newAdminAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Growth and activity analytics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "User growth",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			a, err := app.adminSvc.UserAnalytics(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch analytics: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("Total users:   %d (%d banned)\n", a.TotalUsers, a.BannedUsers)
			fmt.Printf("New today:     %d\n", a.NewUsersToday)
			fmt.Printf("New this week: %d\n", a.NewUsersWeek)
			fmt.Printf("Active today:  %d\n", a.ActiveUsersToday)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "listings",
		Short: "Listing activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			a, err := app.adminSvc.ListingAnalytics(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch analytics: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("Total listings: %d (%d active, %d sold, %d hidden)\n",
				a.TotalListings, a.ActiveListings, a.SoldListings, a.HiddenListings)
			fmt.Printf("New today:      %d\n", a.NewListingsToday)
			if len(a.ListingsByCategory) > 0 {
				fmt.Println("\nBy category:")
				for _, row := range a.ListingsByCategory {
					fmt.Printf("  %-20s %d\n", row.Category, row.Count)
				}
			}
			return nil
		},
	})

	return cmd
}

func newAdminCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage marketplace categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			cats, err := app.adminSvc.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list categories: %s", api.Detail(err, "could not reach the server"))
			}

			for _, c := range cats {
				marker := " "
				if !c.IsActive {
					marker = "✗"
				}
				fmt.Printf("%s %d  %s\n", marker, c.ID, c.Name)
			}
			return nil
		},
	})

	var description, icon string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			cat, err := app.adminSvc.CreateCategory(cmd.Context(), admin.Category{
				Name:        args[0],
				Description: description,
				Icon:        icon,
				IsActive:    true,
			})
			if err != nil {
				return fmt.Errorf("failed to create category: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Printf("✓ Category created (id %d): %s\n", cat.ID, cat.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&description, "description", "", "Category description")
	addCmd.Flags().StringVar(&icon, "icon", "", "Category icon name")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a category (picks interactively when no id is given)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			var id int
			if len(args) == 1 {
				id, err = parseID(args[0], "category")
				if err != nil {
					return err
				}
			} else {
				id, err = pickCategory(cmd, app)
				if err != nil {
					return err
				}
			}

			if err := app.adminSvc.DeleteCategory(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete category: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Category deleted.")
			return nil
		},
	})

	return cmd
}

func newAdminActivityLogCmd() *cobra.Command {
	var filter admin.ActivityLogFilter

	cmd := &cobra.Command{
		Use:   "activity-log",
		Short: "Browse the admin audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			page, err := app.adminSvc.ActivityLog(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to fetch activity log: %s", api.Detail(err, "could not reach the server"))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tADMIN\tACTION\tTARGET")
			fmt.Fprintln(w, "────\t─────\t──────\t──────")
			for _, e := range page.Logs {
				target := e.TargetType
				if e.TargetID != nil {
					target = fmt.Sprintf("%s #%d", e.TargetType, *e.TargetID)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format("Jan 02 15:04"), e.AdminEmail, e.Action, target)
			}
			w.Flush()
			fmt.Printf("\nPage %d of %d (%d entries total)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&filter.AdminID, "admin", 0, "Filter by admin id")
	cmd.Flags().StringVar(&filter.Action, "action", "", "Filter by action")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")

	return cmd
}

func pickCategory(cmd *cobra.Command, app *app) (int, error) {
	cats, err := app.adminSvc.Categories(cmd.Context())
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %s", api.Detail(err, "could not reach the server"))
	}
	if len(cats) == 0 {
		return 0, fmt.Errorf("no categories to delete")
	}

	type categoryOption struct {
		Label    string
		Category *admin.Category
	}

	options := make([]categoryOption, len(cats))
	for i := range cats {
		options[i] = categoryOption{Label: cats[i].Name, Category: &cats[i]}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a category",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("category selection cancelled: %w", err)
	}
	return options[index].Category.ID, nil
}

func parseID(raw, what string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id: %s", what, raw)
	}
	return id, nil
}
