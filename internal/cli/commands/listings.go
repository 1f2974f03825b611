package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
	"github.com/tradehub-dev/tradehub/internal/validate"
)

// NewListingsCmd creates the listings command group
func NewListingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Browse and inspect marketplace listings",
	}

	cmd.AddCommand(newListingsBrowseCmd())
	cmd.AddCommand(newListingsGetCmd())
	cmd.AddCommand(newListingsMineCmd())

	return cmd
}

func newListingsBrowseCmd() *cobra.Command {
	var filter marketplace.ListingFilter
	var minPrice, maxPrice float64

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"browse"},
		Short:   "Browse listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-price") {
				filter.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				filter.MaxPrice = &maxPrice
			}

			app, err := newApp()
			if err != nil {
				return err
			}

			page, err := app.listings.Browse(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to browse listings: %s", api.Detail(err, "could not reach the server"))
			}

			if len(page.Listings) == 0 {
				fmt.Println("No listings found.")
				return nil
			}

			printListingTable(page.Listings)
			fmt.Printf("\nPage %d of %d (%d listings total)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Search term")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Category filter")
	cmd.Flags().StringVar(&filter.Condition, "condition", "", "Condition filter (new, like_new, good, fair, poor)")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().StringVar(&filter.SortBy, "sort", "", "Sort order (newest, oldest, price_low, price_high)")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")

	return cmd
}

func newListingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}

			listing, err := app.listings.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch listing: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("%s  (₹%.2f)\n", listing.Title, listing.Price)
			fmt.Printf("Category:  %s\n", listing.Category)
			fmt.Printf("Condition: %s\n", listing.Condition)
			fmt.Printf("Status:    %s\n", listing.Status)
			fmt.Printf("Views:     %d\n", listing.Views)
			if listing.Seller != nil {
				fmt.Printf("Seller:    %s (%s)\n", listing.Seller.Name, listing.Seller.Email)
			}
			fmt.Printf("\n%s\n", listing.Description)
			return nil
		},
	}
}

func newListingsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			listings, err := app.listings.Mine(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch your listings: %s", api.Detail(err, "could not reach the server"))
			}

			if len(listings) == 0 {
				fmt.Println("You have no listings.")
				fmt.Println("\nCreate one with: tradehub sell create")
				return nil
			}

			printListingTable(listings)
			return nil
		},
	}
}

// NewSellCmd creates the sell command group for managing your own listings
func NewSellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Create and manage your listings",
	}

	cmd.AddCommand(newSellCreateCmd())
	cmd.AddCommand(newSellUpdateCmd())
	cmd.AddCommand(newSellSoldCmd())
	cmd.AddCommand(newSellDeleteCmd())

	return cmd
}

func newSellCreateCmd() *cobra.Command {
	var input marketplace.ListingInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := validate.New(app.cfg.AllowedEmailDomain).Struct(input); err != nil {
				return err
			}

			listing, err := app.listings.Create(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to create listing: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("✓ Listing created (id %d): %s\n", listing.ID, listing.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Listing title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Listing description")
	cmd.Flags().Float64Var(&input.Price, "price", 0, "Price")
	cmd.Flags().StringVar(&input.Category, "category", "", "Category")
	cmd.Flags().StringVar(&input.Condition, "condition", "", "Condition (new, like_new, good, fair, poor)")
	cmd.Flags().StringSliceVar(&input.ImagePaths, "image", nil, "Image file (repeatable, up to 3)")

	return cmd
}

func newSellUpdateCmd() *cobra.Command {
	var title, description, category, condition, status string
	var price float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			// Only flags the user set travel in the payload.
			var update marketplace.ListingUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("category") {
				update.Category = &category
			}
			if cmd.Flags().Changed("condition") {
				update.Condition = &condition
			}
			if cmd.Flags().Changed("status") {
				update.Status = &status
			}
			if cmd.Flags().Changed("price") {
				update.Price = &price
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			listing, err := app.listings.Update(cmd.Context(), id, update)
			if err != nil {
				return fmt.Errorf("failed to update listing: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("✓ Listing updated: %s\n", listing.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().Float64Var(&price, "price", 0, "New price")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&condition, "condition", "", "New condition")
	cmd.Flags().StringVar(&status, "status", "", "New status (available, sold, reserved)")

	return cmd
}

func newSellSoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sold <id>",
		Short: "Mark a listing as sold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			listing, err := app.listings.MarkSold(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to mark listing sold: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("✓ %s is now marked sold.\n", listing.Title)
			return nil
		},
	}
}

func newSellDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := app.listings.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete listing: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Println("✓ Listing deleted.")
			return nil
		},
	}
}

// NewFavoritesCmd creates the favorites command group
func NewFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorited listings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List your favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			listings, err := app.listings.Favorites(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch favorites: %s", api.Detail(err, "could not reach the server"))
			}

			if len(listings) == 0 {
				fmt.Println("No favorites yet.")
				return nil
			}
			printListingTable(listings)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id>",
		Short: "Favorite a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := app.listings.Favorite(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to favorite listing: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Added to favorites.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Unfavorite a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := app.listings.Unfavorite(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to unfavorite listing: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Removed from favorites.")
			return nil
		},
	})

	return cmd
}

func printListingTable(listings []marketplace.Listing) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCONDITION\tSTATUS\tCATEGORY")
	fmt.Fprintln(w, "──\t─────\t─────\t─────────\t──────\t────────")
	for _, l := range listings {
		fmt.Fprintf(w, "%d\t%s\t₹%.2f\t%s\t%s\t%s\n",
			l.ID, l.Title, l.Price, l.Condition, l.Status, l.Category)
	}
	w.Flush()
}
