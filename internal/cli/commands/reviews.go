package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
	"github.com/tradehub-dev/tradehub/internal/validate"
)

// NewReviewsCmd creates the reviews command group
func NewReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Leave and read trade reviews",
	}

	cmd.AddCommand(newReviewsSubmitCmd())
	cmd.AddCommand(newReviewsReceivedCmd())
	cmd.AddCommand(newReviewsGivenCmd())
	cmd.AddCommand(newReviewsListingCmd())
	cmd.AddCommand(newReviewsDeleteCmd())

	return cmd
}

func newReviewsSubmitCmd() *cobra.Command {
	var input marketplace.ReviewInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Review a user after a trade",
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

			review, err := app.reviews.Submit(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to submit review: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("✓ Review submitted (%d stars).\n", review.Rating)
			return nil
		},
	}

	cmd.Flags().IntVar(&input.ReviewedUserID, "user", 0, "User being reviewed")
	cmd.Flags().IntVar(&input.ListingID, "listing", 0, "Listing the trade was about")
	cmd.Flags().IntVar(&input.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&input.Comment, "comment", "", "Optional comment")

	return cmd
}

func newReviewsReceivedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "received",
		Short: "Reviews others left for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			reviews, err := app.reviews.Received(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch reviews: %s", api.Detail(err, "could not reach the server"))
			}
			printReviews(reviews)
			return nil
		},
	}
}

func newReviewsGivenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "given",
		Short: "Reviews you left for others",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			reviews, err := app.reviews.Given(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch reviews: %s", api.Detail(err, "could not reach the server"))
			}
			printReviews(reviews)
			return nil
		},
	}
}

func newReviewsListingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listing <id>",
		Short: "Reviews attached to a listing",
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

			reviews, err := app.reviews.ForListing(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch reviews: %s", api.Detail(err, "could not reach the server"))
			}
			printReviews(reviews)
			return nil
		},
	}
}

func newReviewsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid review id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := app.reviews.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete review: %s", api.Detail(err, "could not reach the server"))
			}
			fmt.Println("✓ Review deleted.")
			return nil
		},
	}
}

func printReviews(reviews []marketplace.Review) {
	if len(reviews) == 0 {
		fmt.Println("No reviews.")
		return
	}
	for _, r := range reviews {
		name := ""
		if r.Reviewer != nil {
			name = r.Reviewer.Name
		}
		fmt.Printf("%s %s", stars(r.Rating), name)
		if r.Comment != "" {
			fmt.Printf(": %s", r.Comment)
		}
		fmt.Println()
	}
}

func stars(rating int) string {
	s := ""
	for i := 0; i < 5; i++ {
		if i < rating {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}
