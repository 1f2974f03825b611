package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tradehub-dev/tradehub/internal/api"
)

// ReviewService calls the review endpoints with the user session.
type ReviewService struct {
	client *api.Client
}

// NewReviewService creates a review service over the shared client.
func NewReviewService(client *api.Client) *ReviewService {
	return &ReviewService{client: client}
}

// Submit posts a review for a completed trade.
func (s *ReviewService) Submit(ctx context.Context, input ReviewInput) (*Review, error) {
	var review Review
	if err := s.client.Do(ctx, http.MethodPost, "/reviews", input, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ForListing returns the reviews attached to a listing.
func (s *ReviewService) ForListing(ctx context.Context, listingID int) ([]Review, error) {
	var reviews []Review
	path := fmt.Sprintf("/reviews/listing/%d", listingID)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Received returns reviews written about the authenticated user.
func (s *ReviewService) Received(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := s.client.Do(ctx, http.MethodGet, "/reviews/my-reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Given returns reviews the authenticated user has written.
func (s *ReviewService) Given(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := s.client.Do(ctx, http.MethodGet, "/reviews/given", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Delete removes a review the user wrote.
func (s *ReviewService) Delete(ctx context.Context, reviewID int) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/reviews/%d", reviewID), nil, nil)
}
