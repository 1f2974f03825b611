package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tradehub-dev/tradehub/internal/api"
)

// UserService calls the user-profile endpoints with the user session.
type UserService struct {
	client *api.Client
}

// NewUserService creates a user service over the shared client.
func NewUserService(client *api.Client) *UserService {
	return &UserService{client: client}
}

// Me returns the authenticated user's own profile.
func (s *UserService) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.client.Do(ctx, http.MethodGet, "/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get returns another user's public profile.
func (s *UserService) Get(ctx context.Context, id int) (*Profile, error) {
	var profile Profile
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMe applies profile changes for the authenticated user.
func (s *UserService) UpdateMe(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	if err := s.client.Do(ctx, http.MethodPut, "/users/me", update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Listings returns a user's public listings.
func (s *UserService) Listings(ctx context.Context, userID int) ([]Listing, error) {
	var listings []Listing
	path := fmt.Sprintf("/users/%d/listings", userID)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Reviews returns the reviews written about a user.
func (s *UserService) Reviews(ctx context.Context, userID int) ([]Review, error) {
	var reviews []Review
	path := fmt.Sprintf("/users/%d/reviews", userID)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
