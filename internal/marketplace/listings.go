package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tradehub-dev/tradehub/internal/api"
)

// ListingService calls the listing endpoints with the user session.
type ListingService struct {
	client *api.Client
}

// NewListingService creates a listing service over the shared client.
func NewListingService(client *api.Client) *ListingService {
	return &ListingService{client: client}
}

// Browse returns one page of listings matching the filter.
func (s *ListingService) Browse(ctx context.Context, filter ListingFilter) (*ListingPage, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Condition != "" {
		query.Set("condition", filter.Condition)
	}
	if filter.MinPrice != nil {
		query.Set("min_price", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		query.Set("max_price", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}
	if filter.SortBy != "" {
		query.Set("sort_by", filter.SortBy)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/listings"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page ListingPage
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one listing by ID.
func (s *ListingService) Get(ctx context.Context, id int) (*Listing, error) {
	var listing Listing
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/listings/%d", id), nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create publishes a new listing with up to three images, sent as a single
// multipart form.
func (s *ListingService) Create(ctx context.Context, input ListingInput) (*Listing, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	fields := map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"price":       strconv.FormatFloat(input.Price, 'f', -1, 64),
		"category":    input.Category,
		"condition":   input.Condition,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	// The server accepts image1..image3.
	for i, path := range input.ImagePaths {
		if i >= 3 {
			break
		}
		if err := attachImage(form, fmt.Sprintf("image%d", i+1), path); err != nil {
			return nil, err
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var listing Listing
	err := s.client.DoForm(ctx, http.MethodPost, "/listings", form.FormDataContentType(), body, &listing)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update applies partial changes to a listing the user owns.
func (s *ListingService) Update(ctx context.Context, id int, update ListingUpdate) (*Listing, error) {
	var listing Listing
	if err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/listings/%d", id), update, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// MarkSold flips a listing's status to sold.
func (s *ListingService) MarkSold(ctx context.Context, id int) (*Listing, error) {
	status := StatusSold
	return s.Update(ctx, id, ListingUpdate{Status: &status})
}

// Delete removes a listing the user owns.
func (s *ListingService) Delete(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/listings/%d", id), nil, nil)
}

// Mine returns the authenticated user's own listings.
func (s *ListingService) Mine(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	if err := s.client.Do(ctx, http.MethodGet, "/listings/user/me", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Favorite marks a listing as a favorite.
func (s *ListingService) Favorite(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodPost, fmt.Sprintf("/listings/%d/favorite", id), nil, nil)
}

// Unfavorite removes a listing from favorites.
func (s *ListingService) Unfavorite(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/listings/%d/favorite", id), nil, nil)
}

// Favorites returns the user's favorite listings.
func (s *ListingService) Favorites(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	if err := s.client.Do(ctx, http.MethodGet, "/listings/favorites/me", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func attachImage(form *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	part, err := form.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return nil
}
