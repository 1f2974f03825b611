package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/session"
)

// Service is the back-office client. All calls except Login go through the
// admin gateway and carry the admin token, never the user token.
type Service struct {
	gateway *api.AdminGateway
	store   *session.Store[User]
	log     zerolog.Logger
}

func NewService(gateway *api.AdminGateway, store *session.Store[User], log zerolog.Logger) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		log:     log.With().Str("component", "admin").Logger(),
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Login exchanges admin credentials for a token and persists token and
// principal to the admin session. The user session is untouched.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := s.gateway.Request(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		s.log.Warn().Str("detail", api.Detail(err, "admin login failed")).Msg("admin login rejected")
		return nil, err
	}
	if err := s.store.SetToken(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persisting admin token: %w", err)
	}
	if err := s.store.SetPrincipal(&resp.User); err != nil {
		return nil, fmt.Errorf("persisting admin principal: %w", err)
	}
	return &resp.User, nil
}

// Logout drops the stored admin session. Local only.
func (s *Service) Logout() {
	s.store.Clear()
}

// Principal returns the cached admin principal, if any.
func (s *Service) Principal() (*User, bool) {
	return s.store.Principal()
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Role  string `json:"role"`
}

// Verify asks the server whether the stored admin token is still good and
// returns the role it carries. A rejected token clears the admin session.
func (s *Service) Verify(ctx context.Context) (string, error) {
	if _, ok := s.store.Token(); !ok {
		return "", &api.HTTPError{Status: http.StatusUnauthorized, Detail: "Not authenticated"}
	}
	var resp verifyResponse
	if err := s.gateway.Request(ctx, http.MethodGet, "/verify", nil, &resp); err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusForbidden) {
			s.store.Clear()
		}
		return "", err
	}
	if !resp.Valid {
		s.store.Clear()
		return "", &api.HTTPError{Status: http.StatusUnauthorized, Detail: "Session expired"}
	}
	return resp.Role, nil
}

// DashboardStats fetches the dashboard summary counters.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := s.gateway.Request(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentActivity fetches the latest dashboard activity entries.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]ActivityItem, error) {
	endpoint := "/dashboard/activity"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	var items []ActivityItem
	if err := s.gateway.Request(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Users fetches one page of the user management list.
func (s *Service) Users(ctx context.Context, filter UserFilter) (*UserPage, error) {
	q := url.Values{}
	setIf(q, "search", filter.Search)
	setIf(q, "role", filter.Role)
	setIf(q, "status", filter.Status)
	setIf(q, "sort_by", filter.SortBy)
	setPage(q, filter.Page, filter.Limit)
	var page UserPage
	if err := s.gateway.Request(ctx, http.MethodGet, withQuery("/users", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UserDetail fetches the detail view of one user.
func (s *Service) UserDetail(ctx context.Context, id int) (*UserDetail, error) {
	var detail UserDetail
	if err := s.gateway.Request(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// BanUser bans a user, optionally for a limited duration.
func (s *Service) BanUser(ctx context.Context, id int, req BanRequest) error {
	return s.gateway.Request(ctx, http.MethodPost, fmt.Sprintf("/users/%d/ban", id), req, nil)
}

// UnbanUser lifts a ban.
func (s *Service) UnbanUser(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodPost, fmt.Sprintf("/users/%d/unban", id), nil, nil)
}

// DeleteUser removes a user account. Super admin only on the server.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

// ChangeRole sets a user's role. Super admin only on the server.
func (s *Service) ChangeRole(ctx context.Context, id int, role string) error {
	body := map[string]string{"role": role}
	return s.gateway.Request(ctx, http.MethodPut, fmt.Sprintf("/users/%d/role", id), body, nil)
}

// Listings fetches one page of the moderation list.
func (s *Service) Listings(ctx context.Context, filter ListingFilter) (*ListingPage, error) {
	q := url.Values{}
	setIf(q, "search", filter.Search)
	setIf(q, "status", filter.Status)
	setIf(q, "category", filter.Category)
	setIf(q, "sort_by", filter.SortBy)
	setPage(q, filter.Page, filter.Limit)
	var page ListingPage
	if err := s.gateway.Request(ctx, http.MethodGet, withQuery("/listings", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HideListing hides a listing from the marketplace with a reason shown to the
// seller.
func (s *Service) HideListing(ctx context.Context, id int, reason string) error {
	body := map[string]string{"reason": reason}
	return s.gateway.Request(ctx, http.MethodPost, fmt.Sprintf("/listings/%d/hide", id), body, nil)
}

// ShowListing restores a hidden listing.
func (s *Service) ShowListing(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodPost, fmt.Sprintf("/listings/%d/show", id), nil, nil)
}

// DeleteListing removes a listing outright.
func (s *Service) DeleteListing(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("/listings/%d", id), nil, nil)
}

// ToggleFeature flips a listing's featured flag.
func (s *Service) ToggleFeature(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodPost, fmt.Sprintf("/listings/%d/feature", id), nil, nil)
}

// Reports fetches one page of the report queue.
func (s *Service) Reports(ctx context.Context, filter ReportFilter) (*ReportPage, error) {
	q := url.Values{}
	setIf(q, "status", filter.Status)
	setIf(q, "report_type", filter.ReportType)
	setIf(q, "sort_by", filter.SortBy)
	setPage(q, filter.Page, filter.Limit)
	var page ReportPage
	if err := s.gateway.Request(ctx, http.MethodGet, withQuery("/reports", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReportDetail fetches one report.
func (s *Service) ReportDetail(ctx context.Context, id int) (*Report, error) {
	var report Report
	if err := s.gateway.Request(ctx, http.MethodGet, fmt.Sprintf("/reports/%d", id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ReviewReport records the outcome of a report review.
func (s *Service) ReviewReport(ctx context.Context, id int, req ReviewRequest) error {
	return s.gateway.Request(ctx, http.MethodPut, fmt.Sprintf("/reports/%d/review", id), req, nil)
}

// UserAnalytics fetches the user growth view.
func (s *Service) UserAnalytics(ctx context.Context) (*UserAnalytics, error) {
	var out UserAnalytics
	if err := s.gateway.Request(ctx, http.MethodGet, "/analytics/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListingAnalytics fetches the listing activity view.
func (s *Service) ListingAnalytics(ctx context.Context) (*ListingAnalytics, error) {
	var out ListingAnalytics
	if err := s.gateway.Request(ctx, http.MethodGet, "/analytics/listings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists the managed categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := s.gateway.Request(ctx, http.MethodGet, "/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, cat Category) (*Category, error) {
	var out Category
	if err := s.gateway.Request(ctx, http.MethodPost, "/categories", cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}

// ActivityLog fetches one page of the audit trail.
func (s *Service) ActivityLog(ctx context.Context, filter ActivityLogFilter) (*ActivityLogPage, error) {
	q := url.Values{}
	if filter.AdminID > 0 {
		q.Set("admin_id", strconv.Itoa(filter.AdminID))
	}
	setIf(q, "action", filter.Action)
	setPage(q, filter.Page, filter.Limit)
	var page ActivityLogPage
	if err := s.gateway.Request(ctx, http.MethodGet, withQuery("/activity-log", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPage(q url.Values, page, limit int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}
