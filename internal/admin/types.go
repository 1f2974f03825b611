package admin

import "time"

// Roles carried by admin principals. Client-side role checks only drive which
// actions the UI offers; the server enforces authorization on every call.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is the administrative principal.
type User struct {
	ID             int        `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Role           string     `json:"role"`
	IsBanned       bool       `json:"is_banned"`
	BannedReason   string     `json:"banned_reason,omitempty"`
	BannedAt       *time.Time `json:"banned_at,omitempty"`
	BanExpiresAt   *time.Time `json:"ban_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	ListingCount   int        `json:"listing_count"`
	ReportsCount   int        `json:"reports_count"`
}

// CanManageRoles reports whether this admin may change user roles or delete
// accounts. UX convenience only.
func (u *User) CanManageRoles() bool {
	return u.Role == RoleSuperAdmin
}

// UserDetail extends User with the per-user aggregates of the detail view.
type UserDetail struct {
	User
	TotalListings    int      `json:"total_listings"`
	ActiveListings   int      `json:"active_listings"`
	SoldListings     int      `json:"sold_listings"`
	MessagesSent     int      `json:"messages_sent"`
	MessagesReceived int      `json:"messages_received"`
	ReviewsGiven     int      `json:"reviews_given"`
	ReviewsReceived  int      `json:"reviews_received"`
	AvgRating        *float64 `json:"avg_rating,omitempty"`
	ReportsFiled     int      `json:"reports_filed"`
	ReportsAgainst   int      `json:"reports_against"`
}

// UserPage is one page of the user management list.
type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}

// UserFilter selects users for the management list.
type UserFilter struct {
	Search string
	Role   string
	Status string
	SortBy string
	Page   int
	Limit  int
}

// BanRequest is the payload for banning a user. A nil duration means
// permanent.
type BanRequest struct {
	Reason         string `json:"reason"`
	DurationDays   *int   `json:"duration_days,omitempty"`
	DeleteListings bool   `json:"delete_listings"`
	NotifyUser     bool   `json:"notify_user"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers       int `json:"total_users"`
	TotalListings    int `json:"total_listings"`
	ActiveListings   int `json:"active_listings"`
	TotalMessages    int `json:"total_messages"`
	PendingReports   int `json:"pending_reports"`
	BannedUsers      int `json:"banned_users"`
	NewUsersToday    int `json:"new_users_today"`
	NewListingsToday int `json:"new_listings_today"`
	TotalTrades      int `json:"total_trades"`
}

// ActivityItem is one recent-activity entry on the dashboard.
type ActivityItem struct {
	ID          int       `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	AdminName   string    `json:"admin_name,omitempty"`
	TargetType  string    `json:"target_type,omitempty"`
	TargetID    *int      `json:"target_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Listing is a listing as the moderation screens see it.
type Listing struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Condition    string    `json:"condition"`
	Status       string    `json:"status"`
	Views        int       `json:"views"`
	ImageURL     string    `json:"image_url,omitempty"`
	SellerID     int       `json:"seller_id"`
	SellerName   string    `json:"seller_name,omitempty"`
	SellerEmail  string    `json:"seller_email"`
	IsFeatured   bool      `json:"is_featured"`
	HiddenReason string    `json:"hidden_reason,omitempty"`
	ReportsCount int       `json:"reports_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListingPage is one page of the listing moderation list.
type ListingPage struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

// ListingFilter selects listings for moderation.
type ListingFilter struct {
	Search   string
	Status   string
	Category string
	SortBy   string
	Page     int
	Limit    int
}

// Report statuses.
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report is a moderation report.
type Report struct {
	ID               int        `json:"id"`
	ReporterID       int        `json:"reporter_id"`
	ReporterName     string     `json:"reporter_name,omitempty"`
	ReporterEmail    string     `json:"reporter_email"`
	ReportType       string     `json:"report_type"`
	ReportedUserID   *int       `json:"reported_user_id,omitempty"`
	ReportedUserName string     `json:"reported_user_name,omitempty"`
	ListingID        *int       `json:"listing_id,omitempty"`
	ListingTitle     string     `json:"listing_title,omitempty"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	ReviewedBy       *int       `json:"reviewed_by,omitempty"`
	ReviewerName     string     `json:"reviewer_name,omitempty"`
	AdminNotes       string     `json:"admin_notes,omitempty"`
	ActionTaken      string     `json:"action_taken,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// ReportPage is one page of the report queue.
type ReportPage struct {
	Reports []Report `json:"reports"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
}

// ReportFilter selects reports for the queue.
type ReportFilter struct {
	Status     string
	ReportType string
	SortBy     string
	Page       int
	Limit      int
}

// ReviewRequest closes out a report.
type ReviewRequest struct {
	Status      string `json:"status"`
	AdminNotes  string `json:"admin_notes,omitempty"`
	ActionTaken string `json:"action_taken,omitempty"`
}

// CountByLabel is a generic label/count pair used across analytics series.
type CountByLabel struct {
	Date     string  `json:"date,omitempty"`
	Category string  `json:"category,omitempty"`
	Count    int     `json:"count,omitempty"`
	AvgPrice float64 `json:"avg_price,omitempty"`
}

// UserAnalytics is the user growth view.
type UserAnalytics struct {
	TotalUsers       int            `json:"total_users"`
	NewUsersToday    int            `json:"new_users_today"`
	NewUsersWeek     int            `json:"new_users_week"`
	NewUsersMonth    int            `json:"new_users_month"`
	ActiveUsersToday int            `json:"active_users_today"`
	BannedUsers      int            `json:"banned_users"`
	UsersByDay       []CountByLabel `json:"users_by_day"`
}

// ListingAnalytics is the listing activity view.
type ListingAnalytics struct {
	TotalListings      int            `json:"total_listings"`
	ActiveListings     int            `json:"active_listings"`
	SoldListings       int            `json:"sold_listings"`
	HiddenListings     int            `json:"hidden_listings"`
	NewListingsToday   int            `json:"new_listings_today"`
	NewListingsWeek    int            `json:"new_listings_week"`
	ListingsByCategory []CountByLabel `json:"listings_by_category"`
	ListingsByDay      []CountByLabel `json:"listings_by_day"`
	AvgPriceByCategory []CountByLabel `json:"avg_price_by_category"`
}

// Category is a marketplace category managed by admins.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ActivityLogEntry is one audit-trail row.
type ActivityLogEntry struct {
	ID         int       `json:"id"`
	AdminID    int       `json:"admin_id"`
	AdminName  string    `json:"admin_name,omitempty"`
	AdminEmail string    `json:"admin_email"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   *int      `json:"target_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityLogPage is one page of the audit trail.
type ActivityLogPage struct {
	Logs  []ActivityLogEntry `json:"logs"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Pages int                `json:"pages"`
}

// ActivityLogFilter selects audit-trail rows.
type ActivityLogFilter struct {
	AdminID int
	Action  string
	Page    int
	Limit   int
}
