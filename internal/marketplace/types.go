package marketplace

import "time"

// User is the authenticated principal as the server last reported it. The
// server stays the source of truth; this is a snapshot.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile extends User with the aggregate counters shown on profile pages.
type Profile struct {
	User
	ListingCount int      `json:"listing_count"`
	SoldCount    int      `json:"sold_count"`
	AvgRating    *float64 `json:"avg_rating,omitempty"`
	ReviewCount  int      `json:"review_count"`
}

// Seller is the embedded seller summary on a listing.
type Seller struct {
	ID             int    `json:"id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Listing condition values accepted by the server.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// Listing status values.
const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusReserved  = "reserved"
)

// Listing is a marketplace listing.
type Listing struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Condition   string     `json:"condition"`
	Status      string     `json:"status"`
	Views       int        `json:"views"`
	ImageURL    string     `json:"image_url,omitempty"`
	ImageURL2   string     `json:"image_url_2,omitempty"`
	ImageURL3   string     `json:"image_url_3,omitempty"`
	SellerID    int        `json:"seller_id"`
	Seller      *Seller    `json:"seller,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	IsFavorited bool       `json:"is_favorited"`
}

// ListingPage is one page of a filtered listing browse.
type ListingPage struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

// ListingFilter selects and orders listings for browsing. Zero values mean
// "no constraint".
type ListingFilter struct {
	Search    string
	Category  string
	Condition string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string // newest, oldest, price_low, price_high
	Page      int
	Limit     int
}

// ListingInput is the payload for creating a listing. Images travel as
// multipart file parts alongside these fields.
type ListingInput struct {
	Title       string  `validate:"required,min=3,max=200"`
	Description string  `validate:"required,max=5000"`
	Category    string  `validate:"required"`
	Condition   string  `validate:"required,oneof=new like_new good fair poor"`
	Price       float64 `validate:"gte=0,lte=1000000"`
	ImagePaths  []string
}

// ListingUpdate carries partial listing changes. Nil fields are left as-is.
type ListingUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// Message is one message in a buyer/seller conversation about a listing.
type Message struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	SenderID   int       `json:"sender_id"`
	ReceiverID int       `json:"receiver_id"`
	ListingID  int       `json:"listing_id"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	Sender     *Seller   `json:"sender,omitempty"`
	Receiver   *Seller   `json:"receiver,omitempty"`
}

// MessageInput is the payload for sending a message.
type MessageInput struct {
	ReceiverID int    `json:"receiver_id" validate:"required"`
	ListingID  int    `json:"listing_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
}

// Conversation is one entry in the conversation list: the counterpart, the
// listing being discussed, and the latest message.
type Conversation struct {
	OtherUserID             int       `json:"other_user_id"`
	OtherUserName           string    `json:"other_user_name"`
	OtherUserProfilePicture string    `json:"other_user_profile_picture,omitempty"`
	ListingID               int       `json:"listing_id"`
	ListingTitle            string    `json:"listing_title"`
	ListingImage            string    `json:"listing_image,omitempty"`
	LastMessage             string    `json:"last_message"`
	LastMessageTime         time.Time `json:"last_message_time"`
	UnreadCount             int       `json:"unread_count"`
}

// Review is a rating left after a trade.
type Review struct {
	ID             int       `json:"id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	ReviewerID     int       `json:"reviewer_id"`
	ReviewedUserID int       `json:"reviewed_user_id"`
	ListingID      int       `json:"listing_id"`
	CreatedAt      time.Time `json:"created_at"`
	Reviewer       *Seller   `json:"reviewer,omitempty"`
	ReviewedUser   *Seller   `json:"reviewed_user,omitempty"`
}

// ReviewInput is the payload for submitting a review.
type ReviewInput struct {
	ReviewedUserID int    `json:"reviewed_user_id" validate:"required"`
	ListingID      int    `json:"listing_id" validate:"required"`
	Rating         int    `json:"rating" validate:"gte=1,lte=5"`
	Comment        string `json:"comment,omitempty" validate:"max=1000"`
}

// ProfileUpdate carries profile changes, including an optional password
// change that requires the current password.
type ProfileUpdate struct {
	Name            *string `json:"name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}
