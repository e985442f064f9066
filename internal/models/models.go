package models

import "time"

// User represents a registered account. Role is either "user" or "admin".
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	EmailVerified      bool       `json:"email_verified"`
	VerifyToken        string     `json:"-"`
	VerifyTokenExpires *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Book is the normalized record for a catalog volume, keyed by the
// provider-assigned volume id. Descriptive and provider-rating fields are
// overwritten wholesale on every successful resolution; the system rating
// fields are owned by the review subsystem and survive refreshes.
type Book struct {
	ID            string     `json:"id"`
	Title         *string    `json:"title"`
	Authors       *string    `json:"authors"`
	Publisher     *string    `json:"publisher"`
	Description   *string    `json:"description"`
	Thumbnail     *string    `json:"thumbnail"`
	PublishedDate *time.Time `json:"published_date"`
	ISBN          *string    `json:"isbn"`
	Categories    *string    `json:"categories"`
	Price         *float64   `json:"price"`
	BuyLink       *string    `json:"buy_link"`

	// Provider ratings, as reported by the catalog.
	AverageRating *float64 `json:"average_rating"`
	RatingsCount  *int     `json:"ratings_count"`

	// System ratings, computed from local reviews.
	SystemAverageRating *float64 `json:"system_average_rating"`
	SystemRatingsCount  int      `json:"system_ratings_count"`

	CachedAt time.Time `json:"cached_at"`
}

// BookSnapshot holds the last raw provider payload for a volume id.
// Exactly one row per id; overwritten on every successful fetch.
type BookSnapshot struct {
	BookID     string    `json:"book_id"`
	RawJSON    string    `json:"-"`
	CapturedAt time.Time `json:"captured_at"`
}

// Review is a user's rating and comment for a book.
type Review struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	UserID    string     `json:"user_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Denormalized for list views.
	Username  string `json:"username,omitempty"`
	BookTitle string `json:"book_title,omitempty"`
}

// Favorite marks a book as favorited by a user.
type Favorite struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ForumPost is a discussion thread.
type ForumPost struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UserID    string     `json:"user_id"`
	ViewCount int        `json:"view_count"`
	IsPinned  bool       `json:"is_pinned"`
	IsLocked  bool       `json:"is_locked"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Username     string `json:"username,omitempty"`
	CommentCount int    `json:"comment_count"`
}

// ForumComment is a reply within a thread.
type ForumComment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id"`
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Username string `json:"username,omitempty"`
}

// Page is a paginated result set.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalCount  int `json:"total_count"`
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
}

// EmptyPage returns a page with no items for the given pagination.
func EmptyPage[T any](pageNumber, pageSize int) Page[T] {
	return Page[T]{
		Items:       []T{},
		TotalCount:  0,
		PageSize:    pageSize,
		CurrentPage: pageNumber,
	}
}
