package models

import (
	"time"
)

// Post represents a blog post
type Post struct {
	ID          string    `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Title       string    `json:"title" db:"title"`
	Summary     string    `json:"summary" db:"summary"`
	Content     string    `json:"content" db:"content"`
	Tags        []string  `json:"tags" db:"-"` // Stored as JSONB in DB
	Featured    bool      `json:"featured" db:"featured"`
	ReadTime    int       `json:"readTime" db:"read_time"`
	PublishedAt time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Field bounds for posts
const (
	MaxTitleLength   = 200
	MaxSummaryLength = 500
)

// DefaultLatestCount is the number of posts returned by the latest listing
// when no positive count is given.
const DefaultLatestCount = 4

// PostInput carries the client-supplied fields of a create or update.
// ReadTime <= 0 means "not supplied".
type PostInput struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`
	ReadTime int      `json:"readTime"`
}

// PostFilter narrows a post listing. Limit <= 0 means no limit.
type PostFilter struct {
	FeaturedOnly bool
	Limit        int
}
