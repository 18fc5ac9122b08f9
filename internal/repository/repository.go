package repository

import (
	"context"
	"errors"

	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

// ErrSlugTaken is returned when a write collides with an existing slug
var ErrSlugTaken = errors.New("slug already exists")

// ErrEmailTaken is returned when an admin write collides with an existing email
var ErrEmailTaken = errors.New("email already exists")

// PostRepository defines the interface for post data operations.
// Lookups return (nil, nil) when nothing matches.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, currentSlug string, post *models.Post) error
	Delete(ctx context.Context, id string) (bool, error)
	BatchInsert(ctx context.Context, posts []*models.Post) (int, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Post) error) error
}

// AdminRepository defines the interface for admin credential operations
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

// SubscriberRepository defines the interface for newsletter signups
type SubscriberRepository interface {
	// Create stores the subscriber and reports false if the email was
	// already subscribed.
	Create(ctx context.Context, subscriber *models.Subscriber) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post       PostRepository
	Admin      AdminRepository
	Subscriber SubscriberRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Post:       NewPostRepo(db),
		Admin:      NewAdminRepo(db),
		Subscriber: NewSubscriberRepo(db),
	}
}
