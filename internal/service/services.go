package service

import (
	"context"
	"io"

	"github.com/personal-blog-api/internal/auth"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/rs/zerolog"
)

// PostService defines the interface for post operations
type PostService interface {
	List(ctx context.Context) ([]*models.Post, error)
	ListFeatured(ctx context.Context) ([]*models.Post, error)
	ListLatest(ctx context.Context, n int) ([]*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	Create(ctx context.Context, input *models.PostInput) (*models.Post, error)
	Update(ctx context.Context, slug string, input *models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, w io.Writer, format string) (int, error)
	Count(ctx context.Context) (int, error)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string           `json:"token"`
	User  models.AdminView `json:"user"`
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Verify(token string) (string, error)
	Me(ctx context.Context, adminID string) (*models.AdminView, error)
	Setup(ctx context.Context) (*models.AdminView, error)
}

// NewsletterService defines the interface for newsletter signups
type NewsletterService interface {
	// Subscribe reports whether the email was newly added
	Subscribe(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Posts      PostService
	Auth       AuthService
	Newsletter NewsletterService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return &Services{
		Posts:      NewPostService(repos.Post, log),
		Auth:       NewAuthService(repos.Admin, tokens, cfg.Auth, log),
		Newsletter: NewNewsletterService(repos.Subscriber, log),
	}
}
