package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

type newsletterService struct {
	repo repository.SubscriberRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(repo repository.SubscriberRepository, log zerolog.Logger, opts ...Option) NewsletterService {
	o := buildOptions(opts)
	return &newsletterService{
		repo: repo,
		log:  log.With().Str("service", "newsletter").Logger(),
		now:  o.now,
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if !validation.IsValidEmail(email) {
		return false, validationError([]validation.ValidationError{{
			Field: "email", Message: "Please enter a valid email", Value: email,
		}})
	}

	created, err := s.repo.Create(ctx, &models.Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return false, internalError(fmt.Errorf("storing subscriber: %w", err))
	}
	if created {
		s.log.Info().Msg("New newsletter subscriber")
	}
	return created, nil
}

func (s *newsletterService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}
