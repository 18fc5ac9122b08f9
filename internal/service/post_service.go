package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// Option configures a service
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// postService is the concrete implementation of PostService
type postService struct {
	repo repository.PostRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(repo repository.PostRepository, log zerolog.Logger, opts ...Option) PostService {
	o := buildOptions(opts)
	return &postService{
		repo: repo,
		log:  log.With().Str("service", "post").Logger(),
		now:  o.now,
	}
}

func (s *postService) list(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(fmt.Errorf("listing posts: %w", err))
	}
	return posts, nil
}

// List returns all posts, newest first
func (s *postService) List(ctx context.Context) ([]*models.Post, error) {
	return s.list(ctx, models.PostFilter{})
}

// ListFeatured returns featured posts, newest first
func (s *postService) ListFeatured(ctx context.Context) ([]*models.Post, error) {
	return s.list(ctx, models.PostFilter{FeaturedOnly: true})
}

// ListLatest returns the n newest posts; n <= 0 selects the default count
func (s *postService) ListLatest(ctx context.Context, n int) ([]*models.Post, error) {
	if n <= 0 {
		n = models.DefaultLatestCount
	}
	return s.list(ctx, models.PostFilter{Limit: n})
}

// GetBySlug returns a single post
func (s *postService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, internalError(fmt.Errorf("loading post %q: %w", slug, err))
	}
	if post == nil {
		return nil, notFoundError(MsgBlogNotFound)
	}
	return post, nil
}

// Create validates and stores a new post
func (s *postService) Create(ctx context.Context, input *models.PostInput) (*models.Post, error) {
	validation.NormalizePostInput(input)
	if errs := validation.ValidatePostInput(input, true); len(errs) > 0 {
		return nil, validationError(errs)
	}

	exists, err := s.repo.SlugExists(ctx, input.Slug)
	if err != nil {
		return nil, internalError(fmt.Errorf("checking slug: %w", err))
	}
	if exists {
		return nil, conflictError(MsgSlugExists)
	}

	now := s.now().UTC()
	post := &models.Post{
		ID:          uuid.NewString(),
		Slug:        input.Slug,
		Title:       input.Title,
		Summary:     input.Summary,
		Content:     input.Content,
		Tags:        input.Tags,
		Featured:    input.Featured,
		ReadTime:    readTimeFor(input),
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, conflictError(MsgSlugExists)
		}
		return nil, internalError(fmt.Errorf("creating post: %w", err))
	}

	s.log.Info().Str("slug", post.Slug).Str("id", post.ID).Msg("Post created")
	return post, nil
}

// Update replaces the mutable fields of the post at slug
func (s *postService) Update(ctx context.Context, slug string, input *models.PostInput) (*models.Post, error) {
	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, internalError(fmt.Errorf("loading post %q: %w", slug, err))
	}
	if existing == nil {
		return nil, notFoundError(MsgBlogNotFound)
	}

	validation.NormalizePostInput(input)
	if errs := validation.ValidatePostInput(input, false); len(errs) > 0 {
		return nil, validationError(errs)
	}

	newSlug := input.Slug
	if newSlug == "" {
		newSlug = slug
	}
	if newSlug != slug {
		exists, err := s.repo.SlugExists(ctx, newSlug)
		if err != nil {
			return nil, internalError(fmt.Errorf("checking slug: %w", err))
		}
		if exists {
			return nil, conflictError(MsgSlugExists)
		}
	}

	updated := *existing
	updated.Slug = newSlug
	updated.Title = input.Title
	updated.Summary = input.Summary
	updated.Content = input.Content
	updated.Tags = input.Tags
	updated.Featured = input.Featured
	updated.ReadTime = readTimeFor(input)
	updated.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, slug, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugTaken):
			return nil, conflictError(MsgSlugExists)
		case errors.Is(err, sql.ErrNoRows):
			return nil, notFoundError(MsgBlogNotFound)
		}
		return nil, internalError(fmt.Errorf("updating post %q: %w", slug, err))
	}

	s.log.Info().Str("slug", slug).Str("new_slug", newSlug).Msg("Post updated")
	return &updated, nil
}

// Delete removes a post by id. Ids that are not UUIDs cannot exist.
func (s *postService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return notFoundError(MsgBlogNotFound)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internalError(fmt.Errorf("deleting post %s: %w", id, err))
	}
	if !deleted {
		return notFoundError(MsgBlogNotFound)
	}

	s.log.Info().Str("id", id).Msg("Post deleted")
	return nil
}

// Export streams every post to w as NDJSON or a JSON array
func (s *postService) Export(ctx context.Context, w io.Writer, format string) (int, error) {
	if format != FormatNDJSON && format != FormatJSON {
		return 0, validationError([]validation.ValidationError{{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format: %s", format),
			Value:   format,
		}})
	}

	s.log.Info().Str("format", format).Msg("Starting posts export")

	flusher, _ := w.(interface{ Flush() })
	count := 0

	if format == FormatJSON {
		if _, err := io.WriteString(w, "["); err != nil {
			return 0, internalError(err)
		}
	}

	err := s.repo.StreamAll(ctx, func(post *models.Post) error {
		data, err := json.Marshal(post)
		if err != nil {
			return err
		}
		if format == FormatJSON && count > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if format == FormatNDJSON {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return count, internalError(fmt.Errorf("exporting posts: %w", err))
	}

	if format == FormatJSON {
		if _, err := io.WriteString(w, "]"); err != nil {
			return count, internalError(err)
		}
	}

	s.log.Info().Int("count", count).Msg("Posts export completed")
	return count, nil
}

// Count returns the number of stored posts
func (s *postService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

// readTimeFor honours a supplied read time and otherwise derives it from
// the content.
func readTimeFor(input *models.PostInput) int {
	if input.ReadTime > 0 {
		return input.ReadTime
	}
	return content.ReadTime(input.Content)
}
