package mocks

import (
	"context"
	"io"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

// MockPostService is a mock implementation of PostService. Every call
// returns Err when it is set; otherwise reads return Posts.
type MockPostService struct {
	Posts   []*models.Post
	Err     error
	Deleted []string
}

// Verify interface compliance
var _ service.PostService = (*MockPostService)(nil)

func NewMockPostService() *MockPostService {
	return &MockPostService{}
}

func (m *MockPostService) List(ctx context.Context) ([]*models.Post, error) {
	return m.Posts, m.Err
}

func (m *MockPostService) ListFeatured(ctx context.Context) ([]*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*models.Post
	for _, p := range m.Posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPostService) ListLatest(ctx context.Context, n int) ([]*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if n <= 0 {
		n = models.DefaultLatestCount
	}
	if n > len(m.Posts) {
		n = len(m.Posts)
	}
	return m.Posts[:n], nil
}

func (m *MockPostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, &service.Error{Kind: service.KindNotFound, Message: service.MsgBlogNotFound}
}

func (m *MockPostService) Create(ctx context.Context, input *models.PostInput) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	post := &models.Post{ID: "mock-id", Slug: input.Slug, Title: input.Title, Summary: input.Summary, Content: input.Content}
	m.Posts = append(m.Posts, post)
	return post, nil
}

func (m *MockPostService) Update(ctx context.Context, slug string, input *models.PostInput) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	post, err := m.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	post.Title, post.Summary, post.Content = input.Title, input.Summary, input.Content
	return post, nil
}

func (m *MockPostService) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockPostService) Export(ctx context.Context, w io.Writer, format string) (int, error) {
	return 0, m.Err
}

func (m *MockPostService) Count(ctx context.Context) (int, error) {
	return len(m.Posts), m.Err
}
