package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.PostRepository       = (*MockPostRepository)(nil)
	_ repository.AdminRepository      = (*MockAdminRepository)(nil)
	_ repository.SubscriberRepository = (*MockSubscriberRepository)(nil)
)

// MockPostRepository is an in-memory implementation of PostRepository
type MockPostRepository struct {
	Posts            map[string]*models.Post
	SlugToPost       map[string]*models.Post
	InsertError      error
	QueryError       error
	InsertedCount    int
	BatchInsertFunc  func(ctx context.Context, posts []*models.Post) (int, error)
	BatchInsertCalls int
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts:      make(map[string]*models.Post),
		SlugToPost: make(map[string]*models.Post),
	}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, taken := m.SlugToPost[post.Slug]; taken {
		return repository.ErrSlugTaken
	}
	stored := clonePost(post)
	m.Posts[post.ID] = stored
	m.SlugToPost[post.Slug] = stored
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, currentSlug string, post *models.Post) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	existing, ok := m.SlugToPost[currentSlug]
	if !ok {
		return sql.ErrNoRows
	}
	if other, taken := m.SlugToPost[post.Slug]; taken && other.ID != existing.ID {
		return repository.ErrSlugTaken
	}

	delete(m.SlugToPost, currentSlug)
	updated := clonePost(post)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.PublishedAt = existing.PublishedAt
	m.Posts[existing.ID] = updated
	m.SlugToPost[updated.Slug] = updated
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.QueryError != nil {
		return false, m.QueryError
	}
	post, ok := m.Posts[id]
	if !ok {
		return false, nil
	}
	delete(m.Posts, id)
	delete(m.SlugToPost, post.Slug)
	return true, nil
}

func (m *MockPostRepository) BatchInsert(ctx context.Context, posts []*models.Post) (int, error) {
	m.BatchInsertCalls++
	if m.BatchInsertFunc != nil {
		return m.BatchInsertFunc(ctx, posts)
	}
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, p := range posts {
		if _, taken := m.SlugToPost[p.Slug]; taken {
			return 0, repository.ErrSlugTaken
		}
	}
	for _, p := range posts {
		stored := clonePost(p)
		m.Posts[p.ID] = stored
		m.SlugToPost[p.Slug] = stored
	}
	m.InsertedCount += len(posts)
	return len(posts), nil
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	if p, ok := m.SlugToPost[slug]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	if p, ok := m.Posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (m *MockPostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.QueryError != nil {
		return false, m.QueryError
	}
	_, exists := m.SlugToPost[slug]
	return exists, nil
}

func (m *MockPostRepository) sorted() []*models.Post {
	posts := make([]*models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		posts = append(posts, clonePost(p))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
	return posts
}

func (m *MockPostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	out := make([]*models.Post, 0)
	for _, p := range m.sorted() {
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	return len(m.Posts), m.QueryError
}

func (m *MockPostRepository) DeleteAll(ctx context.Context) (int, error) {
	n := len(m.Posts)
	m.Posts = make(map[string]*models.Post)
	m.SlugToPost = make(map[string]*models.Post)
	return n, nil
}

func (m *MockPostRepository) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	if m.QueryError != nil {
		return m.QueryError
	}
	for _, post := range m.sorted() {
		if err := callback(post); err != nil {
			return err
		}
	}
	return nil
}

// MockAdminRepository is an in-memory implementation of AdminRepository
type MockAdminRepository struct {
	Admins       map[string]*models.Admin
	EmailToAdmin map[string]*models.Admin
	InsertError  error
	QueryError   error
}

func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{
		Admins:       make(map[string]*models.Admin),
		EmailToAdmin: make(map[string]*models.Admin),
	}
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, taken := m.EmailToAdmin[admin.Email]; taken {
		return repository.ErrEmailTaken
	}
	m.Admins[admin.ID] = admin
	m.EmailToAdmin[admin.Email] = admin
	return nil
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return m.EmailToAdmin[email], m.QueryError
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return m.Admins[id], m.QueryError
}

func (m *MockAdminRepository) Count(ctx context.Context) (int, error) {
	return len(m.Admins), m.QueryError
}

func (m *MockAdminRepository) DeleteAll(ctx context.Context) (int, error) {
	n := len(m.Admins)
	m.Admins = make(map[string]*models.Admin)
	m.EmailToAdmin = make(map[string]*models.Admin)
	return n, nil
}

// MockSubscriberRepository is an in-memory implementation of SubscriberRepository
type MockSubscriberRepository struct {
	Subscribers map[string]*models.Subscriber
	InsertError error
}

func NewMockSubscriberRepository() *MockSubscriberRepository {
	return &MockSubscriberRepository{
		Subscribers: make(map[string]*models.Subscriber),
	}
}

func (m *MockSubscriberRepository) Create(ctx context.Context, sub *models.Subscriber) (bool, error) {
	if m.InsertError != nil {
		return false, m.InsertError
	}
	if _, exists := m.Subscribers[sub.Email]; exists {
		return false, nil
	}
	m.Subscribers[sub.Email] = sub
	return true, nil
}

func (m *MockSubscriberRepository) Count(ctx context.Context) (int, error) {
	return len(m.Subscribers), nil
}

// NewRepositories bundles fresh mocks into a Repositories value
func NewRepositories() (*repository.Repositories, *MockPostRepository, *MockAdminRepository, *MockSubscriberRepository) {
	posts := NewMockPostRepository()
	admins := NewMockAdminRepository()
	subs := NewMockSubscriberRepository()
	return &repository.Repositories{Post: posts, Admin: admins, Subscriber: subs}, posts, admins, subs
}
