package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/personal-blog-api/internal/auth"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/render"
	"github.com/personal-blog-api/internal/seed"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

func defaultOptions() seed.Options {
	return seed.Options{
		AdminEmail:    "owner@example.com",
		AdminPassword: "pw-from-config",
		BcryptCost:    4,
		Now:           func() time.Time { return fixedNow },
	}
}

func TestSampleFixture(t *testing.T) {
	f, err := seed.Sample()
	require.NoError(t, err)

	posts, err := f.Build(fixedNow)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	for i, p := range posts {
		assert.NotEmpty(t, p.ID)
		assert.True(t, content.HasText(p.Content), "post %s has no text", p.Slug)
		if f.Posts[i].ReadTime == 0 {
			assert.Equal(t, content.ReadTime(p.Content), p.ReadTime, "post %s", p.Slug)
		} else {
			assert.Equal(t, f.Posts[i].ReadTime, p.ReadTime)
		}
		_, err := render.Render(p.Content)
		assert.NoError(t, err)
	}

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), posts[0].PublishedAt)
}

func TestApply(t *testing.T) {
	repos, posts, admins, _ := mocks.NewRepositories()
	f, err := seed.Sample()
	require.NoError(t, err)

	res, err := seed.Apply(context.Background(), repos, f, defaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Posts)
	assert.True(t, res.AdminCreated)
	assert.Equal(t, "owner@example.com", res.AdminEmail)
	assert.Len(t, posts.Posts, 5)
	assert.Equal(t, 1, posts.BatchInsertCalls)

	admin := admins.EmailToAdmin["owner@example.com"]
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "pw-from-config"))

	featured, err := repos.Post.List(context.Background(), models.PostFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, featured, 3)
	assert.Equal(t, "getting-started-with-goroutines", featured[0].Slug)
}

func TestApply_SecondRunNeedsReset(t *testing.T) {
	repos, posts, admins, _ := mocks.NewRepositories()
	f, err := seed.Sample()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = seed.Apply(ctx, repos, f, defaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	_, err = seed.Apply(ctx, repos, f, defaultOptions(), zerolog.Nop())
	assert.Error(t, err, "duplicate slugs without reset")

	opts := defaultOptions()
	opts.Reset = true
	res, err := seed.Apply(ctx, repos, f, opts, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Cleared)
	assert.Equal(t, 5, res.Posts)
	assert.Len(t, posts.Posts, 5)
	assert.Len(t, admins.Admins, 1)
}

func TestApply_KeepsExistingAdmin(t *testing.T) {
	repos, _, admins, _ := mocks.NewRepositories()
	f := &seed.Fixture{Admin: seed.AdminFixture{Email: "fixture@example.com"}}
	ctx := context.Background()

	res, err := seed.Apply(ctx, repos, f, defaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "fixture@example.com", res.AdminEmail)

	res, err = seed.Apply(ctx, repos, f, defaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, res.AdminCreated)
	assert.Len(t, admins.Admins, 1)
}

func TestApply_InvalidFixtureWritesNothing(t *testing.T) {
	repos, posts, admins, _ := mocks.NewRepositories()
	f, err := seed.Parse([]byte(`
posts:
  - title: First
    slug: same-slug
    summary: ok
    content: <p>text</p>
  - title: Second
    slug: same-slug
    summary: ok
    content: <p>text</p>
  - title: ""
    slug: Bad Slug
    summary: ok
    content: <p></p>
    publishedAt: yesterday
`))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), repos, f, defaultOptions(), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate slug")
	assert.Contains(t, err.Error(), "Title is required")
	assert.Contains(t, err.Error(), "publishedAt")
	assert.Empty(t, posts.Posts)
	assert.Empty(t, admins.Admins)
}

func TestParseErrors(t *testing.T) {
	_, err := seed.Parse([]byte("   "))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("posts: [unclosed"))
	assert.Error(t, err)

	_, err = seed.LoadFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
