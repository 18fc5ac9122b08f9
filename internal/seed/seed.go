// Package seed loads fixture posts and the admin credential into the store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/validation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleFixture []byte

// dateLayouts are the accepted forms of publishedAt in a fixture
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Fixture is the YAML document read by the seeder
type Fixture struct {
	Admin AdminFixture  `yaml:"admin"`
	Posts []PostFixture `yaml:"posts"`
}

// AdminFixture carries the admin credentials; empty values fall back to
// configuration.
type AdminFixture struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// PostFixture is one post in a fixture. ReadTime 0 means computed.
type PostFixture struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Summary     string   `yaml:"summary"`
	Content     string   `yaml:"content"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
	ReadTime    int      `yaml:"readTime"`
	PublishedAt string   `yaml:"publishedAt"`
}

// Options controls Apply
type Options struct {
	// Reset deletes existing posts and admins first
	Reset bool
	// Admin defaults used when the fixture leaves credentials empty
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
	Now           func() time.Time
}

// Result summarizes a seeding run
type Result struct {
	AdminEmail   string
	AdminCreated bool
	Posts        int
	Cleared      int
}

// Sample returns the embedded sample fixture
func Sample() (*Fixture, error) {
	return Parse(sampleFixture)
}

// Parse decodes a fixture from YAML bytes
func Parse(data []byte) (*Fixture, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed: fixture is empty")
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode fixture: %w", err)
	}
	return &f, nil
}

// LoadFile reads a fixture from disk
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return f, nil
}

// Build validates the fixture posts and converts them to store records.
// Every post is checked; the returned error lists all failures.
func (f *Fixture) Build(now time.Time) ([]*models.Post, error) {
	v := validation.NewValidator()
	var problems []string
	posts := make([]*models.Post, 0, len(f.Posts))

	for i, pf := range f.Posts {
		input := &models.PostInput{
			Title:    pf.Title,
			Slug:     pf.Slug,
			Summary:  pf.Summary,
			Content:  pf.Content,
			Tags:     pf.Tags,
			Featured: pf.Featured,
			ReadTime: pf.ReadTime,
		}
		validation.NormalizePostInput(input)

		errs := v.ValidatePost(input)
		published, err := parseDate(pf.PublishedAt, now)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: "publishedAt", Message: err.Error(), Value: pf.PublishedAt})
		}
		if len(errs) > 0 {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("post %d (%s): %s: %s", i+1, pf.Slug, e.Field, e.Message))
			}
			continue
		}
		v.AddSlug(input.Slug)

		readTime := input.ReadTime
		if readTime <= 0 {
			readTime = content.ReadTime(input.Content)
		}
		posts = append(posts, &models.Post{
			ID:          uuid.NewString(),
			Slug:        input.Slug,
			Title:       input.Title,
			Summary:     input.Summary,
			Content:     input.Content,
			Tags:        input.Tags,
			Featured:    input.Featured,
			ReadTime:    readTime,
			PublishedAt: published,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("seed: invalid fixture:\n  %s", strings.Join(problems, "\n  "))
	}
	return posts, nil
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Apply writes the fixture to the repositories. The fixture is validated
// before anything is deleted or written. The admin is only created when
// none exists.
func Apply(ctx context.Context, repos *repository.Repositories, f *Fixture, opts Options, log zerolog.Logger) (*Result, error) {
	log = log.With().Str("component", "seed").Logger()
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now().UTC()

	posts, err := f.Build(ts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if opts.Reset {
		cleared, err := repos.Post.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed: clearing posts: %w", err)
		}
		if _, err := repos.Admin.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("seed: clearing admins: %w", err)
		}
		res.Cleared = cleared
		log.Info().Int("posts", cleared).Msg("Cleared existing data")
	}

	admins, err := repos.Admin.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed: counting admins: %w", err)
	}

	email, password := f.Admin.Email, f.Admin.Password
	if email == "" {
		email = opts.AdminEmail
	}
	if password == "" {
		password = opts.AdminPassword
	}
	if admins == 0 {
		admin, err := service.NewAdmin(email, password, opts.BcryptCost, ts)
		if err != nil {
			return nil, fmt.Errorf("seed: building admin: %w", err)
		}
		if err := repos.Admin.Create(ctx, admin); err != nil {
			return nil, fmt.Errorf("seed: creating admin: %w", err)
		}
		res.AdminEmail, res.AdminCreated = admin.Email, true
		log.Info().Str("email", admin.Email).Msg("Admin created")
	}

	if len(posts) > 0 {
		n, err := repos.Post.BatchInsert(ctx, posts)
		if err != nil {
			return nil, fmt.Errorf("seed: inserting posts: %w", err)
		}
		res.Posts = n
	}

	log.Info().Int("posts", res.Posts).Msg("Seed completed")
	return res, nil
}
