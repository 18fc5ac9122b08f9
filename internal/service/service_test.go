package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/personal-blog-api/internal/auth"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// tickingClock returns a clock that advances one minute per call
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func validInput(slug string) *models.PostInput {
	return &models.PostInput{
		Title:   "Hello " + slug,
		Slug:    slug,
		Summary: "A short summary",
		Content: "<p>Some <strong>body</strong> text</p>",
		Tags:    []string{"go", " ", "go"},
	}
}

func newPostService() (service.PostService, *mocks.MockPostRepository) {
	repo := mocks.NewMockPostRepository()
	return service.NewPostService(repo, zerolog.Nop(), service.WithClock(tickingClock())), repo
}

func TestPostService_CreateAndConflict(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	post, err := svc.Create(ctx, validInput("first-post"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if post.Slug != "first-post" {
		t.Errorf("Expected slug first-post, got %s", post.Slug)
	}
	if post.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if len(post.Tags) != 2 {
		t.Errorf("Expected empty tag dropped and duplicate kept, got %v", post.Tags)
	}
	if !post.PublishedAt.Equal(post.CreatedAt) {
		t.Error("publishedAt should default to creation time")
	}

	_, err = svc.Create(ctx, validInput("first-post"))
	if !service.IsKind(err, service.KindConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Message != service.MsgSlugExists {
		t.Errorf("Expected %q, got %q", service.MsgSlugExists, svcErr.Message)
	}
}

func TestPostService_CreateValidation(t *testing.T) {
	svc, repo := newPostService()

	_, err := svc.Create(context.Background(), &models.PostInput{Content: "<p></p>"})
	if !service.IsKind(err, service.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	var svcErr *service.Error
	errors.As(err, &svcErr)
	fields := map[string]bool{}
	for _, f := range svcErr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "slug", "summary", "content"} {
		if !fields[want] {
			t.Errorf("Expected a %s error, got %+v", want, svcErr.Fields)
		}
	}
	if len(repo.Posts) != 0 {
		t.Error("Nothing should be stored")
	}
}

func TestPostService_ReadTimeMatchesContentPackage(t *testing.T) {
	svc, _ := newPostService()
	body := "<p>" + strings.Repeat("word ", 401) + "</p>"

	in := validInput("long-read")
	in.Content = body
	post, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if post.ReadTime != 3 {
		t.Errorf("Expected read time 3, got %d", post.ReadTime)
	}
	if post.ReadTime != content.ReadTime(body) {
		t.Errorf("Service and content package disagree: %d vs %d", post.ReadTime, content.ReadTime(body))
	}

	in = validInput("explicit")
	in.ReadTime = 12
	post, _ = svc.Create(context.Background(), in)
	if post.ReadTime != 12 {
		t.Errorf("Supplied read time should be kept, got %d", post.ReadTime)
	}
}

func TestPostService_LatestAndFeatured(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		in := validInput(fmt.Sprintf("post-%d", i))
		in.Featured = i%3 == 0
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, _ := svc.List(ctx)
	if len(all) != 6 || all[0].Slug != "post-5" {
		t.Fatalf("Expected newest first, got %d posts starting %s", len(all), all[0].Slug)
	}

	tests := []struct {
		n    int
		want int
	}{
		{3, 3},
		{10, 6},
		{0, models.DefaultLatestCount},
		{-1, models.DefaultLatestCount},
	}
	for _, tt := range tests {
		latest, err := svc.ListLatest(ctx, tt.n)
		if err != nil {
			t.Fatalf("ListLatest failed: %v", err)
		}
		if len(latest) != tt.want {
			t.Errorf("ListLatest(%d): expected %d, got %d", tt.n, tt.want, len(latest))
		}
		for i := range latest {
			if latest[i].Slug != all[i].Slug {
				t.Errorf("ListLatest(%d)[%d] = %s, want %s", tt.n, i, latest[i].Slug, all[i].Slug)
			}
		}
	}

	featured, _ := svc.ListFeatured(ctx)
	var expected []string
	for _, p := range all {
		if p.Featured {
			expected = append(expected, p.Slug)
		}
	}
	if len(featured) != len(expected) {
		t.Fatalf("Expected %d featured, got %d", len(expected), len(featured))
	}
	for i, p := range featured {
		if p.Slug != expected[i] {
			t.Errorf("Featured[%d] = %s, want %s", i, p.Slug, expected[i])
		}
	}
}

func TestPostService_UpdateConflictLeavesOriginal(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	svc.Create(ctx, validInput("alpha"))
	svc.Create(ctx, validInput("beta"))
	before, _ := svc.GetBySlug(ctx, "alpha")

	in := validInput("beta")
	in.Title = "Changed"
	_, err := svc.Update(ctx, "alpha", in)
	if !service.IsKind(err, service.KindConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}

	after, err := svc.GetBySlug(ctx, "alpha")
	if err != nil {
		t.Fatalf("Original should still exist: %v", err)
	}
	if after.Title != before.Title || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("Original post was modified")
	}
}

func TestPostService_Update(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput("draft"))

	in := validInput("")
	in.Title = "Renamed"
	updated, err := svc.Update(ctx, "draft", in)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Slug != "draft" {
		t.Errorf("Empty slug should keep the current one, got %s", updated.Slug)
	}
	if updated.ID != created.ID || !updated.PublishedAt.Equal(created.PublishedAt) {
		t.Error("Identity and publishedAt should be preserved")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("UpdatedAt should advance")
	}

	in = validInput("final")
	moved, err := svc.Update(ctx, "draft", in)
	if err != nil {
		t.Fatalf("Slug change failed: %v", err)
	}
	if moved.Slug != "final" {
		t.Errorf("Expected slug final, got %s", moved.Slug)
	}
	if _, err := svc.GetBySlug(ctx, "draft"); !service.IsKind(err, service.KindNotFound) {
		t.Errorf("Old slug should be gone, got %v", err)
	}

	_, err = svc.Update(ctx, "missing", validInput("x"))
	if !service.IsKind(err, service.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestPostService_Delete(t *testing.T) {
	svc, repo := newPostService()
	ctx := context.Background()

	post, _ := svc.Create(ctx, validInput("doomed"))

	if err := svc.Delete(ctx, "not-a-uuid"); !service.IsKind(err, service.KindNotFound) {
		t.Errorf("Malformed id should be not found, got %v", err)
	}
	if err := svc.Delete(ctx, "550e8400-e29b-41d4-a716-446655440000"); !service.IsKind(err, service.KindNotFound) {
		t.Errorf("Unknown id should be not found, got %v", err)
	}
	if err := svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(repo.Posts) != 0 {
		t.Error("Post should be removed")
	}
}

func TestPostService_StoreFailureIsInternal(t *testing.T) {
	svc, repo := newPostService()
	repo.QueryError = errors.New("connection refused")

	_, err := svc.List(context.Background())
	if !service.IsKind(err, service.KindInternal) {
		t.Errorf("Expected internal error, got %v", err)
	}
}

func TestPostService_Export(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		svc.Create(ctx, validInput(fmt.Sprintf("export-%d", i)))
	}

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, service.FormatNDJSON)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 exported, got %d", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}

	buf.Reset()
	svc.Export(ctx, &buf, service.FormatJSON)
	var posts []models.Post
	if err := json.Unmarshal(buf.Bytes(), &posts); err != nil {
		t.Fatalf("JSON export should be an array: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("Expected 3 posts, got %d", len(posts))
	}

	_, err = svc.Export(ctx, &buf, "csv")
	if !service.IsKind(err, service.KindValidation) {
		t.Errorf("Expected validation error for csv, got %v", err)
	}
}

func newAuthService(admins *mocks.MockAdminRepository) service.AuthService {
	cfg := config.AuthConfig{
		AdminEmail:    "Owner@Example.com",
		AdminPassword: "s3cret",
		BcryptCost:    bcrypt.MinCost,
	}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return service.NewAuthService(admins, tokens, cfg, zerolog.Nop())
}

func TestAuthService_SetupLoginVerify(t *testing.T) {
	admins := mocks.NewMockAdminRepository()
	svc := newAuthService(admins)
	ctx := context.Background()

	admin, err := svc.Setup(ctx)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if admin.Email != "owner@example.com" {
		t.Errorf("Expected lowercased email, got %s", admin.Email)
	}

	_, err = svc.Setup(ctx)
	if !service.IsKind(err, service.KindConflict) {
		t.Errorf("Second setup should conflict, got %v", err)
	}

	_, err = svc.Login(ctx, "owner@example.com", "wrong")
	if !service.IsKind(err, service.KindUnauthorized) {
		t.Errorf("Wrong password should be unauthorized, got %v", err)
	}
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "s3cret")
	if errUnknown == nil || errUnknown.(*service.Error).Message != err.(*service.Error).Message {
		t.Error("Unknown email and wrong password should fail identically")
	}

	result, err := svc.Login(ctx, "OWNER@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	id, err := svc.Verify(result.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id != result.User.ID {
		t.Errorf("Expected subject %s, got %s", result.User.ID, id)
	}

	me, err := svc.Me(ctx, id)
	if err != nil || me.Email != "owner@example.com" {
		t.Errorf("Me returned %+v, %v", me, err)
	}

	if _, err := svc.Verify("garbage"); !service.IsKind(err, service.KindUnauthorized) {
		t.Errorf("Expected unauthorized, got %v", err)
	}
}

func TestNewsletterService_Subscribe(t *testing.T) {
	repo := mocks.NewMockSubscriberRepository()
	svc := service.NewNewsletterService(repo, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Subscribe(ctx, "Reader@Example.com")
	if err != nil || !created {
		t.Fatalf("Expected new subscriber, got %v, %v", created, err)
	}
	created, err = svc.Subscribe(ctx, "reader@example.com ")
	if err != nil || created {
		t.Errorf("Repeat signup should not be created, got %v, %v", created, err)
	}
	if _, err := svc.Subscribe(ctx, "nope"); !service.IsKind(err, service.KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
