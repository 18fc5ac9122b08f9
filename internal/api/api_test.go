package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/api"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	testEmail    = "owner@example.com"
	testPassword = "s3cret-pass"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTL:      time.Hour,
			AdminEmail:    testEmail,
			AdminPassword: testPassword,
			BcryptCost:    4,
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{LoginLimit: 100, LoginWindow: time.Minute},
	}
}

type testEnv struct {
	router *gin.Engine
	posts  *mocks.MockPostRepository
	subs   *mocks.MockSubscriberRepository
}

func setupTestRouter(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, posts, _, subs := mocks.NewRepositories()
	services := service.NewServices(repos, cfg, zerolog.Nop())

	router, stop := api.NewRouter(services, cfg, nil, zerolog.Nop())
	t.Cleanup(stop)

	return &testEnv{
		router: router,
		posts:  posts,
		subs:   subs,
	}
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login runs setup and returns a valid token
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	if w := e.do("POST", "/api/auth/setup", nil, ""); w.Code != http.StatusCreated {
		t.Fatalf("setup: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w := e.do("POST", "/api/auth/login", map[string]string{"email": testEmail, "password": testPassword}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func postBody(slug string, featured bool) map[string]interface{} {
	return map[string]interface{}{
		"title":    "Post " + slug,
		"slug":     slug,
		"summary":  "Summary for " + slug,
		"content":  "<p>Some <strong>words</strong> here</p>",
		"tags":     []string{"go", " ", "notes"},
		"featured": featured,
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	w := env.do("GET", "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "personal-blog-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(ctx context.Context) error { return f.err }
func (f fakeDB) Stats() sql.DBStats                    { return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2} }

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, _, _, _ := mocks.NewRepositories()
	cfg := testConfig()
	router, stop := api.NewRouter(service.NewServices(repos, cfg, zerolog.Nop()), cfg, fakeDB{err: errors.New("connection refused")}, zerolog.Nop())
	defer stop()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, posts, _, _ := mocks.NewRepositories()
	posts.Posts["a"] = &models.Post{ID: "a", Slug: "a"}
	posts.Posts["b"] = &models.Post{ID: "b", Slug: "b"}
	cfg := testConfig()
	router, stop := api.NewRouter(service.NewServices(repos, cfg, zerolog.Nop()), cfg, fakeDB{}, zerolog.Nop())
	defer stop()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	counts := response["content"].(map[string]interface{})
	if counts["posts"].(float64) != 2 {
		t.Errorf("Expected 2 posts, got %v", counts["posts"])
	}
	pool := response["pool"].(map[string]interface{})
	if pool["open_connections"].(float64) != 3 {
		t.Errorf("Expected 3 open connections, got %v", pool["open_connections"])
	}
}

func TestSetup(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	w := env.do("POST", "/api/auth/setup", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	response := decode(t, w)
	if response["message"] != "Admin created successfully" || response["email"] != testEmail || response["success"] != true {
		t.Errorf("Unexpected setup response: %v", response)
	}

	w = env.do("POST", "/api/auth/setup", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 on second setup, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Admin already exists" {
		t.Errorf("Expected 'Admin already exists', got %v", msg)
	}
}

func TestLogin(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	env.do("POST", "/api/auth/setup", nil, "")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMsg    string
	}{
		{"wrong password", map[string]string{"email": testEmail, "password": "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", map[string]string{"email": "who@example.com", "password": testPassword}, http.StatusUnauthorized, "Invalid email or password"},
		{"invalid email", map[string]string{"email": "not-an-email", "password": "x"}, http.StatusBadRequest, "Validation failed"},
		{"missing password", map[string]string{"email": testEmail}, http.StatusBadRequest, "Validation failed"},
		{"success", map[string]string{"email": testEmail, "password": testPassword}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/auth/login", tt.body, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			response := decode(t, w)
			if tt.wantMsg != "" && response["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %v", tt.wantMsg, response["message"])
			}
			if tt.wantStatus == http.StatusOK {
				if response["token"] == "" || response["success"] != true {
					t.Errorf("Expected token in response, got %v", response)
				}
				user := response["user"].(map[string]interface{})
				if user["email"] != testEmail || user["role"] != "admin" {
					t.Errorf("Unexpected user: %v", user)
				}
				if _, leaked := user["passwordHash"]; leaked {
					t.Error("password hash must not be serialized")
				}
			}
		})
	}
}

func TestMe(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	token := env.login(t)

	w := env.do("GET", "/api/auth/me", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	user := decode(t, w)["user"].(map[string]interface{})
	if user["email"] != testEmail {
		t.Errorf("Expected %s, got %v", testEmail, user["email"])
	}

	for _, header := range []string{"", "Bearer", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.LoginLimit = 2
	env := setupTestRouter(t, cfg)

	body := map[string]string{"email": testEmail, "password": "wrong"}
	for i := 0; i < 2; i++ {
		if w := env.do("POST", "/api/auth/login", body, ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := env.do("POST", "/api/auth/login", body, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Too many requests" {
		t.Errorf("Expected 'Too many requests', got %v", msg)
	}
}

func TestMutationsRequireToken(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/blogs"},
		{"PUT", "/api/blogs/some-post"},
		{"DELETE", "/api/blogs/some-id"},
		{"GET", "/api/blogs/export"},
	}

	for _, tt := range tests {
		w := env.do(tt.method, tt.path, postBody("some-post", false), "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tt.method, tt.path, w.Code)
		}
	}
	if len(env.posts.Posts) != 0 {
		t.Errorf("Expected no stored posts, got %d", len(env.posts.Posts))
	}
}

func TestBlogLifecycle(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	token := env.login(t)

	// Create
	w := env.do("POST", "/api/blogs", postBody("first-post", true), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Post
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.ReadTime != 1 {
		t.Errorf("Expected id and computed read time, got %+v", created)
	}
	if len(created.Tags) != 2 {
		t.Errorf("Expected blank tag dropped, got %v", created.Tags)
	}

	// Duplicate slug
	w = env.do("POST", "/api/blogs", postBody("first-post", false), token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "A blog with this slug already exists" {
		t.Errorf("Unexpected duplicate message: %v", msg)
	}

	// Validation
	w = env.do("POST", "/api/blogs", map[string]interface{}{"title": "x"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid: expected 400, got %d", w.Code)
	}
	if errs, ok := decode(t, w)["errors"].([]interface{}); !ok || len(errs) == 0 {
		t.Error("Expected field errors for invalid post")
	}

	env.do("POST", "/api/blogs", postBody("second-post", false), token)

	// Read
	w = env.do("GET", "/api/blogs/first-post", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	var list []models.Post
	w = env.do("GET", "/api/blogs", nil, "")
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Errorf("list: expected 2 posts, got %d", len(list))
	}

	w = env.do("GET", "/api/blogs/featured", nil, "")
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Slug != "first-post" {
		t.Errorf("featured: unexpected %v", list)
	}

	w = env.do("GET", "/api/blogs/latest/1", nil, "")
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("latest/1: expected 1 post, got %d", len(list))
	}

	// Update
	update := postBody("", false)
	update["title"] = "Renamed"
	w = env.do("PUT", "/api/blogs/first-post", update, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Post
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "Renamed" || updated.Slug != "first-post" || updated.ID != created.ID {
		t.Errorf("Unexpected update result %+v", updated)
	}

	w = env.do("PUT", "/api/blogs/first-post", postBody("second-post", false), token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("update conflict: expected 400, got %d", w.Code)
	}

	w = env.do("PUT", "/api/blogs/missing", postBody("", false), token)
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing: expected 404, got %d", w.Code)
	}

	// Delete
	w = env.do("DELETE", "/api/blogs/"+created.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Blog deleted successfully" {
		t.Errorf("Unexpected delete message: %v", msg)
	}

	w = env.do("GET", "/api/blogs/first-post", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Blog not found" {
		t.Errorf("Unexpected message: %v", msg)
	}

	for _, id := range []string{created.ID, "not-a-uuid"} {
		if w := env.do("DELETE", "/api/blogs/"+id, nil, token); w.Code != http.StatusNotFound {
			t.Errorf("delete %s: expected 404, got %d", id, w.Code)
		}
	}
}

func TestInvalidJSONBody(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	token := env.login(t)

	req := httptest.NewRequest("POST", "/api/blogs", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServerErrorsAreGeneric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, _, _, _ := mocks.NewRepositories()
	cfg := testConfig()
	services := service.NewServices(repos, cfg, zerolog.Nop())
	mockPosts := mocks.NewMockPostService()
	mockPosts.Err = errors.New("pq: connection reset")
	services.Posts = mockPosts
	router, stop := api.NewRouter(services, cfg, nil, zerolog.Nop())
	defer stop()

	for _, path := range []string{"/api/blogs", "/api/blogs/featured", "/api/blogs/latest/4", "/api/blogs/x"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, w.Code)
		}
		if strings.Contains(w.Body.String(), "connection reset") {
			t.Errorf("%s: internal error leaked: %s", path, w.Body.String())
		}
	}
}

func TestExport(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	token := env.login(t)
	env.do("POST", "/api/blogs", postBody("one", false), token)
	env.do("POST", "/api/blogs", postBody("two", false), token)

	w := env.do("GET", "/api/blogs/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Expected ndjson content type, got %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %d", len(lines))
	}

	w = env.do("GET", "/api/blogs/export?format=json", nil, token)
	var posts []models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil || len(posts) != 2 {
		t.Errorf("Expected JSON array of 2 posts, got %s (%v)", w.Body.String(), err)
	}

	w = env.do("GET", "/api/blogs/export?format=csv", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for csv, got %d", w.Code)
	}
}

func TestNewsletter(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	tests := []struct {
		name       string
		email      string
		wantStatus int
		wantMsg    string
	}{
		{"new", "reader@example.com", http.StatusCreated, "Subscribed successfully"},
		{"repeat", "Reader@Example.com", http.StatusOK, "Already subscribed"},
		{"invalid", "reader", http.StatusBadRequest, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/newsletter", map[string]string{"email": tt.email}, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if msg := decode(t, w)["message"]; msg != tt.wantMsg {
				t.Errorf("Expected %q, got %v", tt.wantMsg, msg)
			}
		})
	}

	if len(env.subs.Subscribers) != 1 {
		t.Errorf("Expected 1 subscriber, got %d", len(env.subs.Subscribers))
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	req := httptest.NewRequest("OPTIONS", "/api/blogs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Expected Authorization in allowed headers, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Errorf("Expected DELETE in allowed methods, got %q", got)
	}
}

func TestPublicPages(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	token := env.login(t)
	body := postBody("hello-world", true)
	body["content"] = `<h2>Intro</h2><p>Hi <a href="https://go.dev">Go</a></p><script>alert(1)</script>`
	env.do("POST", "/api/blogs", body, token)

	tests := []struct {
		path       string
		wantStatus int
		want       string
	}{
		{"/", http.StatusOK, `href="/blog/hello-world"`},
		{"/blog", http.StatusOK, "Summary for hello-world"},
		{"/blog/hello-world", http.StatusOK, `<h2 id="intro">Intro</h2>`},
		{"/blog/missing", http.StatusNotFound, "Blog not found"},
		{"/newsletter", http.StatusOK, `action="/newsletter"`},
		{"/static/article.css", http.StatusOK, ".code-block"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Expected body to contain %q", tt.want)
			}
			if strings.Contains(w.Body.String(), "alert(1)") {
				t.Error("script content rendered")
			}
		})
	}
}

func TestNewsletterForm(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	post := func(email string) *httptest.ResponseRecorder {
		form := url.Values{"email": {email}}
		req := httptest.NewRequest("POST", "/newsletter", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	if w := post("reader@example.com"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Subscribed successfully") {
		t.Errorf("Expected success page, got %d", w.Code)
	}
	if w := post("reader@example.com"); !strings.Contains(w.Body.String(), "Already subscribed") {
		t.Error("Expected already subscribed notice")
	}
	if w := post("bad"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
