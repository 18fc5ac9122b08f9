// Package client talks to the blog REST API on behalf of the CLI and editor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/validation"
)

// DefaultBaseURL is the API root used when none is configured
const DefaultBaseURL = "http://localhost:8080/api"

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
	Errors  []validation.ValidationError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Success bool             `json:"success"`
	Token   string           `json:"token"`
	User    models.AdminView `json:"user"`
}

// SetupResponse is the body of a successful setup
type SetupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

type meResponse struct {
	Success bool             `json:"success"`
	User    models.AdminView `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Client is a thin JSON client for the blog API. Requests are not retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource supplies the bearer token for each request
func WithTokenSource(token func() string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL (e.g. http://host/api)
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Posts

func (c *Client) ListPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := c.do(ctx, http.MethodGet, "/blogs", nil, &posts)
	return posts, err
}

func (c *Client) FeaturedPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := c.do(ctx, http.MethodGet, "/blogs/featured", nil, &posts)
	return posts, err
}

func (c *Client) LatestPosts(ctx context.Context, count int) ([]*models.Post, error) {
	var posts []*models.Post
	err := c.do(ctx, http.MethodGet, "/blogs/latest/"+strconv.Itoa(count), nil, &posts)
	return posts, err
}

func (c *Client) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(slug), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, input *models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/blogs", input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, slug string, input *models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPut, "/blogs/"+url.PathEscape(slug), input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes by id and returns the server's confirmation message
func (c *Client) DeletePost(ctx context.Context, id string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodDelete, "/blogs/"+url.PathEscape(id), nil, &resp)
	return resp.Message, err
}

// Export copies the post export stream to w
func (c *Client) Export(ctx context.Context, w io.Writer, format string) error {
	resp, err := c.send(ctx, http.MethodGet, "/blogs/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return err
}

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*models.AdminView, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Setup(ctx context.Context) (*SetupResponse, error) {
	var resp SetupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/setup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Subscribe signs email up for the newsletter
func (c *Client) Subscribe(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost, "/newsletter", map[string]string{"email": email}, &resp)
	return resp.Message, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs the request and converts error statuses into *APIError
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message string                       `json:"message"`
		Errors  []validation.ValidationError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message, apiErr.Errors = payload.Message, payload.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = "Something went wrong"
	}
	return nil, apiErr
}
