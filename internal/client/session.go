package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/personal-blog-api/internal/models"
)

// sessionFile is the persisted form of a session
type sessionFile struct {
	Token string            `json:"token"`
	User  *models.AdminView `json:"user,omitempty"`
}

// Session holds the admin's token and cached identity, persisted to a file
// so separate CLI invocations share one login.
type Session struct {
	path string

	mu    sync.RWMutex
	token string
	user  *models.AdminView
}

// DefaultSessionPath returns ~/.config/personal-blog/session.json
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "personal-blog", "session.json"), nil
}

// NewSession binds a session to path without reading it
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Token returns the current bearer token, or "" when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached admin, or nil when logged out
func (s *Session) User() *models.AdminView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether a token is held
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Init loads the persisted session and validates it through the API. A
// rejected token is cleared; transport failures are returned and leave the
// session as loaded.
func (s *Session) Init(ctx context.Context, c *Client) error {
	if err := s.load(); err != nil {
		return err
	}
	if !s.LoggedIn() {
		return nil
	}

	user, err := c.Me(ctx)
	if IsStatus(err, http.StatusUnauthorized) {
		return s.Logout()
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return s.save()
}

// Login authenticates and persists the resulting session
func (s *Session) Login(ctx context.Context, c *Client, email, password string) (*models.AdminView, error) {
	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &resp.User
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout forgets the token and removes the persisted file
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

func (s *Session) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt file is treated as logged out
		return s.Logout()
	}

	s.mu.Lock()
	s.token, s.user = f.Token, f.User
	s.mu.Unlock()
	return nil
}

func (s *Session) save() error {
	s.mu.RLock()
	f := sessionFile{Token: s.token, User: s.user}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}
