package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/personal-blog-api/internal/auth"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/rs/zerolog"
)

type authService struct {
	admins repository.AdminRepository
	tokens *auth.TokenIssuer
	cfg    config.AuthConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(admins repository.AdminRepository, tokens *auth.TokenIssuer, cfg config.AuthConfig, log zerolog.Logger, opts ...Option) AuthService {
	o := buildOptions(opts)
	return &authService{
		admins: admins,
		tokens: tokens,
		cfg:    cfg,
		log:    log.With().Str("service", "auth").Logger(),
		now:    o.now,
	}
}

// Login checks the credentials and issues a session token. Unknown emails
// and wrong passwords fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, internalError(fmt.Errorf("loading admin: %w", err))
	}
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, password) {
		s.log.Warn().Msg("Failed login attempt")
		return nil, unauthorizedError(MsgInvalidCredentials, nil)
	}

	token, expiresAt, err := s.tokens.Issue(admin.ID, admin.Email)
	if err != nil {
		return nil, internalError(err)
	}

	s.log.Info().Str("admin_id", admin.ID).Time("expires_at", expiresAt).Msg("Admin logged in")
	return &LoginResult{Token: token, User: admin.View()}, nil
}

// Verify resolves a bearer token to the admin id it was issued for
func (s *authService) Verify(token string) (string, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return "", unauthorizedError(MsgNotAuthorized, err)
	}
	return id, nil
}

// Me returns the admin behind a verified token
func (s *authService) Me(ctx context.Context, adminID string) (*models.AdminView, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, internalError(fmt.Errorf("loading admin: %w", err))
	}
	if admin == nil {
		return nil, unauthorizedError(MsgNotAuthorized, nil)
	}
	view := admin.View()
	return &view, nil
}

// Setup creates the sole admin from configuration, once
func (s *authService) Setup(ctx context.Context) (*models.AdminView, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, internalError(fmt.Errorf("counting admins: %w", err))
	}
	if count > 0 {
		return nil, conflictError(MsgAdminExists)
	}

	admin, err := NewAdmin(s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.BcryptCost, s.now())
	if err != nil {
		return nil, internalError(err)
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, conflictError(MsgAdminExists)
		}
		return nil, internalError(fmt.Errorf("creating admin: %w", err))
	}

	s.log.Info().Str("email", admin.Email).Msg("Admin created")
	view := admin.View()
	return &view, nil
}

// NewAdmin builds an admin record with a hashed password, falling back to
// the default credentials for empty values.
func NewAdmin(email, password string, cost int, now time.Time) (*models.Admin, error) {
	if strings.TrimSpace(email) == "" {
		email = config.DefaultAdminEmail
	}
	if password == "" {
		password = config.DefaultAdminPassword
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &models.Admin{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
