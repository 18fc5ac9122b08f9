package repository

import (
	"context"
	"database/sql"

	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

// adminRepo is the concrete implementation of AdminRepository
type adminRepo struct {
	db *database.DB
}

// NewAdminRepo creates a new admin repository
func NewAdminRepo(db *database.DB) AdminRepository {
	return &adminRepo{db: db}
}

// Create inserts a new admin
func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.Role,
		admin.CreatedAt, admin.UpdatedAt,
	)
	if database.IsUniqueViolation(err, "admins_email_key") {
		return ErrEmailTaken
	}
	return err
}

func (r *adminRepo) getOne(ctx context.Context, where string, arg any) (*models.Admin, error) {
	query := `SELECT id, email, password_hash, role, created_at, updated_at FROM admins WHERE ` + where

	var admin models.Admin
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

// GetByEmail retrieves an admin by (lowercased) email
func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByID retrieves an admin by ID
func (r *adminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.getOne(ctx, "id = $1", id)
}

// Count returns the total number of admins
func (r *adminRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&count)
	return count, err
}

// DeleteAll removes every admin
func (r *adminRepo) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM admins")
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}
