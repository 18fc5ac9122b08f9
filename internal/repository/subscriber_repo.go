package repository

import (
	"context"

	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

type subscriberRepo struct {
	db *database.DB
}

// NewSubscriberRepo creates a new subscriber repository
func NewSubscriberRepo(db *database.DB) SubscriberRepository {
	return &subscriberRepo{db: db}
}

// Create inserts the subscriber unless the email is already present
func (r *subscriberRepo) Create(ctx context.Context, sub *models.Subscriber) (bool, error) {
	query := `
		INSERT INTO subscribers (id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, sub.ID, sub.Email, sub.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Count returns the total number of subscribers
func (r *subscriberRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscribers").Scan(&count)
	return count, err
}
