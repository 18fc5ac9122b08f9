package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

const postColumns = `id, slug, title, summary, content, tags, featured, read_time, published_at, created_at, updated_at`

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var tagsJSON []byte

	err := row.Scan(
		&post.ID, &post.Slug, &post.Title, &post.Summary, &post.Content,
		&tagsJSON, &post.Featured, &post.ReadTime,
		&post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Tags = []string{}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &post.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of post %s: %w", post.ID, err)
		}
	}
	return &post, nil
}

func encodeTags(tags []string) string {
	if tags == nil {
		return "[]"
	}
	data, _ := json.Marshal(tags)
	return string(data)
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Slug, post.Title, post.Summary, post.Content,
		encodeTags(post.Tags), post.Featured, post.ReadTime,
		post.PublishedAt, post.CreatedAt, post.UpdatedAt,
	)
	if database.IsUniqueViolation(err, "posts_slug_key") {
		return ErrSlugTaken
	}
	return err
}

// Update replaces the mutable fields of the post currently at currentSlug
func (r *postRepo) Update(ctx context.Context, currentSlug string, post *models.Post) error {
	query := `
		UPDATE posts
		SET slug = $1, title = $2, summary = $3, content = $4, tags = $5,
			featured = $6, read_time = $7, updated_at = $8
		WHERE slug = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		post.Slug, post.Title, post.Summary, post.Content, encodeTags(post.Tags),
		post.Featured, post.ReadTime, post.UpdatedAt,
		currentSlug,
	)
	if database.IsUniqueViolation(err, "posts_slug_key") {
		return ErrSlugTaken
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a post by ID and reports whether it existed
func (r *postRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// BatchInsert inserts multiple posts using PostgreSQL COPY
func (r *postRepo) BatchInsert(ctx context.Context, posts []*models.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("posts",
		"id", "slug", "title", "summary", "content", "tags", "featured", "read_time",
		"published_at", "created_at", "updated_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, post := range posts {
		_, err := stmt.ExecContext(ctx,
			post.ID, post.Slug, post.Title, post.Summary, post.Content,
			encodeTags(post.Tags), post.Featured, post.ReadTime,
			post.PublishedAt, post.CreatedAt, post.UpdatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("buffering post %q: %w", post.Slug, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		if database.IsUniqueViolation(err, "posts_slug_key") {
			return 0, ErrSlugTaken
		}
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(posts), nil
}

// GetBySlug retrieves a post by slug
func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// GetByID retrieves a post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// SlugExists checks if a post with the given slug exists
func (r *postRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// List returns posts newest first, optionally featured-only and limited
func (r *postRepo) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any
	if filter.FeaturedOnly {
		query += ` WHERE featured = TRUE`
	}
	query += ` ORDER BY published_at DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// DeleteAll removes every post (used by seeding with reset)
func (r *postRepo) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts")
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

// StreamAll streams all posts for export, newest first
func (r *postRepo) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY published_at DESC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return err
		}
		if err := callback(post); err != nil {
			return err
		}
	}

	return rows.Err()
}
