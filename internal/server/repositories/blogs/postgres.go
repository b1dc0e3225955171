// Package blogs provides the PostgreSQL-backed repository for blog posts.
package blogs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/dbx"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements blog storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every post, oldest first. Posts created in the same instant
// are ordered by id so the result is stable.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Blog, error) {
	query := `
		SELECT id, title, snippet, body, created_at, updated_at
		FROM blogs
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Blog, 0)
	for rows.Next() {
		var item models.Blog
		if err := rows.Scan(&item.ID, &item.Title, &item.Snippet, &item.Body, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetByID returns common.ErrorNotFound when no post has the id, including
// ids that are not UUIDs.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	query := `
		SELECT id, title, snippet, body, created_at, updated_at
		FROM blogs
		WHERE id = $1
	`
	var item models.Blog
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.Title, &item.Snippet, &item.Body, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

// Create inserts blog, assigning an id when it has none, and fills in the
// stored timestamps.
func (r *PostgresRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}

	query := `
		INSERT INTO blogs (id, title, snippet, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, blog.ID, blog.Title, blog.Snippet, blog.Body).
		Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blog, nil
}

// Update overwrites title, snippet and body of an existing post and
// returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if !validID(blog.ID) {
		return nil, common.ErrorNotFound
	}

	query := `
		UPDATE blogs
		SET title = $2, snippet = $3, body = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, blog.ID, blog.Title, blog.Snippet, blog.Body).
		Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blog, nil
}

// Delete permanently removes a post.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}

	query := `
		DELETE FROM blogs
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
