package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const postColumns = `id, title, date, author, author_id, excerpt, content, status,
	benchmark_data, model_performance_data, tags, views_count, likes_count, updated_at`

// PostStore persists blog-style benchmark reports.
type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Create inserts a new post. p.ID and p.Date must be set by the caller.
func (s *PostStore) Create(ctx context.Context, p *BlogPost) error {
	query := `INSERT INTO blog_posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Date, p.Author, p.AuthorID, p.Excerpt, p.Content, p.Status,
		nullableJSON(p.BenchmarkData), nullableJSON(p.ModelPerformanceData), nullableJSON(p.Tags),
		p.ViewsCount, p.LikesCount, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}
	return nil
}

// List returns posts, newest first.
func (s *PostStore) List(ctx context.Context, limit, offset int) ([]*BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts ORDER BY date DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []*BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for blog posts: %w", err)
	}
	return posts, nil
}

// ByID retrieves one post.
func (s *PostStore) ByID(ctx context.Context, id string) (*BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	p, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update rewrites the mutable fields of a post.
func (s *PostStore) Update(ctx context.Context, p *BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = $1, excerpt = $2, content = $3, status = $4,
			benchmark_data = $5, model_performance_data = $6, tags = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		p.Title, p.Excerpt, p.Content, p.Status,
		nullableJSON(p.BenchmarkData), nullableJSON(p.ModelPerformanceData), nullableJSON(p.Tags),
		time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update blog post %s: %w", p.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for blog post %s: %w", p.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for blog post %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter. Best-effort from the caller's side.
func (s *PostStore) IncrementViews(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE blog_posts SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views for blog post %s: %w", id, err)
	}
	return nil
}

// Count returns the number of posts.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count blog posts: %w", err)
	}
	return n, nil
}

func scanPost(row rowScanner) (*BlogPost, error) {
	p := &BlogPost{}
	var benchmarkData, modelPerformanceData, tags []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Date, &p.Author, &p.AuthorID, &p.Excerpt, &p.Content, &p.Status,
		&benchmarkData, &modelPerformanceData, &tags, &p.ViewsCount, &p.LikesCount, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan blog post row: %w", err)
	}
	p.BenchmarkData = jsonOrNil(benchmarkData)
	p.ModelPerformanceData = jsonOrNil(modelPerformanceData)
	p.Tags = jsonOrNil(tags)
	return p, nil
}

func nullableJSON(raw json.RawMessage) []byte {
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}

func jsonOrNil(raw []byte) json.RawMessage {
	if raw == nil || string(raw) == "null" {
		return nil
	}
	return json.RawMessage(raw)
}
