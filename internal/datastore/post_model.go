package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// BlogPost maps to the blog_posts table. Benchmark and model-performance
// payloads are opaque JSON documents attached by the report author.
type BlogPost struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Date                 time.Time       `json:"date"`
	Author               string          `json:"author"`
	AuthorID             sql.NullString  `json:"author_id,omitempty"`
	Excerpt              string          `json:"excerpt"`
	Content              string          `json:"content"`
	Status               string          `json:"status"`
	BenchmarkData        json.RawMessage `json:"benchmarkData,omitempty"`
	ModelPerformanceData json.RawMessage `json:"modelPerformanceData,omitempty"`
	Tags                 json.RawMessage `json:"tags,omitempty"`
	ViewsCount           int             `json:"views_count"`
	LikesCount           int             `json:"likes_count"`
	UpdatedAt            sql.NullTime    `json:"updated_at,omitempty"`
}

// Post publication states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)
