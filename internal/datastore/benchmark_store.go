package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"asr-benchmark-hub/backend/internal/ingest"
)

// BenchmarkStore persists normalized benchmark rows.
type BenchmarkStore struct {
	db *sql.DB
}

func NewBenchmarkStore(db *sql.DB) *BenchmarkStore {
	return &BenchmarkStore{db: db}
}

// InsertBatch persists one upload atomically: either every row is committed
// or none are. createdBy is the uploader's id or AnonymousCreator.
func (s *BenchmarkStore) InsertBatch(ctx context.Context, rows []ingest.BenchmarkRow, createdBy string) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upload transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO benchmark_entries
			(id, audio_file_name, audio_length, model, ground_truth, transcription, wer_score, inference_time, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare benchmark insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, r := range rows {
		_, err = stmt.ExecContext(ctx,
			uuid.New().String(),
			r.AudioFileName,
			r.AudioLengthSeconds,
			r.Model,
			r.GroundTruth,
			r.Transcription,
			r.WERScore,
			r.InferenceTimeSeconds,
			createdBy,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert benchmark row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit benchmark batch: %w", err)
	}
	return nil
}

// List returns stored benchmark entries, newest first.
func (s *BenchmarkStore) List(ctx context.Context, limit, offset int) ([]*BenchmarkEntry, error) {
	query := `
		SELECT id, audio_file_name, audio_length, model, ground_truth, transcription, wer_score, inference_time, created_by, created_at
		FROM benchmark_entries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark entries: %w", err)
	}
	defer rows.Close()

	entries := []*BenchmarkEntry{}
	for rows.Next() {
		e := &BenchmarkEntry{}
		if err := rows.Scan(
			&e.ID, &e.AudioFileName, &e.AudioLength, &e.Model, &e.GroundTruth,
			&e.Transcription, &e.WERScore, &e.InferenceTime, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for benchmark entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored benchmark rows.
func (s *BenchmarkStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM benchmark_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count benchmark entries: %w", err)
	}
	return n, nil
}

// ModelCount is the number of stored rows for one model.
type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// ModelCounts returns the most benchmarked models, most rows first.
func (s *BenchmarkStore) ModelCounts(ctx context.Context, limit int) ([]ModelCount, error) {
	query := `
		SELECT model, COUNT(id)
		FROM benchmark_entries
		GROUP BY model
		ORDER BY COUNT(id) DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to count benchmark entries per model: %w", err)
	}
	defer rows.Close()

	counts := []ModelCount{}
	for rows.Next() {
		var mc ModelCount
		if err := rows.Scan(&mc.Model, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan model count row: %w", err)
		}
		counts = append(counts, mc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for model counts: %w", err)
	}
	return counts, nil
}
