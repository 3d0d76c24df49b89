package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditStore appends to and reads from the append-only audit log.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Append writes one audit entry. ID and Timestamp are assigned here when
// unset.
func (s *AuditStore) Append(ctx context.Context, e *AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, resource_type, resource_id, details, ip_address, user_agent, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var details []byte
	if e.Details != nil {
		details = e.Details
	} else {
		details = []byte("null")
	}

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Action, e.ResourceType, e.ResourceID, details, e.IPAddress, e.UserAgent, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns audit entries, newest first, optionally filtered by an action
// substring and/or actor id.
func (s *AuditStore) List(ctx context.Context, action, userID string, limit, offset int) ([]*AuditEntry, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if action != "" {
		conditions = append(conditions, fmt.Sprintf("action LIKE $%d", argID))
		args = append(args, "%"+action+"%")
		argID++
	}
	if userID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
		args = append(args, userID)
		argID++
	}

	query := `SELECT id, user_id, action, resource_type, resource_id, details, ip_address, user_agent, timestamp FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*AuditEntry{}
	for rows.Next() {
		e := &AuditEntry{}
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID,
			&details, &e.IPAddress, &e.UserAgent, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry row: %w", err)
		}
		e.Details = jsonOrNil(details)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for audit entries: %w", err)
	}
	return entries, nil
}
