package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// AuditEntry is one immutable record of a security-relevant action. Entries
// are appended by the audit recorder and never mutated or deleted.
type AuditEntry struct {
	ID           string          `json:"id"`
	UserID       sql.NullString  `json:"user_id,omitempty"`
	Action       string          `json:"action"`
	ResourceType sql.NullString  `json:"resource_type,omitempty"`
	ResourceID   sql.NullString  `json:"resource_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    sql.NullString  `json:"ip_address,omitempty"`
	UserAgent    sql.NullString  `json:"user_agent,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}
