package auth

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/datastore"
)

// AuditAppender is the durable audit log. *datastore.AuditStore satisfies it.
type AuditAppender interface {
	Append(ctx context.Context, e *datastore.AuditEntry) error
}

// Auditor records security-relevant actions. Writes are best-effort by
// design: the audit trail is advisory, not transactional with the action it
// describes, so a failed write is logged and never fails the caller.
type Auditor struct {
	store AuditAppender
	log   *zap.Logger
}

func NewAuditor(store AuditAppender, log *zap.Logger) *Auditor {
	return &Auditor{store: store, log: log}
}

// Event collects the optional parts of one audit record.
type Event struct {
	Actor        *datastore.User
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	IPAddress    string
	UserAgent    string
}

// Record appends one immutable entry to the audit log.
func (a *Auditor) Record(ctx context.Context, ev Event) {
	entry := &datastore.AuditEntry{
		Action:       ev.Action,
		ResourceType: nullString(ev.ResourceType),
		ResourceID:   nullString(ev.ResourceID),
		IPAddress:    nullString(ev.IPAddress),
		UserAgent:    nullString(ev.UserAgent),
	}
	if ev.Actor != nil {
		entry.UserID = nullString(ev.Actor.ID)
	}
	if ev.Details != nil {
		if raw, err := json.Marshal(ev.Details); err == nil {
			entry.Details = raw
		}
	}

	if err := a.store.Append(ctx, entry); err != nil {
		a.log.Warn("audit write failed",
			zap.String("action", ev.Action),
			zap.Error(err))
	}
}

// RequestOrigin extracts the caller address and user agent for audit
// entries.
func RequestOrigin(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.Request.UserAgent()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
