package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/datastore"
)

type fakeAppender struct {
	entries []*datastore.AuditEntry
	err     error
}

func (f *fakeAppender) Append(_ context.Context, e *datastore.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func TestAuditor_RecordsEntry(t *testing.T) {
	t.Parallel()

	store := &fakeAppender{}
	auditor := NewAuditor(store, zap.NewNop())

	actor := testUser("u1", datastore.RoleEditor, datastore.StatusActive)
	auditor.Record(context.Background(), Event{
		Actor:        actor,
		Action:       "login_success",
		ResourceType: "user",
		ResourceID:   "u1",
		Details:      map[string]interface{}{"method": "password"},
		IPAddress:    "10.0.0.1",
		UserAgent:    "test-agent",
	})

	require.Len(t, store.entries, 1)
	e := store.entries[0]
	assert.Equal(t, "login_success", e.Action)
	assert.Equal(t, "u1", e.UserID.String)
	assert.True(t, e.UserID.Valid)
	assert.Equal(t, "user", e.ResourceType.String)
	assert.Equal(t, "10.0.0.1", e.IPAddress.String)
	assert.JSONEq(t, `{"method":"password"}`, string(e.Details))
}

func TestAuditor_AnonymousActor(t *testing.T) {
	t.Parallel()

	store := &fakeAppender{}
	auditor := NewAuditor(store, zap.NewNop())

	auditor.Record(context.Background(), Event{Action: "login_failed"})

	require.Len(t, store.entries, 1)
	assert.False(t, store.entries[0].UserID.Valid)
}

func TestAuditor_WriteFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	store := &fakeAppender{err: errors.New("disk on fire")}
	auditor := NewAuditor(store, zap.NewNop())

	// Must not panic or propagate.
	auditor.Record(context.Background(), Event{Action: "upload"})
	assert.Empty(t, store.entries)
}
