package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Role orders viewer < editor < admin. Admin additionally carries an explicit
// override in the authorization gate, independent of its rank.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state. Only active accounts authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User maps to the users table. HashedPassword is never serialized.
type User struct {
	ID                     string          `json:"id"`
	Username               string          `json:"username"`
	Email                  string          `json:"email"`
	HashedPassword         string          `json:"-"`
	FullName               sql.NullString  `json:"full_name,omitempty"`
	Bio                    sql.NullString  `json:"bio,omitempty"`
	Role                   Role            `json:"role"`
	Status                 Status          `json:"status"`
	IsEmailVerified        bool            `json:"is_email_verified"`
	EmailVerificationToken sql.NullString  `json:"-"`
	Preferences            json.RawMessage `json:"preferences,omitempty"`
	LastLogin              sql.NullTime    `json:"last_login,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              sql.NullTime    `json:"updated_at,omitempty"`
}

// UserPatch is an explicit optional-field patch: only non-nil fields are
// applied, so absent and present-with-value are distinguishable.
type UserPatch struct {
	Email       *string
	FullName    *string
	Bio         *string
	Role        *Role
	Status      *Status
	Preferences json.RawMessage
}
