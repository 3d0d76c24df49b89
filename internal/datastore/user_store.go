package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const userColumns = `id, username, email, hashed_password, full_name, bio, role, status,
	is_email_verified, email_verification_token, preferences, last_login, created_at, updated_at`

// UserStore persists identities. Uniqueness of username and email is
// enforced by the database and surfaced as ErrDuplicate.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. u.ID and u.CreatedAt must be set by the caller.
func (s *UserStore) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	var prefs []byte
	if u.Preferences != nil {
		prefs = u.Preferences
	} else {
		prefs = json.RawMessage("null")
	}

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.HashedPassword, u.FullName, u.Bio,
		u.Role, u.Status, u.IsEmailVerified, u.EmailVerificationToken,
		prefs, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ByID retrieves a user by id.
func (s *UserStore) ByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// ByUsernameOrEmail resolves the login identifier against either column.
func (s *UserStore) ByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, usernameOrEmail))
}

// Count returns the total number of identities. The first registration ever
// is promoted to admin based on this count.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of identities with the given status.
func (s *UserStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users by status: %w", err)
	}
	return n, nil
}

// UpdateLastLogin stamps a successful login.
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// List returns users, optionally filtered by role and status.
func (s *UserStore) List(ctx context.Context, role, status string, limit, offset int) ([]*User, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argID))
		args = append(args, role)
		argID++
	}
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, status)
		argID++
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for users: %w", err)
	}
	return users, nil
}

// GrowthPoint is one day of new registrations.
type GrowthPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RegistrationsSince groups account creations per day starting at the given
// time, in chronological order.
func (s *UserStore) RegistrationsSince(ctx context.Context, since time.Time) ([]GrowthPoint, error) {
	query := `
		SELECT DATE(created_at), COUNT(id)
		FROM users
		WHERE created_at >= $1
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at)
	`
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query user growth: %w", err)
	}
	defer rows.Close()

	points := []GrowthPoint{}
	for rows.Next() {
		var p GrowthPoint
		var day time.Time
		if err := rows.Scan(&day, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan growth row: %w", err)
		}
		p.Date = day.Format("2006-01-02")
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for user growth: %w", err)
	}
	return points, nil
}

// ApplyPatch updates only the fields explicitly supplied in the patch and
// returns the updated user.
func (s *UserStore) ApplyPatch(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.Role != nil {
		add("role", *patch.Role)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Preferences != nil {
		add("preferences", []byte(patch.Preferences))
	}

	if len(setClauses) == 0 {
		return s.ByID(ctx, id)
	}

	add("updated_at", time.Now())

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for user %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.ByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *UserStore) scanOne(row rowScanner) (*User, error) {
	u, err := s.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *UserStore) scanRow(row rowScanner) (*User, error) {
	u := &User{}
	var prefs []byte
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Bio,
		&u.Role, &u.Status, &u.IsEmailVerified, &u.EmailVerificationToken,
		&prefs, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	if prefs != nil && string(prefs) != "null" {
		u.Preferences = json.RawMessage(prefs)
	}
	return u, nil
}
