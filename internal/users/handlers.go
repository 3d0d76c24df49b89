// Package users implements registration, login, token refresh, profiles and
// the admin-only user management surface.
package users

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/datastore"
	"asr-benchmark-hub/backend/internal/mailer"
)

// Repository is the identity persistence surface the handlers depend on.
type Repository interface {
	Create(ctx context.Context, u *datastore.User) error
	ByID(ctx context.Context, id string) (*datastore.User, error)
	ByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*datastore.User, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status datastore.Status) (int, error)
	UpdateLastLogin(ctx context.Context, id string) error
	List(ctx context.Context, role, status string, limit, offset int) ([]*datastore.User, error)
	ApplyPatch(ctx context.Context, id string, patch datastore.UserPatch) (*datastore.User, error)
	RegistrationsSince(ctx context.Context, since time.Time) ([]datastore.GrowthPoint, error)
}

// AuditReader lists audit entries for the admin endpoints.
type AuditReader interface {
	List(ctx context.Context, action, userID string, limit, offset int) ([]*datastore.AuditEntry, error)
}

// Counter reports how many records a store holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// UploadStatsReader extends Counter with per-model breakdowns.
type UploadStatsReader interface {
	Counter
	ModelCounts(ctx context.Context, limit int) ([]datastore.ModelCount, error)
}

// Handler serves the /api/auth routes.
type Handler struct {
	users   Repository
	tokens  *auth.TokenService
	auditor *auth.Auditor
	mail    mailer.Mailer
	posts   Counter
	uploads UploadStatsReader
	audits  AuditReader
	log     *zap.Logger
}

// NewHandler wires the identity endpoints.
func NewHandler(users Repository, tokens *auth.TokenService, auditor *auth.Auditor, mail mailer.Mailer, posts Counter, uploads UploadStatsReader, audits AuditReader, log *zap.Logger) *Handler {
	return &Handler{
		users:   users,
		tokens:  tokens,
		auditor: auditor,
		mail:    mail,
		posts:   posts,
		uploads: uploads,
		audits:  audits,
		log:     log,
	}
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name"`
	Bio             string `json:"bio"`
}

const defaultPreferences = `{"theme": "light", "email_notifications": true}`

// Register creates an account. The very first account ever registered becomes
// the admin; every later one starts as a viewer.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("password hashing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	ctx := c.Request.Context()
	count, err := h.users.Count(ctx)
	if err != nil {
		h.log.Error("user count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	role := datastore.RoleViewer
	if count == 0 {
		role = datastore.RoleAdmin
	}

	user := &datastore.User{
		ID:                     uuid.New().String(),
		Username:               req.Username,
		Email:                  req.Email,
		HashedPassword:         digest,
		FullName:               nullString(req.FullName),
		Bio:                    nullString(req.Bio),
		Role:                   role,
		Status:                 datastore.StatusActive,
		EmailVerificationToken: nullString(verificationToken()),
		Preferences:            json.RawMessage(defaultPreferences),
		CreatedAt:              time.Now(),
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, datastore.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already registered"})
			return
		}
		h.log.Error("user creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	if err := h.mail.SendWelcome(user.Email, user.Username); err != nil {
		h.log.Warn("welcome email failed", zap.String("email", user.Email), zap.Error(err))
	}

	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        user,
		Action:       "user_registered",
		ResourceType: "user",
		ResourceID:   user.ID,
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusCreated, user)
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// TokenResponse is the body returned by login and refresh.
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         *datastore.User `json:"user"`
}

// Login verifies credentials and issues a token pair. Unknown identifier and
// wrong password produce the same response, and the unknown-identifier path
// still burns a bcrypt comparison.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	ctx := c.Request.Context()
	ip, ua := auth.RequestOrigin(c)

	user, err := h.users.ByUsernameOrEmail(ctx, req.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			auth.BurnPasswordCheck(req.Password)
			h.recordLoginFailure(ctx, req.UsernameOrEmail, ip, ua)
			c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrCredentialMismatch.Error()})
			return
		}
		h.log.Error("login lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if !auth.CheckPassword(req.Password, user.HashedPassword) {
		h.recordLoginFailure(ctx, req.UsernameOrEmail, ip, ua)
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrCredentialMismatch.Error()})
		return
	}

	if user.Status != datastore.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive. Please contact administrator."})
		return
	}

	if err := h.users.UpdateLastLogin(ctx, user.ID); err != nil {
		h.log.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	resp, err := h.tokenPair(user)
	if err != nil {
		h.log.Error("token issuance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	h.auditor.Record(ctx, auth.Event{
		Actor:        user,
		Action:       "login_success",
		ResourceType: "user",
		ResourceID:   user.ID,
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, resp)
}

// RefreshRequest is the body for POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a valid refresh token for a fresh token pair. Both tokens
// rotate on every refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	claims, err := h.tokens.Decode(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if claims.Purpose != auth.PurposeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrWrongTokenPurpose.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}
		h.log.Error("refresh lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}
	if user.Status != datastore.StatusActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}

	resp, err := h.tokenPair(user)
	if err != nil {
		h.log.Error("token issuance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user.
func (h *Handler) Profile(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ProfileUpdateRequest is the body for PUT /api/auth/profile. Only supplied
// fields change.
type ProfileUpdateRequest struct {
	FullName    *string         `json:"full_name"`
	Bio         *string         `json:"bio"`
	Preferences json.RawMessage `json:"preferences"`
}

// UpdateProfile applies self-service changes to the authenticated user. Role
// and status are not reachable from here.
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if req.Preferences != nil && !json.Valid(req.Preferences) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preferences must be valid JSON"})
		return
	}

	patch := datastore.UserPatch{
		FullName:    req.FullName,
		Bio:         req.Bio,
		Preferences: req.Preferences,
	}

	ctx := c.Request.Context()
	updated, err := h.users.ApplyPatch(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("profile update failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        updated,
		Action:       "profile_updated",
		ResourceType: "user",
		ResourceID:   updated.ID,
		Details:      map[string]interface{}{"updated_fields": patchedFields(patch)},
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) tokenPair(user *datastore.User) (*TokenResponse, error) {
	access, err := h.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := h.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

func (h *Handler) recordLoginFailure(ctx context.Context, usernameOrEmail, ip, ua string) {
	h.auditor.Record(ctx, auth.Event{
		Action:    "login_failed",
		Details:   map[string]interface{}{"username_or_email": usernameOrEmail},
		IPAddress: ip,
		UserAgent: ua,
	})
}

func patchedFields(patch datastore.UserPatch) []string {
	fields := []string{}
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.FullName != nil {
		fields = append(fields, "full_name")
	}
	if patch.Bio != nil {
		fields = append(fields, "bio")
	}
	if patch.Role != nil {
		fields = append(fields, "role")
	}
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.Preferences != nil {
		fields = append(fields, "preferences")
	}
	return fields
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// verificationToken returns a 32-character alphanumeric token from a CSPRNG.
func verificationToken() string {
	out := make([]byte, 32)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; nothing sensible to do but stop.
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		out[i] = tokenAlphabet[n.Int64()]
	}
	return string(out)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
