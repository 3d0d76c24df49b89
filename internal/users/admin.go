package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/datastore"
)

// ListUsers handles GET /api/auth/users (admin only). Supports role and
// status filters plus skip/limit paging.
func (h *Handler) ListUsers(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	skip := queryInt(c, "skip", 0)

	role := c.Query("role")
	if role != "" && !datastore.Role(role).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown role %q", role)})
		return
	}
	status := c.Query("status")
	if status != "" && !datastore.Status(status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status %q", status)})
		return
	}

	found, err := h.users.List(c.Request.Context(), role, status, limit, skip)
	if err != nil {
		h.log.Error("user listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, found)
}

// GetUser handles GET /api/auth/users/:id (admin only).
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminUpdateRequest is the body for PUT /api/auth/users/:id. Unlike the
// self-service profile update it can change role and status.
type AdminUpdateRequest struct {
	Email       *string         `json:"email"`
	FullName    *string         `json:"full_name"`
	Bio         *string         `json:"bio"`
	Role        *string         `json:"role"`
	Status      *string         `json:"status"`
	Preferences json.RawMessage `json:"preferences"`
}

// UpdateUser handles PUT /api/auth/users/:id (admin only).
func (h *Handler) UpdateUser(c *gin.Context) {
	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	patch := datastore.UserPatch{
		Email:       req.Email,
		FullName:    req.FullName,
		Bio:         req.Bio,
		Preferences: req.Preferences,
	}
	if req.Role != nil {
		role := datastore.Role(*req.Role)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown role %q", *req.Role)})
			return
		}
		patch.Role = &role
	}
	if req.Status != nil {
		status := datastore.Status(*req.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status %q", *req.Status)})
			return
		}
		patch.Status = &status
	}
	if req.Preferences != nil && !json.Valid(req.Preferences) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preferences must be valid JSON"})
		return
	}

	ctx := c.Request.Context()
	targetID := c.Param("id")
	updated, err := h.users.ApplyPatch(ctx, targetID, patch)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, datastore.ErrDuplicate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
		default:
			h.log.Error("admin user update failed", zap.String("target", targetID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		}
		return
	}

	if patch.Status != nil {
		if err := h.mail.SendStatusNotice(updated.Email, updated.Username, string(*patch.Status)); err != nil {
			h.log.Warn("status notice email failed", zap.String("email", updated.Email), zap.Error(err))
		}
	}

	actor, _ := auth.CurrentUser(c)
	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        actor,
		Action:       "user_updated_by_admin",
		ResourceType: "user",
		ResourceID:   updated.ID,
		Details:      map[string]interface{}{"updated_fields": patchedFields(patch)},
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, updated)
}

// AuditLogs handles GET /api/auth/audit-logs (admin only). Supports an
// action substring filter and a user id filter.
func (h *Handler) AuditLogs(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	skip := queryInt(c, "skip", 0)

	entries, err := h.audits.List(c.Request.Context(), c.Query("action"), c.Query("user_id"), limit, skip)
	if err != nil {
		h.log.Error("audit log listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit logs"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// SystemStats is the body returned by GET /api/auth/stats.
type SystemStats struct {
	TotalUsers       int                      `json:"total_users"`
	ActiveUsers      int                      `json:"active_users"`
	TotalPosts       int                      `json:"total_posts"`
	TotalUploads     int                      `json:"total_uploads"`
	RecentActivities []*datastore.AuditEntry `json:"recent_activities"`
	UserGrowth       []datastore.GrowthPoint `json:"user_growth"`
	PopularModels    []datastore.ModelCount  `json:"popular_models"`
}

const (
	recentActivityCount = 10
	popularModelCount   = 5
	growthWindow        = 30 * 24 * time.Hour
)

// Stats handles GET /api/auth/stats (admin only).
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		h.statsError(c, "user count", err)
		return
	}
	activeUsers, err := h.users.CountByStatus(ctx, datastore.StatusActive)
	if err != nil {
		h.statsError(c, "active user count", err)
		return
	}
	totalPosts, err := h.posts.Count(ctx)
	if err != nil {
		h.statsError(c, "post count", err)
		return
	}
	totalUploads, err := h.uploads.Count(ctx)
	if err != nil {
		h.statsError(c, "upload count", err)
		return
	}
	recent, err := h.audits.List(ctx, "", "", recentActivityCount, 0)
	if err != nil {
		h.statsError(c, "recent activity", err)
		return
	}
	growth, err := h.users.RegistrationsSince(ctx, time.Now().Add(-growthWindow))
	if err != nil {
		h.statsError(c, "user growth", err)
		return
	}
	popular, err := h.uploads.ModelCounts(ctx, popularModelCount)
	if err != nil {
		h.statsError(c, "popular models", err)
		return
	}

	c.JSON(http.StatusOK, SystemStats{
		TotalUsers:       totalUsers,
		ActiveUsers:      activeUsers,
		TotalPosts:       totalPosts,
		TotalUploads:     totalUploads,
		RecentActivities: recent,
		UserGrowth:       growth,
		PopularModels:    popular,
	})
}

func (h *Handler) statsError(c *gin.Context, what string, err error) {
	h.log.Error("stats query failed", zap.String("query", what), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute system stats"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
