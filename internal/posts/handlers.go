// Package posts serves the blog surface: benchmark write-ups with their
// attached data payloads.
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/datastore"
)

// Repository is the post persistence surface the handlers depend on.
type Repository interface {
	Create(ctx context.Context, p *datastore.BlogPost) error
	List(ctx context.Context, limit, offset int) ([]*datastore.BlogPost, error)
	ByID(ctx context.Context, id string) (*datastore.BlogPost, error)
	Update(ctx context.Context, p *datastore.BlogPost) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// Handler serves the /api/posts routes.
type Handler struct {
	posts   Repository
	auditor *auth.Auditor
	log     *zap.Logger
}

// NewHandler wires the blog endpoints.
func NewHandler(posts Repository, auditor *auth.Auditor, log *zap.Logger) *Handler {
	return &Handler{posts: posts, auditor: auditor, log: log}
}

// List handles GET /api/posts. Public; newest first with skip/limit paging.
func (h *Handler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	skip := queryInt(c, "skip", 0)

	found, err := h.posts.List(c.Request.Context(), limit, skip)
	if err != nil {
		h.log.Error("post listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, found)
}

// Get handles GET /api/posts/:id. Public. Each read bumps the view counter.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	post, err := h.posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Error("post lookup failed", zap.String("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get post"})
		return
	}

	if err := h.posts.IncrementViews(ctx, id); err != nil {
		h.log.Warn("view count update failed", zap.String("post_id", id), zap.Error(err))
	} else {
		post.ViewsCount++
	}

	c.JSON(http.StatusOK, post)
}

// CreateRequest is the body for POST /api/posts.
type CreateRequest struct {
	Title                string          `json:"title" binding:"required"`
	Author               string          `json:"author"`
	Excerpt              string          `json:"excerpt"`
	Content              string          `json:"content" binding:"required"`
	Status               string          `json:"status"`
	BenchmarkData        json.RawMessage `json:"benchmarkData"`
	ModelPerformanceData json.RawMessage `json:"modelPerformanceData"`
	Tags                 json.RawMessage `json:"tags"`
}

func (r *CreateRequest) validate() error {
	if r.Status != "" && r.Status != datastore.PostStatusDraft &&
		r.Status != datastore.PostStatusPublished && r.Status != datastore.PostStatusArchived {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	for name, doc := range map[string]json.RawMessage{
		"benchmarkData":        r.BenchmarkData,
		"modelPerformanceData": r.ModelPerformanceData,
		"tags":                 r.Tags,
	} {
		if doc != nil && !json.Valid(doc) {
			return fmt.Errorf("%s must be valid JSON", name)
		}
	}
	return nil
}

// Create handles POST /api/posts (editor and above).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := auth.CurrentUser(c)

	post := &datastore.BlogPost{
		ID:                   uuid.New().String(),
		Title:                req.Title,
		Date:                 time.Now(),
		Author:               req.Author,
		Excerpt:              req.Excerpt,
		Content:              req.Content,
		Status:               req.Status,
		BenchmarkData:        req.BenchmarkData,
		ModelPerformanceData: req.ModelPerformanceData,
		Tags:                 req.Tags,
	}
	if post.Status == "" {
		post.Status = datastore.PostStatusPublished
	}
	if actor != nil {
		post.AuthorID.String = actor.ID
		post.AuthorID.Valid = true
		if post.Author == "" {
			post.Author = actor.Username
		}
	}

	ctx := c.Request.Context()
	if err := h.posts.Create(ctx, post); err != nil {
		h.log.Error("post creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        actor,
		Action:       "post_created",
		ResourceType: "post",
		ResourceID:   post.ID,
		Details:      map[string]interface{}{"title": post.Title},
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusCreated, post)
}

// UpdateRequest is the body for PUT /api/posts/:id. Only supplied fields
// change.
type UpdateRequest struct {
	Title                *string         `json:"title"`
	Author               *string         `json:"author"`
	Excerpt              *string         `json:"excerpt"`
	Content              *string         `json:"content"`
	Status               *string         `json:"status"`
	BenchmarkData        json.RawMessage `json:"benchmarkData"`
	ModelPerformanceData json.RawMessage `json:"modelPerformanceData"`
	Tags                 json.RawMessage `json:"tags"`
}

// Update handles PUT /api/posts/:id (editor and above).
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	post, err := h.posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Error("post lookup failed", zap.String("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Author != nil {
		post.Author = *req.Author
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Status != nil {
		switch *req.Status {
		case datastore.PostStatusDraft, datastore.PostStatusPublished, datastore.PostStatusArchived:
			post.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", *req.Status)})
			return
		}
	}
	if req.BenchmarkData != nil {
		post.BenchmarkData = req.BenchmarkData
	}
	if req.ModelPerformanceData != nil {
		post.ModelPerformanceData = req.ModelPerformanceData
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}

	if err := h.posts.Update(ctx, post); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Error("post update failed", zap.String("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	actor, _ := auth.CurrentUser(c)
	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        actor,
		Action:       "post_updated",
		ResourceType: "post",
		ResourceID:   post.ID,
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/posts/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Error("post deletion failed", zap.String("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	actor, _ := auth.CurrentUser(c)
	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        actor,
		Action:       "post_deleted",
		ResourceType: "post",
		ResourceID:   id,
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
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
