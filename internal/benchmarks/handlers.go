// Package benchmarks handles spreadsheet uploads and the dashboard built
// from the stored rows.
package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/datastore"
	"asr-benchmark-hub/backend/internal/ingest"
	"asr-benchmark-hub/backend/internal/metrics"
)

const maxUploadSize = 50 << 20 // 50 MB

// Store is the benchmark persistence surface the handlers depend on.
type Store interface {
	InsertBatch(ctx context.Context, rows []ingest.BenchmarkRow, createdBy string) error
	List(ctx context.Context, limit, offset int) ([]*datastore.BenchmarkEntry, error)
	Count(ctx context.Context) (int, error)
}

// Archiver keeps a copy of the raw upload in object storage.
type Archiver interface {
	Archive(ctx context.Context, originalFilename, contentType string, data []byte) (string, error)
}

// Handler serves the /api/benchmarks routes.
type Handler struct {
	store   Store
	archive Archiver // nil when object storage is not configured
	auditor *auth.Auditor
	log     *zap.Logger
}

// NewHandler wires the benchmark endpoints. archive may be nil.
func NewHandler(store Store, archive Archiver, auditor *auth.Auditor, log *zap.Logger) *Handler {
	return &Handler{store: store, archive: archive, auditor: auditor, log: log}
}

// UploadResponse echoes the processed rows so the frontend can render the
// dashboard without a second round trip.
type UploadResponse struct {
	Data    []ingest.BenchmarkRow `json:"data"`
	Message string                `json:"message"`
}

// Upload handles POST /api/benchmarks/upload. Authentication is optional:
// rows uploaded without a token are attributed to the anonymous creator.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get file: %v", err)})
		}
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds limit of %d MB", maxUploadSize>>20)})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".xlsx", ".xls", ".csv":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a spreadsheet (.xlsx, .xls or .csv)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to read uploaded file: %v", err)})
		return
	}

	table, err := ingest.Decode(fileHeader.Filename, contents)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse the file: %v", err)})
		return
	}

	rows, err := ingest.Process(table, ingest.DefaultAliases())
	if err != nil {
		var rowErr *ingest.RowError
		switch {
		case errors.As(err, &rowErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": rowErr.Error()})
		case errors.Is(err, ingest.ErrEmptyUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The uploaded file contains no usable data."})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	actor, _ := auth.CurrentUser(c)
	createdBy := datastore.AnonymousCreator
	if actor != nil {
		createdBy = actor.ID
	}

	ctx := c.Request.Context()
	if err := h.store.InsertBatch(ctx, rows, createdBy); err != nil {
		h.log.Error("benchmark batch insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while processing the file"})
		return
	}

	if h.archive != nil {
		contentType := fileHeader.Header.Get("Content-Type")
		if objectName, err := h.archive.Archive(ctx, fileHeader.Filename, contentType, contents); err != nil {
			h.log.Warn("upload archival failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		} else {
			h.log.Info("upload archived", zap.String("object", objectName))
		}
	}

	ip, ua := auth.RequestOrigin(c)
	h.auditor.Record(ctx, auth.Event{
		Actor:        actor,
		Action:       "benchmark_uploaded",
		ResourceType: "benchmark",
		Details:      map[string]interface{}{"filename": fileHeader.Filename, "rows": len(rows)},
		IPAddress:    ip,
		UserAgent:    ua,
	})

	c.JSON(http.StatusOK, UploadResponse{
		Data:    rows,
		Message: fmt.Sprintf("Successfully processed %d rows from %s", len(rows), fileHeader.Filename),
	})
}

// DashboardResponse is the body for GET /api/benchmarks/dashboard.
type DashboardResponse struct {
	Entries          []*datastore.BenchmarkEntry `json:"entries"`
	Total            int                         `json:"total"`
	Summary          metrics.Summary             `json:"summary"`
	ModelPerformance []metrics.ModelPerformance  `json:"modelPerformance"`
}

const defaultDashboardLimit = 1000

// Dashboard handles GET /api/benchmarks/dashboard. Aggregates are computed
// over the returned page, newest entries first.
func (h *Handler) Dashboard(c *gin.Context) {
	limit := queryInt(c, "limit", defaultDashboardLimit)
	skip := queryInt(c, "skip", 0)

	ctx := c.Request.Context()
	entries, err := h.store.List(ctx, limit, skip)
	if err != nil {
		h.log.Error("benchmark listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard data"})
		return
	}
	total, err := h.store.Count(ctx)
	if err != nil {
		h.log.Error("benchmark count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard data"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Entries:          entries,
		Total:            total,
		Summary:          metrics.Summarize(entries),
		ModelPerformance: metrics.PerModel(entries),
	})
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
