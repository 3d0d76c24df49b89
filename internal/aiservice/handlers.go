package aiservice

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the AI operations over HTTP.
type Handler struct {
	service *Service
	log     *zap.Logger
}

// NewHandler builds the HTTP surface for the AI service.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Summarize handles POST /api/ai/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	result, err := h.service.Summarize(c.Request.Context(), req)
	if err != nil {
		h.log.Error("summarize request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error generating summary: %v", err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GenerateReport handles POST /api/ai/generate-report.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	result, err := h.service.GenerateReport(c.Request.Context(), req)
	if err != nil {
		h.log.Error("report generation failed", zap.Error(err), zap.String("file", req.FileName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error generating blog post: %v", err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeErrors handles POST /api/ai/analyze-errors.
func (h *Handler) AnalyzeErrors(c *gin.Context) {
	var req AnalyzeErrorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	result, err := h.service.AnalyzeErrors(c.Request.Context(), req)
	if err != nil {
		h.log.Error("error analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error analyzing errors: %v", err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompareModels handles POST /api/ai/compare-models.
func (h *Handler) CompareModels(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	result, err := h.service.CompareModels(c.Request.Context(), req)
	if err != nil {
		h.log.Error("model comparison failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error comparing models: %v", err)})
		return
	}
	c.JSON(http.StatusOK, result)
}
