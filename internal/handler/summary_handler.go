package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/internal/service"
	"github.com/bala2207022/face-attendance/pkg/response"
)

type summaryService interface {
	Rebuild(ctx context.Context, classID int64) ([]models.SummaryRow, error)
	Export(ctx context.Context, classID int64, format string) (*service.ExportResult, error)
}

// SummaryHandler exposes summary rebuild and export endpoints.
type SummaryHandler struct {
	service summaryService
}

// NewSummaryHandler constructs the handler.
func NewSummaryHandler(svc summaryService) *SummaryHandler {
	return &SummaryHandler{service: svc}
}

// Rebuild godoc
// @Summary Recompute the per-student summary from the session log
// @Tags Summary
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/summary/rebuild [post]
func (h *SummaryHandler) Rebuild(c *gin.Context) {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.Rebuild(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Export godoc
// @Summary Export the class summary as CSV or PDF
// @Tags Summary
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Class ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} file
// @Router /classes/{id}/summary/export [get]
func (h *SummaryHandler) Export(c *gin.Context) {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	result, err := h.service.Export(c.Request.Context(), classID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
