package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, classID int64, image []byte) (*models.CheckInResult, error)
	Record(ctx context.Context, label string, classID int64) (*models.CheckInResult, error)
	SessionSummary(ctx context.Context, classID int64) (*models.SessionSummary, error)
}

type summaryRebuilder interface {
	Rebuild(ctx context.Context, classID int64) ([]models.SummaryRow, error)
}

// AttendanceHandler exposes check-in and live session view endpoints.
type AttendanceHandler struct {
	service   attendanceService
	summaries summaryRebuilder
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService, summaries summaryRebuilder) *AttendanceHandler {
	return &AttendanceHandler{service: svc, summaries: summaries}
}

type checkInPayload struct {
	Image string `json:"image"`
	Label string `json:"label"`
}

// CheckIn godoc
// @Summary Record attendance for the recognized student
// @Description Accepts either a probe image or, for trusted callers, a
// @Description pre-resolved label. The label path skips recognition and
// @Description the role check.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body checkInPayload true "Probe image or label"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/checkins [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload checkInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, err)
		return
	}

	var result *models.CheckInResult
	if payload.Label != "" {
		result, err = h.service.Record(c.Request.Context(), payload.Label, classID)
	} else {
		var image []byte
		image, err = decodeImage(payload.Image)
		if err == nil {
			result, err = h.service.CheckIn(c.Request.Context(), classID, image)
		}
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Summary godoc
// @Summary Live view of the class's current session
// @Description Viewing the summary also refreshes the stored per-student
// @Description summary section, so the ledger file stays current.
// @Tags Attendance
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.summaries != nil {
		if _, err := h.summaries.Rebuild(c.Request.Context(), classID); err != nil {
			response.Error(c, err)
			return
		}
	}
	summary, err := h.service.SessionSummary(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
