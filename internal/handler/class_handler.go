package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/pkg/response"
)

type classOpener interface {
	OpenByProbe(ctx context.Context, image []byte) (*models.OpenClassResult, error)
}

// ClassHandler exposes the professor scan endpoint that opens sessions.
type ClassHandler struct {
	service classOpener
}

// NewClassHandler constructs the handler.
func NewClassHandler(svc classOpener) *ClassHandler {
	return &ClassHandler{service: svc}
}

type probePayload struct {
	Image string `json:"image"`
}

// Open godoc
// @Summary Open the next session of the recognized professor's latest class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body probePayload true "Probe image"
// @Success 200 {object} response.Envelope
// @Router /classes/open [post]
func (h *ClassHandler) Open(c *gin.Context) {
	var payload probePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, err)
		return
	}
	image, err := decodeImage(payload.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.OpenByProbe(c.Request.Context(), image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
