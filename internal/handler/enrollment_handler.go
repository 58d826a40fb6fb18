package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/bala2207022/face-attendance/internal/service"
	"github.com/bala2207022/face-attendance/pkg/response"
)

type enrollmentService interface {
	SaveFrame(ctx context.Context, req service.SaveFrameRequest) (*service.SaveFrameResult, error)
	RegisterProfessor(ctx context.Context, req service.RegisterProfessorRequest) (*service.RegisterProfessorResult, error)
	RegisterStudent(ctx context.Context, req service.RegisterStudentRequest) (*service.RegisterStudentResult, error)
}

// EnrollmentHandler exposes frame capture and registration endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

type saveFramePayload struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

// SaveFrame godoc
// @Summary Store one enrollment frame for a person
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body saveFramePayload true "Frame capture"
// @Success 201 {object} response.Envelope
// @Router /enrollment/frames [post]
func (h *EnrollmentHandler) SaveFrame(c *gin.Context) {
	var payload saveFramePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, err)
		return
	}
	image, err := decodeImage(payload.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.SaveFrame(c.Request.Context(), service.SaveFrameRequest{
		Name:  payload.Name,
		Code:  payload.Code,
		Role:  payload.Role,
		Image: image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RegisterProfessor godoc
// @Summary Register a professor and create their class
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body service.RegisterProfessorRequest true "Professor registration"
// @Success 201 {object} response.Envelope
// @Router /enrollment/professors [post]
func (h *EnrollmentHandler) RegisterProfessor(c *gin.Context) {
	var req service.RegisterProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.RegisterProfessor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RegisterStudent godoc
// @Summary Register a student, optionally attaching them to a class roster
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Student registration"
// @Success 201 {object} response.Envelope
// @Router /enrollment/students [post]
func (h *EnrollmentHandler) RegisterStudent(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
