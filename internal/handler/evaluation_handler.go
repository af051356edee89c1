package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/service"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

// EvaluationHandler exposes evaluation endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs EvaluationHandler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// ListByEnrollment godoc
// @Summary List evaluations for an enrollment
// @Tags Evaluations
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/evaluations [get]
func (h *EvaluationHandler) ListByEnrollment(c *gin.Context) {
	evaluations, err := h.evaluations.ListByEnrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// AcademicStatus godoc
// @Summary Get the academic status of an enrollment
// @Tags Evaluations
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [get]
func (h *EvaluationHandler) AcademicStatus(c *gin.Context) {
	status, err := h.evaluations.GetAcademicStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Record godoc
// @Summary Record an evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.RecordEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Record(c *gin.Context) {
	var req service.RecordEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.evaluations.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Operation(c, result)
}
