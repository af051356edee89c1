package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/service"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

// PaymentHandler exposes payment plan and installment endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ListPlans godoc
// @Summary List payment plans
// @Tags Payments
// @Produce json
// @Param cycle query string false "Filter by cycle"
// @Param level query string false "Filter by level"
// @Success 200 {object} response.Envelope
// @Router /payments/plans [get]
func (h *PaymentHandler) ListPlans(c *gin.Context) {
	plans, err := h.payments.ListPlans(c.Request.Context(), c.Query("cycle"), c.Query("level"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// GetPlan godoc
// @Summary Get a payment plan
// @Tags Payments
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /payments/plans/{id} [get]
func (h *PaymentHandler) GetPlan(c *gin.Context) {
	plan, err := h.payments.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// CreatePlan godoc
// @Summary Create a payment plan
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /payments/plans [post]
func (h *PaymentHandler) CreatePlan(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.payments.CreatePlan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// ListInstallments godoc
// @Summary List installments
// @Tags Payments
// @Produce json
// @Param planId query string false "Filter by plan"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /payments/installments [get]
func (h *PaymentHandler) ListInstallments(c *gin.Context) {
	var filter models.InstallmentFilter
	filter.PlanID = c.Query("planId")
	filter.StudentID = c.Query("studentId")
	filter.Status = models.InstallmentStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	installments, err := h.payments.ListInstallments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, installments, nil)
}

// CreateInstallment godoc
// @Summary Schedule an installment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateInstallmentRequest true "Installment payload"
// @Success 201 {object} response.Envelope
// @Router /payments/installments [post]
func (h *PaymentHandler) CreateInstallment(c *gin.Context) {
	var req service.CreateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	installment, err := h.payments.CreateInstallment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, installment)
}

// Process godoc
// @Summary Process an installment payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.ProcessPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req service.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.payments.Process(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Operation(c, result)
}

// Reverse godoc
// @Summary Reverse a processed payment
// @Tags Payments
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/reverse [post]
func (h *PaymentHandler) Reverse(c *gin.Context) {
	result, err := h.payments.Reverse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Operation(c, result)
}

// StudentDebt godoc
// @Summary Get a student's debt ledger
// @Tags Payments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/debt [get]
func (h *PaymentHandler) StudentDebt(c *gin.Context) {
	debt, err := h.payments.GetStudentDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, debt, nil)
}

// MarkOverdue godoc
// @Summary Sweep pending installments past their due date
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/installments/overdue [post]
func (h *PaymentHandler) MarkOverdue(c *gin.Context) {
	updated, err := h.payments.MarkOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": updated}, nil)
}
