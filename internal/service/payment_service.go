package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

type paymentRepository interface {
	ListPlans(ctx context.Context, cycle, level string) ([]models.PaymentPlan, error)
	FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error)
	CreatePlan(ctx context.Context, plan *models.PaymentPlan) error
	ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.Installment, error)
	FindInstallmentByID(ctx context.Context, id string) (*models.Installment, error)
	CreateInstallment(ctx context.Context, installment *models.Installment) error
	Pay(ctx context.Context, installmentID, method string) (*models.PaymentReceipt, error)
	Reverse(ctx context.Context, installmentID string) (*models.PaymentReceipt, error)
	GetStudentDebt(ctx context.Context, studentID string) (*models.StudentDebt, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// CreatePlanRequest describes a new payment plan.
type CreatePlanRequest struct {
	Cycle string `json:"cycle" validate:"required"`
	Level string `json:"level" validate:"required"`
}

// CreateInstallmentRequest adds one scheduled payment to a plan.
type CreateInstallmentRequest struct {
	PlanID    string    `json:"plan_id" validate:"required"`
	StudentID string    `json:"student_id" validate:"required"`
	Number    int       `json:"number" validate:"gt=0"`
	Concept   string    `json:"concept" validate:"required"`
	Amount    float64   `json:"amount" validate:"gt=0"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

// ProcessPaymentRequest marks an installment paid.
type ProcessPaymentRequest struct {
	InstallmentID string `json:"installment_id" validate:"required"`
	Method        string `json:"method" validate:"required,oneof=CASH CARD TRANSFER"`
}

// PaymentService orchestrates payment plans, installment payments and
// reversals.
type PaymentService struct {
	repo      paymentRepository
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(repo paymentRepository, students studentReader, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, validator: validate, logger: logger}
}

// ListPlans returns payment plans, optionally scoped by cycle and level.
func (s *PaymentService) ListPlans(ctx context.Context, cycle, level string) ([]models.PaymentPlan, error) {
	plans, err := s.repo.ListPlans(ctx, cycle, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment plans")
	}
	return plans, nil
}

// GetPlan returns one payment plan.
func (s *PaymentService) GetPlan(ctx context.Context, id string) (*models.PaymentPlan, error) {
	plan, err := s.repo.FindPlanByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
	}
	return plan, nil
}

// CreatePlan registers a new plan for a cycle and level.
func (s *PaymentService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*models.PaymentPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan := &models.PaymentPlan{Cycle: req.Cycle, Level: req.Level}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment plan")
	}
	return plan, nil
}

// ListInstallments returns installments matching the filter.
func (s *PaymentService) ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.Installment, error) {
	installments, err := s.repo.ListInstallments(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list installments")
	}
	return installments, nil
}

// CreateInstallment schedules a payment for a student under a plan.
func (s *PaymentService) CreateInstallment(ctx context.Context, req CreateInstallmentRequest) (*models.Installment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid installment payload")
	}
	if _, err := s.repo.FindPlanByID(ctx, req.PlanID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	installment := &models.Installment{
		PlanID:    req.PlanID,
		StudentID: req.StudentID,
		Number:    req.Number,
		Concept:   req.Concept,
		Amount:    req.Amount,
		DueDate:   req.DueDate,
	}
	if err := s.repo.CreateInstallment(ctx, installment); err != nil {
		return nil, opError(err, "failed to create installment")
	}
	return installment, nil
}

// Process marks an installment as paid and returns a receipt with the
// refreshed plan totals and the student's pending debt. Paying an
// installment that is already paid is a rejection, not an error.
func (s *PaymentService) Process(ctx context.Context, req ProcessPaymentRequest) (*models.OperationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	receipt, err := s.repo.Pay(ctx, req.InstallmentID, req.Method)
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		case errors.Is(err, repository.ErrInstallmentPaid):
			return models.Rejected("installment is already paid"), nil
		default:
			return nil, opError(err, "failed to process payment")
		}
	}
	s.logger.Info("payment processed",
		zap.String("installment_id", req.InstallmentID),
		zap.String("method", req.Method),
		zap.Float64("amount", receipt.Amount))
	return models.Accepted("payment processed", receipt), nil
}

// Reverse undoes a paid installment, restoring its prior state by due date
// and rolling the derived totals back. Reversing an unpaid installment is a
// rejection.
func (s *PaymentService) Reverse(ctx context.Context, installmentID string) (*models.OperationResult, error) {
	receipt, err := s.repo.Reverse(ctx, installmentID)
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		case errors.Is(err, repository.ErrInstallmentNotPaid):
			return models.Rejected("installment is not paid"), nil
		default:
			return nil, opError(err, "failed to reverse payment")
		}
	}
	s.logger.Info("payment reversed", zap.String("installment_id", installmentID))
	return models.Accepted("payment reversed", receipt), nil
}

// GetStudentDebt returns the ledger entry for a student. A student with no
// installments has no ledger row and owes nothing.
func (s *PaymentService) GetStudentDebt(ctx context.Context, studentID string) (*models.StudentDebt, error) {
	debt, err := s.repo.GetStudentDebt(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.StudentDebt{StudentID: studentID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student debt")
	}
	return debt, nil
}

// MarkOverdue sweeps pending installments whose due date has passed.
func (s *PaymentService) MarkOverdue(ctx context.Context) (int64, error) {
	updated, err := s.repo.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark overdue installments")
	}
	if updated > 0 {
		s.logger.Info("installments marked overdue", zap.Int64("count", updated))
	}
	return updated, nil
}
