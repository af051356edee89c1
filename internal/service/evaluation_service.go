package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

type evaluationRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Evaluation, error)
	GetAcademicStatus(ctx context.Context, enrollmentID string) (*models.AcademicStatus, error)
	Record(ctx context.Context, eval *models.Evaluation, passingScore float64) (*models.AcademicStatus, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// RecordEvaluationRequest describes one graded assessment.
type RecordEvaluationRequest struct {
	EnrollmentID string    `json:"enrollment_id" validate:"required"`
	Type         string    `json:"type" validate:"required"`
	Score        float64   `json:"score"`
	Weight       float64   `json:"weight" validate:"gt=0"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// EvaluationService records evaluations and exposes the derived academic
// status.
type EvaluationService struct {
	repo        evaluationRepository
	enrollments enrollmentReader
	grading     config.GradingConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs EvaluationService.
func NewEvaluationService(repo evaluationRepository, enrollments enrollmentReader, grading config.GradingConfig, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{repo: repo, enrollments: enrollments, grading: grading, validator: validate, logger: logger}
}

// ListByEnrollment returns an enrollment's evaluations.
func (s *EvaluationService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Evaluation, error) {
	evaluations, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evaluations, nil
}

// GetAcademicStatus returns the current weighted average and pass state.
// Before the first evaluation no status row exists.
func (s *EvaluationService) GetAcademicStatus(ctx context.Context, enrollmentID string) (*models.AcademicStatus, error) {
	status, err := s.repo.GetAcademicStatus(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no evaluations recorded for enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic status")
	}
	return status, nil
}

// Record appends an evaluation and returns the recomputed academic status.
// Scores outside the grading scale and non-positive weights are rejection
// results; the enrollment must exist and be active.
func (s *EvaluationService) Record(ctx context.Context, req RecordEvaluationRequest) (*models.OperationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	if req.Score < s.grading.MinScore || req.Score > s.grading.MaxScore {
		return models.Rejected(fmt.Sprintf("score must be between %g and %g", s.grading.MinScore, s.grading.MaxScore)), nil
	}

	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return models.Rejected("enrollment is not active"), nil
	}

	evaluatedAt := req.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now().UTC()
	}
	eval := &models.Evaluation{
		EnrollmentID: req.EnrollmentID,
		Type:         req.Type,
		Score:        req.Score,
		Weight:       req.Weight,
		EvaluatedAt:  evaluatedAt,
	}
	status, err := s.repo.Record(ctx, eval, s.grading.PassingScore)
	if err != nil {
		return nil, opError(err, "failed to record evaluation")
	}

	s.logger.Info("evaluation recorded",
		zap.String("enrollment_id", req.EnrollmentID),
		zap.Float64("score", req.Score),
		zap.Float64("average", status.Average),
		zap.String("state", string(status.State)))
	return models.Accepted("evaluation recorded", map[string]interface{}{
		"evaluation": eval,
		"status":     status,
	}), nil
}
