package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

// EvaluationRepository persists evaluations and the derived academic status.
type EvaluationRepository struct {
	db      *sqlx.DB
	locking config.LockingConfig
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB, locking config.LockingConfig) *EvaluationRepository {
	return &EvaluationRepository{db: db, locking: locking}
}

// ListByEnrollment returns evaluations for an enrollment, oldest first.
func (r *EvaluationRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Evaluation, error) {
	const query = `SELECT id, enrollment_id, type, score, weight, evaluated_at, created_at
        FROM evaluations WHERE enrollment_id = $1 ORDER BY evaluated_at ASC`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// GetAcademicStatus returns the denormalized status record for an enrollment.
func (r *EvaluationRepository) GetAcademicStatus(ctx context.Context, enrollmentID string) (*models.AcademicStatus, error) {
	const query = `SELECT id, enrollment_id, average, state, updated_at FROM academic_status WHERE enrollment_id = $1`
	var status models.AcademicStatus
	if err := r.db.GetContext(ctx, &status, query, enrollmentID); err != nil {
		return nil, err
	}
	return &status, nil
}

// Record inserts an evaluation and recomputes the enrollment's weighted
// average in one transaction. The academic_status row is created on first
// use and locked for the duration, so concurrent inserts for the same
// enrollment serialize and each recomputation sees a consistent snapshot.
func (r *EvaluationRepository) Record(ctx context.Context, eval *models.Evaluation, passingScore float64) (*models.AcademicStatus, error) {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	const seed = `INSERT INTO academic_status (id, enrollment_id, average, state, updated_at)
        VALUES ($1, $2, 0, $3, $4)
        ON CONFLICT (enrollment_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, seed, uuid.NewString(), eval.EnrollmentID, models.AcademicStatusFailing, now); err != nil {
		return nil, fmt.Errorf("seed academic status: %w", err)
	}

	var status models.AcademicStatus
	const lock = `SELECT id, enrollment_id, average, state, updated_at FROM academic_status WHERE enrollment_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &status, lock, eval.EnrollmentID); err != nil {
		return nil, fmt.Errorf("lock academic status: %w", err)
	}

	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	const insert = `INSERT INTO evaluations (id, enrollment_id, type, score, weight, evaluated_at, created_at)
        VALUES (:id, :enrollment_id, :type, :score, :weight, :evaluated_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, eval); err != nil {
		return nil, fmt.Errorf("insert evaluation: %w", err)
	}

	var average float64
	const avgQuery = `SELECT COALESCE(SUM(score * weight) / NULLIF(SUM(weight), 0), 0) FROM evaluations WHERE enrollment_id = $1`
	if err := tx.GetContext(ctx, &average, avgQuery, eval.EnrollmentID); err != nil {
		return nil, fmt.Errorf("compute average: %w", err)
	}

	state := models.AcademicStatusFailing
	if average >= passingScore {
		state = models.AcademicStatusPassing
	}

	const update = `UPDATE academic_status SET average = $2, state = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, status.ID, average, state, now); err != nil {
		return nil, fmt.Errorf("update academic status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit evaluation: %w", err)
	}

	status.Average = average
	status.State = state
	status.UpdatedAt = now
	return &status, nil
}
