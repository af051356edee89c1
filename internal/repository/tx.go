package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Business-rule outcomes surfaced by transactional repository methods.
// Services translate these into success=false operation results; they are
// never exposed to callers as raw errors.
var (
	ErrDuplicateEnrollment = errors.New("student already has an active enrollment for this course and period")
	ErrStudentInactive     = errors.New("student is inactive")
	ErrCourseInactive      = errors.New("course is inactive")
	ErrInstallmentPaid     = errors.New("installment is already paid")
	ErrInstallmentNotPaid  = errors.New("installment is not paid")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrWeightLimitExceeded = errors.New("competency weights for the classroom-course pairing exceed 100")
)

// beginLocked opens a transaction whose row-lock waits are bounded by the
// given timeout. A lock held past the bound fails with lock_not_available
// (55P03) instead of queueing indefinitely.
func beginLocked(ctx context.Context, db *sqlx.DB, timeout time.Duration) (*sqlx.Tx, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	ms := timeout.Milliseconds()
	if ms <= 0 {
		ms = 3000
	}
	if _, err := tx.ExecContext(ctx, "SELECT set_config('lock_timeout', $1, true)", fmt.Sprintf("%dms", ms)); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}
	return tx, nil
}
