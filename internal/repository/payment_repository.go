package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

// PaymentRepository persists payment plans, installments and the per-student
// debt ledger.
type PaymentRepository struct {
	db      *sqlx.DB
	locking config.LockingConfig
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB, locking config.LockingConfig) *PaymentRepository {
	return &PaymentRepository{db: db, locking: locking}
}

// ListPlans returns payment plans for a cycle, optionally scoped to a level.
func (r *PaymentRepository) ListPlans(ctx context.Context, cycle, level string) ([]models.PaymentPlan, error) {
	query := `SELECT id, cycle, level, total, paid, remaining, created_at, updated_at FROM payment_plans WHERE 1=1`
	var args []interface{}
	if cycle != "" {
		query += fmt.Sprintf(" AND cycle = $%d", len(args)+1)
		args = append(args, cycle)
	}
	if level != "" {
		query += fmt.Sprintf(" AND level = $%d", len(args)+1)
		args = append(args, level)
	}
	query += " ORDER BY cycle DESC, level ASC"
	var plans []models.PaymentPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list payment plans: %w", err)
	}
	return plans, nil
}

// FindPlanByID returns one payment plan.
func (r *PaymentRepository) FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error) {
	const query = `SELECT id, cycle, level, total, paid, remaining, created_at, updated_at FROM payment_plans WHERE id = $1`
	var plan models.PaymentPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePlan persists a new payment plan; totals start at zero and are
// derived from installments as they are added.
func (r *PaymentRepository) CreatePlan(ctx context.Context, plan *models.PaymentPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	const query = `INSERT INTO payment_plans (id, cycle, level, total, paid, remaining, created_at, updated_at)
        VALUES (:id, :cycle, :level, 0, 0, 0, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create payment plan: %w", err)
	}
	return nil
}

// ListInstallments returns installments matching the filter.
func (r *PaymentRepository) ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.Installment, error) {
	query := `SELECT id, plan_id, student_id, number, concept, amount, due_date, status, method, paid_at, created_at
        FROM installments WHERE 1=1`
	var conditions []string
	var args []interface{}
	if filter.PlanID != "" {
		conditions = append(conditions, fmt.Sprintf("plan_id = $%d", len(args)+1))
		args = append(args, filter.PlanID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY number ASC"
	var installments []models.Installment
	if err := r.db.SelectContext(ctx, &installments, query, args...); err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return installments, nil
}

// FindInstallmentByID returns one installment.
func (r *PaymentRepository) FindInstallmentByID(ctx context.Context, id string) (*models.Installment, error) {
	const query = `SELECT id, plan_id, student_id, number, concept, amount, due_date, status, method, paid_at, created_at
        FROM installments WHERE id = $1`
	var installment models.Installment
	if err := r.db.GetContext(ctx, &installment, query, id); err != nil {
		return nil, err
	}
	return &installment, nil
}

// CreateInstallment inserts an installment and refreshes the owning plan's
// totals and the student's ledger in one transaction: the plan total is the
// sum of its installment amounts.
func (r *PaymentRepository) CreateInstallment(ctx context.Context, installment *models.Installment) error {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockPlan(ctx, tx, installment.PlanID); err != nil {
		return err
	}

	if installment.ID == "" {
		installment.ID = uuid.NewString()
	}
	if installment.Status == "" {
		installment.Status = models.InstallmentStatusPending
	}
	if installment.CreatedAt.IsZero() {
		installment.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO installments (id, plan_id, student_id, number, concept, amount, due_date, status, created_at)
        VALUES (:id, :plan_id, :student_id, :number, :concept, :amount, :due_date, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, installment); err != nil {
		return fmt.Errorf("insert installment: %w", err)
	}

	if err := refreshPlanTotals(ctx, tx, installment.PlanID); err != nil {
		return err
	}
	if err := refreshStudentDebt(ctx, tx, installment.StudentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit installment: %w", err)
	}
	return nil
}

// Pay marks an installment paid and refreshes the plan totals and the
// student's debt ledger atomically. The installment row is locked first, so
// a concurrent payment of the same installment observes status PAID and is
// rejected; debt updates for the same student serialize on the ledger row.
func (r *PaymentRepository) Pay(ctx context.Context, installmentID, method string) (*models.PaymentReceipt, error) {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	installment, err := lockInstallment(ctx, tx, installmentID)
	if err != nil {
		return nil, err
	}
	if installment.Status == models.InstallmentStatusPaid {
		return nil, ErrInstallmentPaid
	}

	now := time.Now().UTC()
	const markPaid = `UPDATE installments SET status = $2, method = $3, paid_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, markPaid, installment.ID, models.InstallmentStatusPaid, method, now); err != nil {
		return nil, fmt.Errorf("mark installment paid: %w", err)
	}

	if err := lockPlan(ctx, tx, installment.PlanID); err != nil {
		return nil, err
	}
	if err := refreshPlanTotals(ctx, tx, installment.PlanID); err != nil {
		return nil, err
	}
	if err := refreshStudentDebt(ctx, tx, installment.StudentID); err != nil {
		return nil, err
	}

	receipt, err := buildReceipt(ctx, tx, installment)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}
	return receipt, nil
}

// Reverse reverts a paid installment to pending (or overdue when past due)
// and restores plan and ledger totals. Reversing an installment that is not
// paid is rejected as an invalid state.
func (r *PaymentRepository) Reverse(ctx context.Context, installmentID string) (*models.PaymentReceipt, error) {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	installment, err := lockInstallment(ctx, tx, installmentID)
	if err != nil {
		return nil, err
	}
	if installment.Status != models.InstallmentStatusPaid {
		return nil, ErrInstallmentNotPaid
	}

	restored := models.InstallmentStatusPending
	if installment.DueDate.Before(time.Now().UTC()) {
		restored = models.InstallmentStatusOverdue
	}
	const revert = `UPDATE installments SET status = $2, method = NULL, paid_at = NULL WHERE id = $1`
	if _, err := tx.ExecContext(ctx, revert, installment.ID, restored); err != nil {
		return nil, fmt.Errorf("revert installment: %w", err)
	}

	if err := lockPlan(ctx, tx, installment.PlanID); err != nil {
		return nil, err
	}
	if err := refreshPlanTotals(ctx, tx, installment.PlanID); err != nil {
		return nil, err
	}
	if err := refreshStudentDebt(ctx, tx, installment.StudentID); err != nil {
		return nil, err
	}

	receipt, err := buildReceipt(ctx, tx, installment)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reversal: %w", err)
	}
	return receipt, nil
}

// GetStudentDebt returns the ledger row for a student, if any.
func (r *PaymentRepository) GetStudentDebt(ctx context.Context, studentID string) (*models.StudentDebt, error) {
	const query = `SELECT id, student_id, total_debt, pending_debt, updated_at FROM student_debts WHERE student_id = $1`
	var debt models.StudentDebt
	if err := r.db.GetContext(ctx, &debt, query, studentID); err != nil {
		return nil, err
	}
	return &debt, nil
}

// MarkOverdue flags pending installments past their due date. Called from
// the maintenance endpoint; purely a status sweep, no derived totals move.
func (r *PaymentRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	const query = `UPDATE installments SET status = $1 WHERE status = $2 AND due_date < $3`
	res, err := r.db.ExecContext(ctx, query, models.InstallmentStatusOverdue, models.InstallmentStatusPending, asOf)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return res.RowsAffected()
}

func lockInstallment(ctx context.Context, tx *sqlx.Tx, id string) (*models.Installment, error) {
	const query = `SELECT id, plan_id, student_id, number, concept, amount, due_date, status, method, paid_at, created_at
        FROM installments WHERE id = $1 FOR UPDATE`
	var installment models.Installment
	if err := tx.GetContext(ctx, &installment, query, id); err != nil {
		return nil, err
	}
	return &installment, nil
}

func lockPlan(ctx context.Context, tx *sqlx.Tx, planID string) error {
	var id string
	const query = `SELECT id FROM payment_plans WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &id, query, planID); err != nil {
		return fmt.Errorf("lock payment plan: %w", err)
	}
	return nil
}

// refreshPlanTotals recomputes total/paid/remaining from the installment
// rows. Derived state is always recomputed from source, never incremented,
// so a prior inconsistency cannot survive a refresh.
func refreshPlanTotals(ctx context.Context, tx *sqlx.Tx, planID string) error {
	const query = `UPDATE payment_plans p SET
        total = s.total,
        paid = s.paid,
        remaining = s.total - s.paid,
        updated_at = $2
        FROM (
            SELECT COALESCE(SUM(amount), 0) AS total,
                   COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0) AS paid
            FROM installments WHERE plan_id = $1
        ) s
        WHERE p.id = $1`
	if _, err := tx.ExecContext(ctx, query, planID, time.Now().UTC()); err != nil {
		return fmt.Errorf("refresh plan totals: %w", err)
	}
	return nil
}

// refreshStudentDebt upserts and locks the student's ledger row, then
// recomputes total and pending debt from the student's installments.
func refreshStudentDebt(ctx context.Context, tx *sqlx.Tx, studentID string) error {
	now := time.Now().UTC()
	const seed = `INSERT INTO student_debts (id, student_id, total_debt, pending_debt, updated_at)
        VALUES ($1, $2, 0, 0, $3)
        ON CONFLICT (student_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, seed, uuid.NewString(), studentID, now); err != nil {
		return fmt.Errorf("seed student debt: %w", err)
	}

	var ledgerID string
	const lock = `SELECT id FROM student_debts WHERE student_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &ledgerID, lock, studentID); err != nil {
		return fmt.Errorf("lock student debt: %w", err)
	}

	const update = `UPDATE student_debts d SET
        total_debt = s.total,
        pending_debt = s.pending,
        updated_at = $2
        FROM (
            SELECT COALESCE(SUM(amount), 0) AS total,
                   COALESCE(SUM(amount) FILTER (WHERE status <> 'PAID'), 0) AS pending
            FROM installments WHERE student_id = $1
        ) s
        WHERE d.student_id = $1`
	if _, err := tx.ExecContext(ctx, update, studentID, now); err != nil {
		return fmt.Errorf("refresh student debt: %w", err)
	}
	return nil
}

func buildReceipt(ctx context.Context, tx *sqlx.Tx, installment *models.Installment) (*models.PaymentReceipt, error) {
	receipt := &models.PaymentReceipt{InstallmentID: installment.ID, Amount: installment.Amount}

	const planQuery = `SELECT paid, remaining FROM payment_plans WHERE id = $1`
	var plan struct {
		Paid      float64 `db:"paid"`
		Remaining float64 `db:"remaining"`
	}
	if err := tx.GetContext(ctx, &plan, planQuery, installment.PlanID); err != nil {
		return nil, fmt.Errorf("read plan totals: %w", err)
	}
	receipt.PlanPaid = plan.Paid
	receipt.PlanRemaining = plan.Remaining

	const debtQuery = `SELECT pending_debt FROM student_debts WHERE student_id = $1`
	if err := tx.GetContext(ctx, &receipt.PendingDebt, debtQuery, installment.StudentID); err != nil {
		return nil, fmt.Errorf("read student debt: %w", err)
	}
	return receipt, nil
}
