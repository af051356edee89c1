package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

func installmentRows(status models.InstallmentStatus, dueDate time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "plan_id", "student_id", "number", "concept", "amount", "due_date", "status", "method", "paid_at", "created_at",
	}).AddRow("inst-1", "plan-1", "stu-1", 3, "Pension Marzo", 350.0, dueDate, status, nil, nil, time.Now())
}

func expectDerivedRefresh(mock sqlmock.Sqlmock) {
	mock.ExpectExec("UPDATE payment_plans p SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_debts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM student_debts WHERE student_id = $1 FOR UPDATE")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("debt-1"))
	mock.ExpectExec("UPDATE student_debts d SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestPaymentRepositoryPay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery("SELECT id, plan_id, student_id, number, concept, amount, due_date, status, method, paid_at, created_at\\s+FROM installments WHERE id = \\$1 FOR UPDATE").
		WithArgs("inst-1").
		WillReturnRows(installmentRows(models.InstallmentStatusPending, time.Now().Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE installments SET status = $2, method = $3, paid_at = $4 WHERE id = $1")).
		WithArgs("inst-1", models.InstallmentStatusPaid, "CASH", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM payment_plans WHERE id = $1 FOR UPDATE")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("plan-1"))
	expectDerivedRefresh(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT paid, remaining FROM payment_plans WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"paid", "remaining"}).AddRow(700.0, 2800.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pending_debt FROM student_debts WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"pending_debt"}).AddRow(1050.0))
	mock.ExpectCommit()

	receipt, err := repo.Pay(context.Background(), "inst-1", "CASH")
	require.NoError(t, err)
	require.Equal(t, "inst-1", receipt.InstallmentID)
	require.Equal(t, 350.0, receipt.Amount)
	require.Equal(t, 700.0, receipt.PlanPaid)
	require.Equal(t, 2800.0, receipt.PlanRemaining)
	require.Equal(t, 1050.0, receipt.PendingDebt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryPayAlreadyPaid(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery("FROM installments WHERE id = \\$1 FOR UPDATE").
		WithArgs("inst-1").
		WillReturnRows(installmentRows(models.InstallmentStatusPaid, time.Now()))
	mock.ExpectRollback()

	receipt, err := repo.Pay(context.Background(), "inst-1", "CASH")
	require.ErrorIs(t, err, ErrInstallmentPaid)
	require.Nil(t, receipt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryReverse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery("FROM installments WHERE id = \\$1 FOR UPDATE").
		WithArgs("inst-1").
		WillReturnRows(installmentRows(models.InstallmentStatusPaid, time.Now().Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE installments SET status = $2, method = NULL, paid_at = NULL WHERE id = $1")).
		WithArgs("inst-1", models.InstallmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM payment_plans WHERE id = $1 FOR UPDATE")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("plan-1"))
	expectDerivedRefresh(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT paid, remaining FROM payment_plans WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"paid", "remaining"}).AddRow(350.0, 3150.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pending_debt FROM student_debts WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"pending_debt"}).AddRow(1400.0))
	mock.ExpectCommit()

	receipt, err := repo.Reverse(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Equal(t, 1400.0, receipt.PendingDebt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryReversePastDueRestoresOverdue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery("FROM installments WHERE id = \\$1 FOR UPDATE").
		WithArgs("inst-1").
		WillReturnRows(installmentRows(models.InstallmentStatusPaid, time.Now().Add(-48*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE installments SET status = $2, method = NULL, paid_at = NULL WHERE id = $1")).
		WithArgs("inst-1", models.InstallmentStatusOverdue).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM payment_plans WHERE id = $1 FOR UPDATE")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("plan-1"))
	expectDerivedRefresh(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT paid, remaining FROM payment_plans WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"paid", "remaining"}).AddRow(0.0, 3500.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pending_debt FROM student_debts WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"pending_debt"}).AddRow(1750.0))
	mock.ExpectCommit()

	_, err := repo.Reverse(context.Background(), "inst-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryReverseNotPaid(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery("FROM installments WHERE id = \\$1 FOR UPDATE").
		WithArgs("inst-1").
		WillReturnRows(installmentRows(models.InstallmentStatusPending, time.Now()))
	mock.ExpectRollback()

	receipt, err := repo.Reverse(context.Background(), "inst-1")
	require.ErrorIs(t, err, ErrInstallmentNotPaid)
	require.Nil(t, receipt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryMarkOverdue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db, config.LockingConfig{Timeout: time.Second})

	asOf := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE installments SET status = $1 WHERE status = $2 AND due_date < $3")).
		WithArgs(models.InstallmentStatusOverdue, models.InstallmentStatusPending, asOf).
		WillReturnResult(sqlmock.NewResult(0, 4))

	updated, err := repo.MarkOverdue(context.Background(), asOf)
	require.NoError(t, err)
	require.EqualValues(t, 4, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}
