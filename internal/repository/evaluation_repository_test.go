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

func TestEvaluationRepositoryRecordPassing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectExec("INSERT INTO academic_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, enrollment_id, average, state, updated_at FROM academic_status WHERE enrollment_id = $1 FOR UPDATE")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "average", "state", "updated_at"}).
			AddRow("as-1", "enr-1", 0.0, models.AcademicStatusFailing, time.Now()))
	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(score * weight) / NULLIF(SUM(weight), 0), 0) FROM evaluations WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(14.5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_status SET average = $2, state = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("as-1", 14.5, models.AcademicStatusPassing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	eval := &models.Evaluation{EnrollmentID: "enr-1", Type: "EXAM", Score: 14.5, Weight: 2, EvaluatedAt: time.Now()}
	status, err := repo.Record(context.Background(), eval, 10.5)
	require.NoError(t, err)
	require.Equal(t, 14.5, status.Average)
	require.Equal(t, models.AcademicStatusPassing, status.State)
	require.NotEmpty(t, eval.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryRecordFailingState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectExec("INSERT INTO academic_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, enrollment_id, average, state, updated_at FROM academic_status WHERE enrollment_id = $1 FOR UPDATE")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "average", "state", "updated_at"}).
			AddRow("as-1", "enr-1", 12.0, models.AcademicStatusPassing, time.Now()))
	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(score * weight) / NULLIF(SUM(weight), 0), 0) FROM evaluations WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8.25))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_status SET average = $2, state = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("as-1", 8.25, models.AcademicStatusFailing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	eval := &models.Evaluation{EnrollmentID: "enr-1", Type: "HOMEWORK", Score: 4, Weight: 1, EvaluatedAt: time.Now()}
	status, err := repo.Record(context.Background(), eval, 10.5)
	require.NoError(t, err)
	require.Equal(t, models.AcademicStatusFailing, status.State)
	require.NoError(t, mock.ExpectationsWereMet())
}
