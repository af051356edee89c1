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

func TestClassroomRepositoryAssignCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM classrooms WHERE id = $1 FOR UPDATE")).
		WithArgs("cls-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cls-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(weight), 0) FROM classroom_courses WHERE classroom_id = $1 AND course_id = $2")).
		WithArgs("cls-1", "crs-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(60.0))
	mock.ExpectExec("INSERT INTO classroom_courses").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.ClassroomCourse{ClassroomID: "cls-1", CourseID: "crs-1", Competency: "Comprension lectora", Weight: 40}
	err := repo.AssignCourse(context.Background(), assignment)
	require.NoError(t, err)
	require.NotEmpty(t, assignment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryAssignCourseOverWeightLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db, config.LockingConfig{Timeout: time.Second})

	expectLockedTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM classrooms WHERE id = $1 FOR UPDATE")).
		WithArgs("cls-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cls-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(weight), 0) FROM classroom_courses WHERE classroom_id = $1 AND course_id = $2")).
		WithArgs("cls-1", "crs-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(80.0))
	mock.ExpectRollback()

	err := repo.AssignCourse(context.Background(), &models.ClassroomCourse{
		ClassroomID: "cls-1", CourseID: "crs-1", Competency: "Produccion escrita", Weight: 30,
	})
	require.ErrorIs(t, err, ErrWeightLimitExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}
