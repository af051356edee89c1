package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
)

type mockClassroomRepo struct {
	classrooms  map[string]*models.Classroom
	assignments []models.ClassroomCourse
}

func (m *mockClassroomRepo) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	return nil, 0, nil
}

func (m *mockClassroomRepo) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassroomRepo) Create(ctx context.Context, classroom *models.Classroom) error {
	if m.classrooms == nil {
		m.classrooms = make(map[string]*models.Classroom)
	}
	classroom.ID = "new-classroom"
	m.classrooms[classroom.ID] = classroom
	return nil
}

func (m *mockClassroomRepo) Update(ctx context.Context, classroom *models.Classroom) error {
	m.classrooms[classroom.ID] = classroom
	return nil
}

func (m *mockClassroomRepo) ListCourses(ctx context.Context, classroomID string) ([]models.ClassroomCourse, error) {
	return m.assignments, nil
}

func (m *mockClassroomRepo) AssignCourse(ctx context.Context, assignment *models.ClassroomCourse) error {
	var current float64
	for _, a := range m.assignments {
		if a.ClassroomID == assignment.ClassroomID && a.CourseID == assignment.CourseID {
			current += a.Weight
		}
	}
	if current+assignment.Weight > 100 {
		return repository.ErrWeightLimitExceeded
	}
	assignment.ID = "new-assignment"
	m.assignments = append(m.assignments, *assignment)
	return nil
}

func (m *mockClassroomRepo) RemoveCourse(ctx context.Context, assignmentID string) error {
	return nil
}

func classroomFixture() *mockClassroomRepo {
	return &mockClassroomRepo{classrooms: map[string]*models.Classroom{
		"cls-1": {ID: "cls-1", SiteID: "site-1", Level: "PRIMARIA", Grade: "3", Section: "A", Capacity: 30},
	}}
}

func TestClassroomServiceAssignCourse(t *testing.T) {
	repo := classroomFixture()
	svc := NewClassroomService(repo, activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.AssignCourse(context.Background(), "cls-1", AssignCourseRequest{CourseID: "c1", Competency: "Comprension lectora", Weight: 60})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, repo.assignments, 1)
}

func TestClassroomServiceAssignCourseWeightCapRejected(t *testing.T) {
	repo := classroomFixture()
	repo.assignments = []models.ClassroomCourse{
		{ClassroomID: "cls-1", CourseID: "c1", Competency: "Comprension lectora", Weight: 60},
		{ClassroomID: "cls-1", CourseID: "c1", Competency: "Produccion escrita", Weight: 30},
	}
	svc := NewClassroomService(repo, activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.AssignCourse(context.Background(), "cls-1", AssignCourseRequest{CourseID: "c1", Competency: "Expresion oral", Weight: 20})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, repo.assignments, 2)
}

func TestClassroomServiceAssignCourseExactCapAccepted(t *testing.T) {
	repo := classroomFixture()
	repo.assignments = []models.ClassroomCourse{
		{ClassroomID: "cls-1", CourseID: "c1", Competency: "Comprension lectora", Weight: 60},
	}
	svc := NewClassroomService(repo, activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.AssignCourse(context.Background(), "cls-1", AssignCourseRequest{CourseID: "c1", Competency: "Produccion escrita", Weight: 40})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, repo.assignments, 2)
}

func TestClassroomServiceAssignCourseInvalidWeight(t *testing.T) {
	repo := classroomFixture()
	svc := NewClassroomService(repo, activeCourses(), validator.New(), zap.NewNop())

	_, err := svc.AssignCourse(context.Background(), "cls-1", AssignCourseRequest{CourseID: "c1", Competency: "Comprension lectora", Weight: 120})
	require.Error(t, err)
	assert.Empty(t, repo.assignments)
}
