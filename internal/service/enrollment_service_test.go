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

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	enrollErr   error
	enrolled    *models.Enrollment
	status      map[string]models.EnrollmentStatus
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollErr != nil {
		return m.enrollErr
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	enrollment.Status = models.EnrollmentStatusActive
	m.enrollments[enrollment.ID] = *enrollment
	m.enrolled = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.EnrollmentStatus)
	}
	m.status[id] = status
	if e, ok := m.enrollments[id]; ok {
		e.Status = status
		m.enrollments[id] = e
	}
	return nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func activeStudents() *mockStudentReader {
	return &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1", Active: true}}}
}

func activeCourses() *mockCourseReader {
	return &mockCourseReader{courses: map[string]*models.Course{"c1": {ID: "c1", Active: true}}}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", SiteID: "site-1", Period: "2025-1"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, repo.enrolled)
	assert.Equal(t, models.EnrollmentStatusActive, repo.enrolled.Status)
}

func TestEnrollmentServiceEnrollDuplicateRejected(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollErr: repository.ErrDuplicateEnrollment}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", SiteID: "site-1", Period: "2025-1"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already has an active enrollment")
}

func TestEnrollmentServiceEnrollInactiveCourseRejected(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	courses := &mockCourseReader{courses: map[string]*models.Course{"c1": {ID: "c1", Active: false}}}
	svc := NewEnrollmentService(repo, activeStudents(), courses, validator.New(), zap.NewNop())

	result, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", SiteID: "site-1", Period: "2025-1"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, repo.enrolled)
}

func TestEnrollmentServiceEnrollMissingStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, &mockStudentReader{}, activeCourses(), validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "missing", CourseID: "c1", SiteID: "site-1", Period: "2025-1"})
	require.Error(t, err)
}

func TestEnrollmentServiceDeactivate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Period: "2025-1", Status: models.EnrollmentStatusActive},
	}}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), validator.New(), zap.NewNop())

	result, err := svc.Deactivate(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.EnrollmentStatusInactive, repo.status["e1"])

	result, err = svc.Deactivate(context.Background(), "e1")
	require.NoError(t, err)
	assert.False(t, result.Success)
}
