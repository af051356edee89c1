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
)

type mockCourseRepo struct {
	courses  map[string]*models.Course
	assigned map[string]*string
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	return nil, 0, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]*models.Course)
	}
	course.ID = "new-course"
	course.Active = true
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) AssignTeacher(ctx context.Context, courseID string, teacherID *string) error {
	if m.assigned == nil {
		m.assigned = make(map[string]*string)
	}
	m.assigned[courseID] = teacherID
	if c, ok := m.courses[courseID]; ok {
		c.TeacherID = teacherID
	}
	return nil
}

type mockTeacherReader struct {
	teachers map[string]*models.Teacher
}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func TestCourseServiceAssignTeacher(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.Course{"c1": {ID: "c1", Code: "MAT1", Active: true}}}
	teachers := &mockTeacherReader{teachers: map[string]*models.Teacher{"t1": {ID: "t1", Active: true}}}
	svc := NewCourseService(repo, teachers, validator.New(), zap.NewNop())

	teacherID := "t1"
	result, err := svc.AssignTeacher(context.Background(), "c1", AssignTeacherRequest{TeacherID: &teacherID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, repo.assigned["c1"])
	assert.Equal(t, "t1", *repo.assigned["c1"])
}

func TestCourseServiceAssignTeacherReplacesHolder(t *testing.T) {
	prev := "t1"
	repo := &mockCourseRepo{courses: map[string]*models.Course{"c1": {ID: "c1", Code: "MAT1", TeacherID: &prev, Active: true}}}
	teachers := &mockTeacherReader{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", Active: true},
		"t2": {ID: "t2", Active: true},
	}}
	svc := NewCourseService(repo, teachers, validator.New(), zap.NewNop())

	next := "t2"
	result, err := svc.AssignTeacher(context.Background(), "c1", AssignTeacherRequest{TeacherID: &next})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "t2", *repo.courses["c1"].TeacherID)
}

func TestCourseServiceAssignInactiveTeacherRejected(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.Course{"c1": {ID: "c1", Code: "MAT1", Active: true}}}
	teachers := &mockTeacherReader{teachers: map[string]*models.Teacher{"t1": {ID: "t1", Active: false}}}
	svc := NewCourseService(repo, teachers, validator.New(), zap.NewNop())

	teacherID := "t1"
	result, err := svc.AssignTeacher(context.Background(), "c1", AssignTeacherRequest{TeacherID: &teacherID})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, repo.assigned["c1"])
}

func TestCourseServiceAssignTeacherClearsSlot(t *testing.T) {
	prev := "t1"
	repo := &mockCourseRepo{courses: map[string]*models.Course{"c1": {ID: "c1", Code: "MAT1", TeacherID: &prev, Active: true}}}
	svc := NewCourseService(repo, &mockTeacherReader{}, validator.New(), zap.NewNop())

	result, err := svc.AssignTeacher(context.Background(), "c1", AssignTeacherRequest{TeacherID: nil})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, repo.courses["c1"].TeacherID)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.Course{"c1": {ID: "c1", Code: "MAT1", Active: true}}}
	svc := NewCourseService(repo, &mockTeacherReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "MAT1", Name: "Matematica", Credits: 4, Level: "PRIMARIA"})
	require.Error(t, err)
}
