package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	ListCourses(ctx context.Context, classroomID string) ([]models.ClassroomCourse, error)
	AssignCourse(ctx context.Context, assignment *models.ClassroomCourse) error
	RemoveCourse(ctx context.Context, assignmentID string) error
}

// CreateClassroomRequest describes a new classroom section.
type CreateClassroomRequest struct {
	SiteID    string  `json:"site_id" validate:"required"`
	Level     string  `json:"level" validate:"required"`
	Grade     string  `json:"grade" validate:"required"`
	Section   string  `json:"section" validate:"required"`
	Capacity  int     `json:"capacity" validate:"gt=0"`
	TeacherID *string `json:"teacher_id"`
}

// AssignCourseRequest adds a competency weighting to a classroom-course
// pairing.
type AssignCourseRequest struct {
	CourseID   string  `json:"course_id" validate:"required"`
	Competency string  `json:"competency" validate:"required"`
	Weight     float64 `json:"weight" validate:"gt=0,lte=100"`
}

// ClassroomService manages classroom sections and their course weightings.
type ClassroomService struct {
	repo      classroomRepository
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs ClassroomService.
func NewClassroomService(repo classroomRepository, courses courseReader, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns classrooms with pagination metadata.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return classrooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one classroom.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Create registers a new classroom section.
func (s *ClassroomService) Create(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	classroom := &models.Classroom{
		SiteID:    req.SiteID,
		Level:     req.Level,
		Grade:     req.Grade,
		Section:   req.Section,
		Capacity:  req.Capacity,
		TeacherID: req.TeacherID,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	return classroom, nil
}

// ListCourses returns a classroom's course assignments.
func (s *ClassroomService) ListCourses(ctx context.Context, classroomID string) ([]models.ClassroomCourse, error) {
	assignments, err := s.repo.ListCourses(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classroom courses")
	}
	return assignments, nil
}

// AssignCourse adds a competency weighting. The weights of one
// classroom-course pairing may never sum past 100; exceeding the cap is a
// rejection result.
func (s *ClassroomService) AssignCourse(ctx context.Context, classroomID string, req AssignCourseRequest) (*models.OperationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.repo.FindByID(ctx, classroomID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	assignment := &models.ClassroomCourse{
		ClassroomID: classroomID,
		CourseID:    req.CourseID,
		Competency:  req.Competency,
		Weight:      req.Weight,
	}
	if err := s.repo.AssignCourse(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrWeightLimitExceeded) {
			return models.Rejected("competency weights for this course exceed 100"), nil
		}
		return nil, opError(err, "failed to assign course")
	}
	s.logger.Info("course assigned to classroom",
		zap.String("classroom_id", classroomID),
		zap.String("course_id", req.CourseID),
		zap.Float64("weight", req.Weight))
	return models.Accepted("course assigned", assignment), nil
}

// RemoveCourse deletes one course assignment.
func (s *ClassroomService) RemoveCourse(ctx context.Context, assignmentID string) error {
	if err := s.repo.RemoveCourse(ctx, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove classroom course")
	}
	return nil
}
