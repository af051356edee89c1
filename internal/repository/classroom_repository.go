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

// ClassroomRepository handles persistence of classrooms and their course
// assignments.
type ClassroomRepository struct {
	db      *sqlx.DB
	locking config.LockingConfig
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB, locking config.LockingConfig) *ClassroomRepository {
	return &ClassroomRepository{db: db, locking: locking}
}

// List returns classrooms matching the filter.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	base := `FROM classrooms`
	var conditions []string
	var args []interface{}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT id, site_id, level, grade, section, capacity, teacher_id, created_at, updated_at
        %s ORDER BY level, grade, section LIMIT %d OFFSET %d`, base+clause, size, (page-1)*size)

	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classrooms: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count classrooms: %w", err)
	}
	return classrooms, total, nil
}

// FindByID returns a classroom by its ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT id, site_id, level, grade, section, capacity, teacher_id, created_at, updated_at FROM classrooms WHERE id = $1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// Create persists a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	classroom.CreatedAt = now
	classroom.UpdatedAt = now
	const query = `INSERT INTO classrooms (id, site_id, level, grade, section, capacity, teacher_id, created_at, updated_at)
        VALUES (:id, :site_id, :level, :grade, :section, :capacity, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Update modifies an existing classroom.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	classroom.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET level = :level, grade = :grade, section = :section, capacity = :capacity,
        teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// ListCourses returns the course assignments of a classroom.
func (r *ClassroomRepository) ListCourses(ctx context.Context, classroomID string) ([]models.ClassroomCourse, error) {
	const query = `SELECT id, classroom_id, course_id, competency, weight, created_at
        FROM classroom_courses WHERE classroom_id = $1 ORDER BY course_id, competency`
	var assignments []models.ClassroomCourse
	if err := r.db.SelectContext(ctx, &assignments, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom courses: %w", err)
	}
	return assignments, nil
}

// AssignCourse adds a competency weighting for a classroom-course pairing,
// enforcing that the pairing's weights stay at or below 100. The classroom
// row is locked so concurrent assignments cannot jointly exceed the cap.
func (r *ClassroomRepository) AssignCourse(ctx context.Context, assignment *models.ClassroomCourse) error {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	if err := tx.GetContext(ctx, &id, `SELECT id FROM classrooms WHERE id = $1 FOR UPDATE`, assignment.ClassroomID); err != nil {
		return fmt.Errorf("lock classroom: %w", err)
	}

	var current float64
	const sumQuery = `SELECT COALESCE(SUM(weight), 0) FROM classroom_courses WHERE classroom_id = $1 AND course_id = $2`
	if err := tx.GetContext(ctx, &current, sumQuery, assignment.ClassroomID, assignment.CourseID); err != nil {
		return fmt.Errorf("sum competency weights: %w", err)
	}
	if current+assignment.Weight > 100 {
		return ErrWeightLimitExceeded
	}

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO classroom_courses (id, classroom_id, course_id, competency, weight, created_at)
        VALUES (:id, :classroom_id, :course_id, :competency, :weight, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return fmt.Errorf("insert classroom course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classroom course: %w", err)
	}
	return nil
}

// RemoveCourse deletes one course assignment.
func (r *ClassroomRepository) RemoveCourse(ctx context.Context, assignmentID string) error {
	const query = `DELETE FROM classroom_courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, assignmentID); err != nil {
		return fmt.Errorf("remove classroom course: %w", err)
	}
	return nil
}
