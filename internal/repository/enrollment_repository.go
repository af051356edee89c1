package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	"github.com/coronacion-creator/colegio-api/pkg/database"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db      *sqlx.DB
	locking config.LockingConfig
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB, locking config.LockingConfig) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, locking: locking}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN students s ON s.id = e.student_id
LEFT JOIN courses c ON c.id = e.course_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("e.site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("e.period = $%d", len(args)+1))
		args = append(args, filter.Period)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "s.last_name",
		"course_code":  "c.code",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "enrolled_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.course_id, e.site_id, e.period, e.enrolled_at, e.status,
        s.first_name || ' ' || s.last_name AS student_name, c.code AS course_code, c.name AS course_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, site_id, period, enrolled_at, status FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with contextual info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.site_id, e.period, e.enrolled_at, e.status,
        s.first_name || ' ' || s.last_name AS student_name, c.code AS course_code, c.name AS course_name
        FROM enrollments e
        LEFT JOIN students s ON s.id = e.student_id
        LEFT JOIN courses c ON c.id = e.course_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Enroll inserts an active enrollment after re-checking the duplicate
// invariant under a lock on the student row. Concurrent enrolls for the
// same student serialize on that lock; the partial unique index on
// (student_id, course_id, period) where status = ACTIVE is the backstop.
func (r *EnrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var studentActive bool
	const lockStudent = `SELECT active FROM students WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &studentActive, lockStudent, enrollment.StudentID); err != nil {
		return fmt.Errorf("lock student: %w", err)
	}
	if !studentActive {
		return ErrStudentInactive
	}

	var exists int
	const dupQuery = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND period = $3 AND status = $4 LIMIT 1`
	err = tx.GetContext(ctx, &exists, dupQuery, enrollment.StudentID, enrollment.CourseID, enrollment.Period, models.EnrollmentStatusActive)
	if err == nil {
		return ErrDuplicateEnrollment
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check active enrollment: %w", err)
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusActive

	const insert = `INSERT INTO enrollments (id, student_id, course_id, site_id, period, enrolled_at, status)
        VALUES (:id, :student_id, :course_id, :site_id, :period, :enrolled_at, :status)`
	if _, err := tx.NamedExecContext(ctx, insert, enrollment); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// UpdateStatus toggles an enrollment's status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}
