package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coronacion-creator/colegio-api/internal/models"
)

// AuditRepository appends and reads activity records.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one activity record. Append-only: no update or delete path
// exists for audit rows.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, actor, action, module, description, success, metadata, created_at)
        VALUES (:id, :actor, :action, :module, :description, :success, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// List returns activity records filtered by module and actor, newest first.
func (r *AuditRepository) List(ctx context.Context, module, actor string, limit int) ([]models.AuditLog, error) {
	query := `SELECT id, actor, action, module, description, success, metadata, created_at FROM audit_logs WHERE 1=1`
	var conditions []string
	var args []interface{}
	if module != "" {
		conditions = append(conditions, fmt.Sprintf("module = $%d", len(args)+1))
		args = append(args, module)
	}
	if actor != "" {
		conditions = append(conditions, fmt.Sprintf("actor = $%d", len(args)+1))
		args = append(args, actor)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
