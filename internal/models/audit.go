package models

import "time"

// Audit modules mirror the operation groups that emit activity records.
const (
	AuditModuleEnrollments = "ENROLLMENTS"
	AuditModuleEvaluations = "EVALUATIONS"
	AuditModulePayments    = "PAYMENTS"
	AuditModuleInventory   = "INVENTORY"
	AuditModuleCourses     = "COURSES"
	AuditModuleAuth        = "AUTH"
)

// AuditLog is one append-only activity record. Delivery is best-effort
// asynchronous; a failed write never rolls back the business transaction.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	Actor       *string   `db:"actor" json:"actor,omitempty"`
	Action      string    `db:"action" json:"action"`
	Module      string    `db:"module" json:"module"`
	Description string    `db:"description" json:"description"`
	Success     bool      `db:"success" json:"success"`
	Metadata    []byte    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
