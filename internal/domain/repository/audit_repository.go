package repository

import (
	"context"

	"peppers/internal/domain/entity"
)

// AuditRepository persists append-only audit entries. Writers treat failures
// as best-effort: an audit insert error never rolls back the mutation it
// describes.
type AuditRepository interface {
	// Create appends a single audit entry.
	Create(ctx context.Context, entry *entity.AuditEntry) error
}
