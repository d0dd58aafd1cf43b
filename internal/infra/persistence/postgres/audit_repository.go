package postgres

import (
	"context"

	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/repository"
	"peppers/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// auditRepository implements repository.AuditRepository using GORM.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository is the constructor for auditRepository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// Create appends a single audit entry.
func (repo *auditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	entryM := &model.AuditEntryModel{
		ActorID:  entry.ActorID,
		Action:   entry.Action,
		Detail:   entry.Detail,
		ClientIP: entry.ClientIP,
	}
	if entry.TargetID != 0 {
		entryM.TargetID = &entry.TargetID
	}

	if err := repo.db.WithContext(ctx).Create(entryM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create audit entry")
	}

	entry.ID = entryM.ID
	entry.CreatedAt = entryM.CreatedAt

	return nil
}
