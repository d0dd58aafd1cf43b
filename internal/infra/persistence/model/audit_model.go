package model

import "time"

// AuditEntryModel mirrors the append-only 'audit_entries' table.
type AuditEntryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ActorID   int64  `gorm:"not null;index"`
	TargetID  *int64 `gorm:"index"`
	Action    string `gorm:"type:varchar(64);not null"`
	Detail    string `gorm:"type:varchar(500)"`
	ClientIP  string `gorm:"type:varchar(64)"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
