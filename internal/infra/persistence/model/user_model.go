// Package model defines the GORM persistence models.
package model

import "time"

// UserModel mirrors the 'users' table. Phone, email and firebase_uid are
// nullable and unique: the database constraint is the authoritative guard
// against duplicate identities under concurrent creation.
type UserModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Phone        *string `gorm:"type:varchar(32);uniqueIndex"`
	PasswordHash string  `gorm:"type:varchar(128)"`
	FirebaseUID  *string `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex"`
	Email        *string `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName  string  `gorm:"type:varchar(100)"`
	Role         string  `gorm:"type:varchar(16);not null;default:customer"`
	Active       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time

	ResetCodeHash      string `gorm:"type:varchar(128)"`
	ResetCodeExpiresAt *time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
