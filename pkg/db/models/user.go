package models

import (
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string         `gorm:"column:username;type:varchar(100);not null;uniqueIndex"`
	Email        *string        `gorm:"column:email;type:varchar(255)"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(255);not null"`
	FullName     string         `gorm:"column:full_name;type:varchar(255);not null"`
	Role         enums.UserRole `gorm:"column:role;type:varchar(30);not null"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (User) TableName() string {
	return "users"
}
