package models

import "time"

// SystemConfig is a generic key-value configuration row. Sensitive values
// carry an AES-256-GCM envelope (JSON) instead of the plain value.
type SystemConfig struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ConfigKey   string    `gorm:"column:config_key;type:varchar(100);not null;uniqueIndex"`
	ConfigValue string    `gorm:"column:config_value;type:text;not null"`
	DataType    string    `gorm:"column:data_type;type:varchar(30);not null;default:'string'"`
	Description *string   `gorm:"column:description;type:varchar(255)"`
	IsSensitive bool      `gorm:"column:is_sensitive;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (SystemConfig) TableName() string {
	return "system_config"
}
