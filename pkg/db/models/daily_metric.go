package models

import "time"

// DailyMetric holds the manually entered operator counters for one calendar day.
// ChatsCount is stored as ChatsEnd - ChatsStart and may be negative.
type DailyMetric struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Date              time.Time `gorm:"column:date;type:date;not null;uniqueIndex"`
	ChatsStart        int       `gorm:"column:chats_start;not null;default:0"`
	ChatsEnd          int       `gorm:"column:chats_end;not null;default:0"`
	ChatsCount        int       `gorm:"column:chats_count;not null;default:0"`
	OrdersManualCount int       `gorm:"column:orders_manual_count;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (DailyMetric) TableName() string {
	return "daily_metrics"
}
