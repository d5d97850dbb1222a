package models

import "time"

// Carrier is a parcel-company lookup row used for display grouping.
type Carrier struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	Email     *string   `gorm:"column:email;type:varchar(255)"`
	Phone     *string   `gorm:"column:phone;type:varchar(50)"`
	Website   *string   `gorm:"column:website;type:varchar(255)"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (Carrier) TableName() string {
	return "carriers"
}
