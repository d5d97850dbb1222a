package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
)

// Repository handles daily metric persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRange(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error)
	Upsert(ctx context.Context, metric *models.DailyMetric) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a daily metric repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindRange(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error) {
	var rows []models.DailyMetric
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, metric *models.DailyMetric) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"chats_start", "chats_end", "chats_count", "orders_manual_count", "updated_at",
			}),
		}).
		Create(metric).Error
}
