package carriers

import (
	"context"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
)

// Repository handles carrier persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, carrier *models.Carrier) error
	Update(ctx context.Context, carrier *models.Carrier) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*models.Carrier, error)
	FindByName(ctx context.Context, name string) (*models.Carrier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Carrier, error)
	CountOrders(ctx context.Context, carrierID uint64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a carrier repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, carrier *models.Carrier) error {
	return r.db.WithContext(ctx).Create(carrier).Error
}

func (r *repository) Update(ctx context.Context, carrier *models.Carrier) error {
	return r.db.WithContext(ctx).Save(carrier).Error
}

func (r *repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Carrier{}, id).Error
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*models.Carrier, error) {
	var carrier models.Carrier
	if err := r.db.WithContext(ctx).First(&carrier, id).Error; err != nil {
		return nil, err
	}
	return &carrier, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Carrier, error) {
	var carrier models.Carrier
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&carrier).Error; err != nil {
		return nil, err
	}
	return &carrier, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Carrier, error) {
	q := r.db.WithContext(ctx).Model(&models.Carrier{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rows []models.Carrier
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountOrders(ctx context.Context, carrierID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("carrier_id = ?", carrierID).
		Count(&count).Error
	return count, err
}
