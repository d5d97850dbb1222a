package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/pagination"
)

// Repository handles order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint64) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, error)
	CountByStatus(ctx context.Context, status enums.OrderStatus) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) ([]DayCount, error)

	// DeliverWithEvidence applies the POS evidence flow as one conditional
	// update. Returns the rows affected so callers can detect guard misses.
	DeliverWithEvidence(ctx context.Context, params DeliverParams) (int64, error)
	// ResolveTransferReview settles a revision_cartera order. The target
	// status is computed by the caller; the guard keeps listo_para_entrega
	// and later statuses untouched.
	ResolveTransferReview(ctx context.Context, params ResolveParams) (int64, error)
}

// ListQuery configures order list queries.
type ListQuery struct {
	Statuses        []enums.OrderStatus
	PaymentMethods  []enums.PaymentMethod
	MessengerID     *uint64
	MessengerStatus *enums.MessengerStatus
	Pagination      pagination.Params
}

// DeliverParams feeds the POS evidence conditional update.
type DeliverParams struct {
	OrderID              uint64
	ToStatus             enums.OrderStatus
	ProductEvidencePhoto string
	PaymentEvidencePhoto *string
	CashEvidencePhoto    *string
	ActorID              uint64
	Now                  time.Time
}

// ResolveParams feeds the transfer approval/rejection conditional update.
type ResolveParams struct {
	OrderID  uint64
	ToStatus enums.OrderStatus
	ActorID  uint64
	Now      time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Carrier").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if len(query.Statuses) > 0 {
		q = q.Where("status IN ?", query.Statuses)
	}
	if len(query.PaymentMethods) > 0 {
		q = q.Where("payment_method IN ?", query.PaymentMethods)
	}
	if query.MessengerID != nil {
		q = q.Where("assigned_messenger_id = ?", *query.MessengerID)
	}
	if query.MessengerStatus != nil {
		q = q.Where("messenger_status = ?", *query.MessengerStatus)
	}

	limit := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context, status enums.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// DayCount is one day's order total for the metrics walk.
type DayCount struct {
	Day   string
	Total int
}

func (r *repository) CountCreatedBetween(ctx context.Context, from, to time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("DATE(created_at) AS day, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeliverWithEvidence(ctx context.Context, params DeliverParams) (int64, error) {
	assignments := map[string]any{
		"status":                 params.ToStatus,
		"product_evidence_photo": params.ProductEvidencePhoto,
		"updated_at":             params.Now,
	}
	if params.PaymentEvidencePhoto != nil {
		assignments["payment_evidence_photo"] = *params.PaymentEvidencePhoto
	}
	if params.CashEvidencePhoto != nil {
		assignments["cash_evidence_photo"] = *params.CashEvidencePhoto
	}
	switch params.ToStatus {
	case enums.OrderStatusEntregado:
		assignments["delivered_at"] = params.Now
		assignments["delivered_by"] = params.ActorID
		assignments["messenger_status"] = enums.MessengerStatusDelivered
	case enums.OrderStatusRevisionCartera:
		assignments["submitted_for_approval_at"] = params.Now
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", params.OrderID, enums.OrderStatusListoParaEntrega).
		Updates(assignments)
	return res.RowsAffected, res.Error
}

func (r *repository) ResolveTransferReview(ctx context.Context, params ResolveParams) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", params.OrderID, enums.OrderStatusRevisionCartera).
		Updates(map[string]any{
			"status":      params.ToStatus,
			"approved_by": params.ActorID,
			"approved_at": params.Now,
			"updated_at":  params.Now,
		})
	return res.RowsAffected, res.Error
}
