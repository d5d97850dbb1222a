package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
)

// Order represents one customer purchase flowing from quotation to delivery.
//
// AssignedMessengerID is the canonical delivery-agent reference. The legacy
// assigned_messenger / assigned_to columns remain in the schema only so the
// reconciliation maintenance operation can repair historical drift; runtime
// writes touch the canonical column exclusively.
type Order struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNumber  string `gorm:"column:order_number;type:varchar(50);not null;uniqueIndex"`
	CustomerName string `gorm:"column:customer_name;type:varchar(255);not null"`

	Status         enums.OrderStatus    `gorm:"column:status;type:varchar(50);not null;default:'pendiente_por_facturacion';index"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;type:varchar(30);not null;default:'efectivo'"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:varchar(30);not null;default:'recoge_bodega'"`

	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null;default:0"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:decimal(12,2);not null;default:0"`

	ProductEvidencePhoto *string `gorm:"column:product_evidence_photo;type:varchar(500)"`
	PaymentEvidencePhoto *string `gorm:"column:payment_evidence_photo;type:varchar(500)"`
	CashEvidencePhoto    *string `gorm:"column:cash_evidence_photo;type:varchar(500)"`

	DeliveredAt            *time.Time `gorm:"column:delivered_at"`
	DeliveredBy            *uint64    `gorm:"column:delivered_by"`
	SubmittedForApprovalAt *time.Time `gorm:"column:submitted_for_approval_at"`
	ApprovedBy             *uint64    `gorm:"column:approved_by"`
	ApprovedAt             *time.Time `gorm:"column:approved_at"`

	AssignedMessengerID *uint64 `gorm:"column:assigned_messenger_id;index"`
	// Legacy aliases of AssignedMessengerID, maintenance-only.
	LegacyAssignedMessenger *string `gorm:"column:assigned_messenger;type:varchar(50)"`
	LegacyAssignedTo        *uint64 `gorm:"column:assigned_to"`

	MessengerStatus  enums.MessengerStatus `gorm:"column:messenger_status;type:varchar(30);not null;default:'pending_assignment'"`
	DeliveryAttempts int                   `gorm:"column:delivery_attempts;not null;default:0"`

	CarrierID *uint64  `gorm:"column:carrier_id"`
	Carrier   *Carrier `gorm:"foreignKey:CarrierID"`

	CreatedBy *uint64   `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (Order) TableName() string {
	return "orders"
}
