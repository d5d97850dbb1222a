package pos

import (
	"mime/multipart"
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
)

// UploadEvidenceInput carries the multipart POS submission.
type UploadEvidenceInput struct {
	OrderID      uint64
	ActorID      uint64
	ProductPhoto *multipart.FileHeader
	PaymentPhoto *multipart.FileHeader
	CashPhoto    *multipart.FileHeader
}

// UploadEvidenceResult reports where the order landed.
type UploadEvidenceResult struct {
	OrderID       uint64              `json:"order_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
}

// TransferResolution reports the outcome of an approve/reject call.
type TransferResolution struct {
	OrderID uint64            `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}
