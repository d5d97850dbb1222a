package pos

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"time"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// ImageSaver persists evidence uploads.
type ImageSaver interface {
	SaveImage(header *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// ServiceParams groups dependencies for the POS service.
type ServiceParams struct {
	Orders orders.Repository
	Saver  ImageSaver
	Logger *logger.Logger
	Now    func() time.Time
}

// Service handles the point-of-sale evidence flow and the transfer
// approval gate.
type Service struct {
	orders orders.Repository
	saver  ImageSaver
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds a POS service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, stderrors.New("orders repo is required")
	}
	if params.Saver == nil {
		return nil, stderrors.New("saver is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{orders: params.Orders, saver: params.Saver, logger: params.Logger, now: now}, nil
}

// UploadEvidenceAndDeliver stores the POS evidence photos and moves the
// order in one guarded update. Cash and credit orders are delivered on the
// spot; transfer and mixed payments queue for cartera review.
func (s *Service) UploadEvidenceAndDeliver(ctx context.Context, input UploadEvidenceInput) (*UploadEvidenceResult, error) {
	order, err := s.findOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if input.ProductPhoto == nil {
		return nil, errors.New(errors.CodeValidation, "product_photo is required")
	}
	if order.PaymentMethod.RequiresTransferEvidence() && input.PaymentPhoto == nil {
		return nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("payment_evidence is required for %s orders", order.PaymentMethod))
	}
	if order.Status != enums.OrderStatusListoParaEntrega {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, expected %s", order.ID, order.Status, enums.OrderStatusListoParaEntrega))
	}

	target := enums.OrderStatusEntregado
	if order.PaymentMethod.RequiresTransferEvidence() {
		target = enums.OrderStatusRevisionCartera
	}

	productPath, err := s.saver.SaveImage(input.ProductPhoto)
	if err != nil {
		return nil, err
	}
	saved := []string{productPath}
	cleanup := func() {
		for _, name := range saved {
			_ = s.saver.Remove(name)
		}
	}

	var paymentPath, cashPath *string
	if input.PaymentPhoto != nil {
		path, err := s.saver.SaveImage(input.PaymentPhoto)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, path)
		paymentPath = &path
	}
	if input.CashPhoto != nil {
		path, err := s.saver.SaveImage(input.CashPhoto)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, path)
		cashPath = &path
	}

	now := s.now()
	affected, err := s.orders.DeliverWithEvidence(ctx, orders.DeliverParams{
		OrderID:              order.ID,
		ToStatus:             target,
		ProductEvidencePhoto: productPath,
		PaymentEvidencePhoto: paymentPath,
		CashEvidencePhoto:    cashPath,
		ActorID:              input.ActorID,
		Now:                  now,
	})
	if err != nil {
		cleanup()
		return nil, errors.Wrap(errors.CodeInternal, err, "applying evidence update")
	}
	if affected == 0 {
		// order moved between the read and the guarded write
		cleanup()
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is no longer %s", order.ID, enums.OrderStatusListoParaEntrega))
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	ctx = s.logger.WithFields(ctx, map[string]any{
		"payment_method": order.PaymentMethod.String(),
		"target_status":  target.String(),
	})
	s.logger.Info(ctx, "pos evidence stored")

	result := &UploadEvidenceResult{
		OrderID:       order.ID,
		Status:        target,
		PaymentMethod: order.PaymentMethod,
	}
	if target == enums.OrderStatusEntregado {
		result.DeliveredAt = &now
	}
	return result, nil
}

// PendingTransfers lists orders waiting for cartera approval, newest first.
func (s *Service) PendingTransfers(ctx context.Context) ([]models.Order, error) {
	rows, err := s.orders.List(ctx, orders.ListQuery{
		Statuses:       []enums.OrderStatus{enums.OrderStatusRevisionCartera},
		PaymentMethods: []enums.PaymentMethod{enums.PaymentMethodTransferencia, enums.PaymentMethodMixto},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing pending transfers")
	}
	return rows, nil
}

// ApproveTransfer settles a reviewed order. Delivery evidence decides the
// landing status: with a product photo the order completes, without one it
// goes to gestion_especial for manual follow-up.
func (s *Service) ApproveTransfer(ctx context.Context, orderID, actorID uint64) (*TransferResolution, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target := enums.OrderStatusGestionEspecial
	if order.ProductEvidencePhoto != nil && *order.ProductEvidencePhoto != "" {
		target = enums.OrderStatusEntregado
	}
	return s.resolveReview(ctx, order, target, actorID, "transfer approved")
}

// RejectTransfer forces the order into gestion_especial.
func (s *Service) RejectTransfer(ctx context.Context, orderID, actorID uint64) (*TransferResolution, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.resolveReview(ctx, order, enums.OrderStatusGestionEspecial, actorID, "transfer rejected")
}

func (s *Service) resolveReview(ctx context.Context, order *models.Order, target enums.OrderStatus, actorID uint64, event string) (*TransferResolution, error) {
	affected, err := s.orders.ResolveTransferReview(ctx, orders.ResolveParams{
		OrderID:  order.ID,
		ToStatus: target,
		ActorID:  actorID,
		Now:      s.now(),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "resolving transfer review")
	}
	if affected == 0 {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is not in %s", order.ID, enums.OrderStatusRevisionCartera))
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	ctx = s.logger.WithFields(ctx, map[string]any{"target_status": target.String()})
	s.logger.Info(ctx, event)

	return &TransferResolution{OrderID: order.ID, Status: target}, nil
}

func (s *Service) findOrder(ctx context.Context, id uint64) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("order %d not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return order, nil
}
