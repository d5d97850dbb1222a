package messengers

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"time"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// ImageSaver persists delivery evidence uploads.
type ImageSaver interface {
	SaveImage(header *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// ServiceParams groups dependencies for the messenger service.
type ServiceParams struct {
	Orders orders.Repository
	Users  users.Repository
	Saver  ImageSaver
	Logger *logger.Logger
	Now    func() time.Time
}

// Service covers the delivery-agent workflow: assignment, the
// accept/start/complete cycle, and failure tracking.
type Service struct {
	orders orders.Repository
	users  users.Repository
	saver  ImageSaver
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds a messenger service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, stderrors.New("orders repo is required")
	}
	if params.Users == nil {
		return nil, stderrors.New("users repo is required")
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
	return &Service{
		orders: params.Orders,
		users:  params.Users,
		saver:  params.Saver,
		logger: params.Logger,
		now:    now,
	}, nil
}

// ListAssigned returns the acting messenger's open deliveries.
func (s *Service) ListAssigned(ctx context.Context, messengerID uint64) ([]models.Order, error) {
	rows, err := s.orders.List(ctx, orders.ListQuery{
		Statuses:    []enums.OrderStatus{enums.OrderStatusListoParaEntrega, enums.OrderStatusEnReparto},
		MessengerID: &messengerID,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing assigned orders")
	}
	return rows, nil
}

// Assign puts an order in an active messenger's queue. Pre-delivery orders
// are promoted to listo_para_entrega; an order already out for delivery is
// never regressed.
func (s *Service) Assign(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	messenger, err := s.users.FindByID(ctx, messengerID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("user %d not found", messengerID))
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading messenger")
	}
	if messenger.Role != enums.UserRoleMensajero {
		return nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("user %d is %s, expected %s", messengerID, messenger.Role, enums.UserRoleMensajero))
	}
	if !messenger.Active {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("user %d is inactive", messengerID))
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusEntregado {
		return nil, errors.New(errors.CodeStateConflict, fmt.Sprintf("order %d is already delivered", orderID))
	}

	if orders.IsPreDelivery(order.Status) {
		order.Status = enums.OrderStatusListoParaEntrega
	}
	order.AssignedMessengerID = &messengerID
	order.MessengerStatus = enums.MessengerStatusAssigned

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "assigning messenger")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	ctx = s.logger.WithFields(ctx, map[string]any{"messenger_id": messengerID})
	s.logger.Info(ctx, "messenger assigned")
	return order, nil
}

// Accept acknowledges an assignment.
func (s *Service) Accept(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, messengerID)
	if err != nil {
		return nil, err
	}
	if order.MessengerStatus != enums.MessengerStatusAssigned {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, expected %s", orderID, order.MessengerStatus, enums.MessengerStatusAssigned))
	}

	order.MessengerStatus = enums.MessengerStatusAccepted
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "accepting assignment")
	}
	return order, nil
}

// Reject returns the order to the assignment pool.
func (s *Service) Reject(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, messengerID)
	if err != nil {
		return nil, err
	}
	switch order.MessengerStatus {
	case enums.MessengerStatusAssigned, enums.MessengerStatusAccepted:
	default:
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s and cannot be rejected", orderID, order.MessengerStatus))
	}

	order.AssignedMessengerID = nil
	order.MessengerStatus = enums.MessengerStatusPendingAssignment
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "rejecting assignment")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	s.logger.Info(ctx, "assignment rejected")
	return order, nil
}

// Start begins the delivery leg.
func (s *Service) Start(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, messengerID)
	if err != nil {
		return nil, err
	}
	if order.MessengerStatus != enums.MessengerStatusAccepted {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, expected %s", orderID, order.MessengerStatus, enums.MessengerStatusAccepted))
	}
	if err := orders.ValidateTransition(order.Status, enums.OrderStatusEnReparto); err != nil {
		return nil, err
	}

	order.MessengerStatus = enums.MessengerStatusInDelivery
	order.Status = enums.OrderStatusEnReparto
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "starting delivery")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	s.logger.Info(ctx, "delivery started")
	return order, nil
}

// Complete finishes the delivery with photo evidence.
func (s *Service) Complete(ctx context.Context, orderID, messengerID uint64, photo *multipart.FileHeader) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, messengerID)
	if err != nil {
		return nil, err
	}
	if order.MessengerStatus != enums.MessengerStatusInDelivery {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, expected %s", orderID, order.MessengerStatus, enums.MessengerStatusInDelivery))
	}
	if photo == nil {
		return nil, errors.New(errors.CodeValidation, "delivery evidence photo is required")
	}
	if order.ProductEvidencePhoto != nil {
		return nil, errors.New(errors.CodeConflict,
			fmt.Sprintf("order %d already has delivery evidence", orderID))
	}
	if err := orders.ValidateTransition(order.Status, enums.OrderStatusEntregado); err != nil {
		return nil, err
	}

	path, err := s.saver.SaveImage(photo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order.MessengerStatus = enums.MessengerStatusDelivered
	order.Status = enums.OrderStatusEntregado
	order.ProductEvidencePhoto = &path
	order.DeliveredAt = &now
	order.DeliveredBy = &messengerID
	if err := s.orders.Update(ctx, order); err != nil {
		_ = s.saver.Remove(path)
		return nil, errors.Wrap(errors.CodeInternal, err, "completing delivery")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	s.logger.Info(ctx, "delivery completed")
	return order, nil
}

// Fail records a failed delivery attempt. The order stays en_reparto so
// logistics can decide whether to retry or reassign.
func (s *Service) Fail(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, messengerID)
	if err != nil {
		return nil, err
	}
	if order.MessengerStatus != enums.MessengerStatusInDelivery {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, expected %s", orderID, order.MessengerStatus, enums.MessengerStatusInDelivery))
	}

	order.MessengerStatus = enums.MessengerStatusDeliveryFailed
	order.DeliveryAttempts++
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "recording failed delivery")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	ctx = s.logger.WithFields(ctx, map[string]any{"delivery_attempts": order.DeliveryAttempts})
	s.logger.Warn(ctx, "delivery failed")
	return order, nil
}

func (s *Service) ownedOrder(ctx context.Context, orderID, messengerID uint64) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedMessengerID == nil || *order.AssignedMessengerID != messengerID {
		return nil, errors.New(errors.CodeForbidden,
			fmt.Sprintf("order %d is not assigned to messenger %d", orderID, messengerID))
	}
	return order, nil
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
