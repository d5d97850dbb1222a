package orders

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates order lifecycle operations.
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds an orders service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stderrors.New("repo is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	return &Service{repo: params.Repo, logger: params.Logger}, nil
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("order %d not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// List returns orders matching the query, newest first.
func (s *Service) List(ctx context.Context, query ListQuery) ([]models.Order, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing orders")
	}
	return rows, nil
}

// UpdateStatus moves an order along the transition table.
func (s *Service) UpdateStatus(ctx context.Context, id uint64, to enums.OrderStatus) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, to); err != nil {
		return nil, err
	}

	from := order.Status
	order.Status = to
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating order status")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID)
	ctx = s.logger.WithFields(ctx, map[string]any{"from": from.String(), "to": to.String()})
	s.logger.Info(ctx, "order status updated")
	return order, nil
}
