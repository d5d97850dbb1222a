package carriers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// CreateInput holds the fields accepted when registering a carrier.
type CreateInput struct {
	Name    string
	Email   *string
	Phone   *string
	Website *string
}

// UpdateInput mirrors CreateInput for edits; nil leaves a field untouched.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Website *string
}

// ServiceParams groups dependencies for the carrier service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service manages the parcel-company lookup table.
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds a carrier service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stderrors.New("repo is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	return &Service{repo: params.Repo, logger: params.Logger}, nil
}

// List returns carriers, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Carrier, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing carriers")
	}
	return rows, nil
}

// Get returns one carrier by id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Carrier, error) {
	carrier, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("carrier %d not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading carrier")
	}
	return carrier, nil
}

// Create registers a carrier. Names are unique.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Carrier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	carrier := &models.Carrier{
		Name:    name,
		Email:   input.Email,
		Phone:   input.Phone,
		Website: input.Website,
		Active:  true,
	}
	if err := s.repo.Create(ctx, carrier); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, errors.New(errors.CodeConflict, fmt.Sprintf("carrier %q already exists", name))
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "creating carrier")
	}
	return carrier, nil
}

// Update edits carrier fields.
func (s *Service) Update(ctx context.Context, id uint64, input UpdateInput) (*models.Carrier, error) {
	carrier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "name must not be empty")
		}
		carrier.Name = name
	}
	if input.Email != nil {
		carrier.Email = input.Email
	}
	if input.Phone != nil {
		carrier.Phone = input.Phone
	}
	if input.Website != nil {
		carrier.Website = input.Website
	}

	if err := s.repo.Update(ctx, carrier); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, errors.New(errors.CodeConflict, fmt.Sprintf("carrier %q already exists", carrier.Name))
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "updating carrier")
	}
	return carrier, nil
}

// Toggle flips the active flag.
func (s *Service) Toggle(ctx context.Context, id uint64) (*models.Carrier, error) {
	carrier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	carrier.Active = !carrier.Active
	if err := s.repo.Update(ctx, carrier); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "toggling carrier")
	}
	return carrier, nil
}

// Delete removes a carrier. A carrier still referenced by orders is
// deactivated instead so history keeps resolving.
func (s *Service) Delete(ctx context.Context, id uint64) (deleted bool, err error) {
	carrier, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	refs, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "counting carrier references")
	}
	if refs > 0 {
		carrier.Active = false
		if err := s.repo.Update(ctx, carrier); err != nil {
			return false, errors.Wrap(errors.CodeInternal, err, "deactivating carrier")
		}
		ctx = s.logger.WithFields(ctx, map[string]any{"carrier_id": id, "order_refs": refs})
		s.logger.Info(ctx, "carrier deactivated instead of deleted")
		return false, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "deleting carrier")
	}
	return true, nil
}
