package messengers

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

type stubOrdersRepo struct {
	orders.Repository

	findByID func(ctx context.Context, id uint64) (*models.Order, error)
	list     func(ctx context.Context, query orders.ListQuery) ([]models.Order, error)
	update   func(ctx context.Context, order *models.Order) error
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uint64) (*models.Order, error) {
	return s.findByID(ctx, id)
}

func (s *stubOrdersRepo) List(ctx context.Context, query orders.ListQuery) ([]models.Order, error) {
	return s.list(ctx, query)
}

func (s *stubOrdersRepo) Update(ctx context.Context, order *models.Order) error {
	if s.update == nil {
		return nil
	}
	return s.update(ctx, order)
}

type stubUsersRepo struct {
	users.Repository

	findByID func(ctx context.Context, id uint64) (*models.User, error)
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	return s.findByID(ctx, id)
}

type stubSaver struct {
	saved   []string
	removed []string
}

func (s *stubSaver) SaveImage(header *multipart.FileHeader) (string, error) {
	s.saved = append(s.saved, header.Filename)
	return header.Filename, nil
}

func (s *stubSaver) Remove(name string) error {
	s.removed = append(s.removed, name)
	return nil
}

func activeMessenger(id uint64) *models.User {
	return &models.User{ID: id, Username: "mensajero", Role: enums.UserRoleMensajero, Active: true}
}

func newTestService(t *testing.T, ordersRepo *stubOrdersRepo, usersRepo *stubUsersRepo) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Orders: ordersRepo,
		Users:  usersRepo,
		Saver:  &stubSaver{},
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		Now:    func() time.Time { return time.Date(2025, 7, 14, 15, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func assignedOrder(messengerID uint64, status enums.OrderStatus, mstatus enums.MessengerStatus) *models.Order {
	return &models.Order{
		ID:                  5,
		Status:              status,
		MessengerStatus:     mstatus,
		AssignedMessengerID: &messengerID,
	}
}

func TestAssignPromotesPreDeliveryStatus(t *testing.T) {
	order := &models.Order{ID: 5, Status: enums.OrderStatusEnEmpaque, MessengerStatus: enums.MessengerStatusPendingAssignment}
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	usersRepo := &stubUsersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.User, error) { return activeMessenger(id), nil },
	}
	svc := newTestService(t, ordersRepo, usersRepo)

	got, err := svc.Assign(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusListoParaEntrega, got.Status)
	require.Equal(t, enums.MessengerStatusAssigned, got.MessengerStatus)
	require.NotNil(t, got.AssignedMessengerID)
	require.EqualValues(t, 77, *got.AssignedMessengerID)
}

func TestAssignNeverRegressesEnReparto(t *testing.T) {
	order := assignedOrder(12, enums.OrderStatusEnReparto, enums.MessengerStatusInDelivery)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	usersRepo := &stubUsersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.User, error) { return activeMessenger(id), nil },
	}
	svc := newTestService(t, ordersRepo, usersRepo)

	got, err := svc.Assign(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEnReparto, got.Status, "active delivery status must not regress")
	require.EqualValues(t, 77, *got.AssignedMessengerID)
}

func TestAssignRejectsInactiveOrWrongRole(t *testing.T) {
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return &models.Order{ID: 5, Status: enums.OrderStatusEnLogistica}, nil
		},
	}

	inactive := activeMessenger(77)
	inactive.Active = false
	usersRepo := &stubUsersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.User, error) { return inactive, nil },
	}
	svc := newTestService(t, ordersRepo, usersRepo)

	_, err := svc.Assign(context.Background(), 5, 77)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())

	wrongRole := activeMessenger(77)
	wrongRole.Role = enums.UserRolePOS
	usersRepo.findByID = func(ctx context.Context, id uint64) (*models.User, error) { return wrongRole, nil }

	_, err = svc.Assign(context.Background(), 5, 77)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestAssignUnknownMessenger(t *testing.T) {
	ordersRepo := &stubOrdersRepo{}
	usersRepo := &stubUsersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
	}
	svc := newTestService(t, ordersRepo, usersRepo)

	_, err := svc.Assign(context.Background(), 5, 404)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestAcceptRequiresAssignment(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusListoParaEntrega, enums.MessengerStatusAssigned)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	got, err := svc.Accept(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Equal(t, enums.MessengerStatusAccepted, got.MessengerStatus)

	// a different messenger cannot touch the order
	_, err = svc.Accept(context.Background(), 5, 78)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeForbidden, appErr.Code())
}

func TestRejectClearsAssignment(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusListoParaEntrega, enums.MessengerStatusAssigned)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	got, err := svc.Reject(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Nil(t, got.AssignedMessengerID)
	require.Equal(t, enums.MessengerStatusPendingAssignment, got.MessengerStatus)
}

func TestStartMovesOrderToEnReparto(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusListoParaEntrega, enums.MessengerStatusAccepted)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	got, err := svc.Start(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEnReparto, got.Status)
	require.Equal(t, enums.MessengerStatusInDelivery, got.MessengerStatus)
}

func TestStartRequiresAcceptedState(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusListoParaEntrega, enums.MessengerStatusAssigned)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	_, err := svc.Start(context.Background(), 5, 77)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeStateConflict, appErr.Code())
}

func TestCompleteStampsDelivery(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusEnReparto, enums.MessengerStatusInDelivery)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	got, err := svc.Complete(context.Background(), 5, 77, &multipart.FileHeader{Filename: "door.jpg"})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEntregado, got.Status)
	require.Equal(t, enums.MessengerStatusDelivered, got.MessengerStatus)
	require.NotNil(t, got.DeliveredAt)
	require.NotNil(t, got.DeliveredBy)
	require.EqualValues(t, 77, *got.DeliveredBy)
	require.NotNil(t, got.ProductEvidencePhoto)
}

func TestCompleteRequiresPhoto(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusEnReparto, enums.MessengerStatusInDelivery)
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	_, err := svc.Complete(context.Background(), 5, 77, nil)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestFailIncrementsAttempts(t *testing.T) {
	order := assignedOrder(77, enums.OrderStatusEnReparto, enums.MessengerStatusInDelivery)
	order.DeliveryAttempts = 1
	ordersRepo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) { return order, nil },
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	got, err := svc.Fail(context.Background(), 5, 77)
	require.NoError(t, err)
	require.Equal(t, enums.MessengerStatusDeliveryFailed, got.MessengerStatus)
	require.Equal(t, 2, got.DeliveryAttempts)
	require.Equal(t, enums.OrderStatusEnReparto, got.Status, "order status is untouched on failure")
}

func TestListAssignedFiltersByMessengerAndStatus(t *testing.T) {
	ordersRepo := &stubOrdersRepo{
		list: func(ctx context.Context, query orders.ListQuery) ([]models.Order, error) {
			require.NotNil(t, query.MessengerID)
			require.EqualValues(t, 77, *query.MessengerID)
			require.ElementsMatch(t,
				[]enums.OrderStatus{enums.OrderStatusListoParaEntrega, enums.OrderStatusEnReparto},
				query.Statuses)
			return []models.Order{{ID: 1}}, nil
		},
	}
	svc := newTestService(t, ordersRepo, &stubUsersRepo{})

	rows, err := svc.ListAssigned(context.Background(), 77)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
