package pos

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

type stubOrdersRepo struct {
	orders.Repository

	findByID              func(ctx context.Context, id uint64) (*models.Order, error)
	list                  func(ctx context.Context, query orders.ListQuery) ([]models.Order, error)
	deliverWithEvidence   func(ctx context.Context, params orders.DeliverParams) (int64, error)
	resolveTransferReview func(ctx context.Context, params orders.ResolveParams) (int64, error)
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uint64) (*models.Order, error) {
	return s.findByID(ctx, id)
}

func (s *stubOrdersRepo) List(ctx context.Context, query orders.ListQuery) ([]models.Order, error) {
	return s.list(ctx, query)
}

func (s *stubOrdersRepo) DeliverWithEvidence(ctx context.Context, params orders.DeliverParams) (int64, error) {
	return s.deliverWithEvidence(ctx, params)
}

func (s *stubOrdersRepo) ResolveTransferReview(ctx context.Context, params orders.ResolveParams) (int64, error) {
	return s.resolveTransferReview(ctx, params)
}

type stubSaver struct {
	saved   []string
	removed []string
	err     error
}

func (s *stubSaver) SaveImage(header *multipart.FileHeader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	name := header.Filename
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubSaver) Remove(name string) error {
	s.removed = append(s.removed, name)
	return nil
}

func newPOSService(t *testing.T, repo *stubOrdersRepo, saver *stubSaver) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Orders: repo,
		Saver:  saver,
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		Now:    func() time.Time { return time.Date(2025, 7, 14, 15, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func header(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func readyOrder(payment enums.PaymentMethod) *models.Order {
	return &models.Order{
		ID:            10,
		OrderNumber:   "ORD-10",
		Status:        enums.OrderStatusListoParaEntrega,
		PaymentMethod: payment,
	}
}

func TestUploadEvidenceCashDeliversImmediately(t *testing.T) {
	var captured orders.DeliverParams
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return readyOrder(enums.PaymentMethodEfectivo), nil
		},
		deliverWithEvidence: func(ctx context.Context, params orders.DeliverParams) (int64, error) {
			captured = params
			return 1, nil
		},
	}
	saver := &stubSaver{}
	svc := newPOSService(t, repo, saver)

	result, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID:      10,
		ActorID:      3,
		ProductPhoto: header("product.jpg"),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEntregado, result.Status)
	require.NotNil(t, result.DeliveredAt)

	require.Equal(t, enums.OrderStatusEntregado, captured.ToStatus)
	require.Equal(t, "product.jpg", captured.ProductEvidencePhoto)
	require.Nil(t, captured.PaymentEvidencePhoto)
	require.EqualValues(t, 3, captured.ActorID)
}

func TestUploadEvidenceTransferQueuesForReview(t *testing.T) {
	var captured orders.DeliverParams
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return readyOrder(enums.PaymentMethodTransferencia), nil
		},
		deliverWithEvidence: func(ctx context.Context, params orders.DeliverParams) (int64, error) {
			captured = params
			return 1, nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	result, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID:      10,
		ActorID:      3,
		ProductPhoto: header("product.jpg"),
		PaymentPhoto: header("transfer.jpg"),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusRevisionCartera, result.Status)
	require.Nil(t, result.DeliveredAt)

	require.Equal(t, enums.OrderStatusRevisionCartera, captured.ToStatus)
	require.NotNil(t, captured.PaymentEvidencePhoto)
	require.Equal(t, "transfer.jpg", *captured.PaymentEvidencePhoto)
}

func TestUploadEvidenceMixtoRequiresPaymentPhoto(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return readyOrder(enums.PaymentMethodMixto), nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	_, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID:      10,
		ActorID:      3,
		ProductPhoto: header("product.jpg"),
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestUploadEvidenceMissingProductPhoto(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return readyOrder(enums.PaymentMethodEfectivo), nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	_, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID: 10,
		ActorID: 3,
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestUploadEvidenceUnknownOrder(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	_, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID:      99,
		ActorID:      3,
		ProductPhoto: header("product.jpg"),
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestUploadEvidenceGuardMissCleansUpFiles(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return readyOrder(enums.PaymentMethodEfectivo), nil
		},
		deliverWithEvidence: func(ctx context.Context, params orders.DeliverParams) (int64, error) {
			return 0, nil
		},
	}
	saver := &stubSaver{}
	svc := newPOSService(t, repo, saver)

	_, err := svc.UploadEvidenceAndDeliver(context.Background(), UploadEvidenceInput{
		OrderID:      10,
		ActorID:      3,
		ProductPhoto: header("product.jpg"),
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeStateConflict, appErr.Code())
	require.Equal(t, []string{"product.jpg"}, saver.removed)
}

func TestApproveTransferUsesEvidenceToPickStatus(t *testing.T) {
	photo := "product.jpg"
	inReview := &models.Order{
		ID:                   22,
		Status:               enums.OrderStatusRevisionCartera,
		PaymentMethod:        enums.PaymentMethodTransferencia,
		ProductEvidencePhoto: &photo,
	}

	var captured orders.ResolveParams
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return inReview, nil
		},
		resolveTransferReview: func(ctx context.Context, params orders.ResolveParams) (int64, error) {
			captured = params
			return 1, nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	result, err := svc.ApproveTransfer(context.Background(), 22, 4)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEntregado, result.Status)
	require.EqualValues(t, 4, captured.ActorID)

	// without product evidence the approval routes to special handling
	inReview.ProductEvidencePhoto = nil
	result, err = svc.ApproveTransfer(context.Background(), 22, 4)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusGestionEspecial, result.Status)
}

func TestRejectTransferForcesSpecialHandling(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return &models.Order{ID: 22, Status: enums.OrderStatusRevisionCartera}, nil
		},
		resolveTransferReview: func(ctx context.Context, params orders.ResolveParams) (int64, error) {
			require.Equal(t, enums.OrderStatusGestionEspecial, params.ToStatus)
			return 1, nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	result, err := svc.RejectTransfer(context.Background(), 22, 4)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusGestionEspecial, result.Status)
}

func TestResolveGuardMissIsStateConflict(t *testing.T) {
	repo := &stubOrdersRepo{
		findByID: func(ctx context.Context, id uint64) (*models.Order, error) {
			return &models.Order{ID: 22, Status: enums.OrderStatusListoParaEntrega}, nil
		},
		resolveTransferReview: func(ctx context.Context, params orders.ResolveParams) (int64, error) {
			return 0, nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	_, err := svc.ApproveTransfer(context.Background(), 22, 4)
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeStateConflict, appErr.Code())
}

func TestPendingTransfersQuery(t *testing.T) {
	repo := &stubOrdersRepo{
		list: func(ctx context.Context, query orders.ListQuery) ([]models.Order, error) {
			require.Equal(t, []enums.OrderStatus{enums.OrderStatusRevisionCartera}, query.Statuses)
			require.ElementsMatch(t,
				[]enums.PaymentMethod{enums.PaymentMethodTransferencia, enums.PaymentMethodMixto},
				query.PaymentMethods)
			return []models.Order{{ID: 1}, {ID: 2}}, nil
		},
	}
	svc := newPOSService(t, repo, &stubSaver{})

	rows, err := svc.PendingTransfers(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
