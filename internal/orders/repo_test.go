package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Carrier{}, &models.Order{}))
	return conn
}

func seedOrder(t *testing.T, conn *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:   "ORD-" + time.Now().Format("150405.000000000"),
		CustomerName:  "Cliente Prueba",
		Status:        enums.OrderStatusListoParaEntrega,
		PaymentMethod: enums.PaymentMethodEfectivo,
		TotalAmount:   decimal.NewFromInt(120000),
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestDeliverWithEvidenceCashOrder(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, nil)
	now := time.Now().UTC()

	affected, err := repo.DeliverWithEvidence(ctx, DeliverParams{
		OrderID:              order.ID,
		ToStatus:             enums.OrderStatusEntregado,
		ProductEvidencePhoto: "photo-1.jpg",
		ActorID:              9,
		Now:                  now,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEntregado, got.Status)
	require.NotNil(t, got.ProductEvidencePhoto)
	require.Equal(t, "photo-1.jpg", *got.ProductEvidencePhoto)
	require.NotNil(t, got.DeliveredAt)
	require.NotNil(t, got.DeliveredBy)
	require.EqualValues(t, 9, *got.DeliveredBy)
	require.Equal(t, enums.MessengerStatusDelivered, got.MessengerStatus)
	require.Nil(t, got.SubmittedForApprovalAt)
}

func TestDeliverWithEvidenceTransferGoesToReview(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, func(o *models.Order) {
		o.PaymentMethod = enums.PaymentMethodTransferencia
	})
	payment := "transfer-receipt.jpg"

	affected, err := repo.DeliverWithEvidence(ctx, DeliverParams{
		OrderID:              order.ID,
		ToStatus:             enums.OrderStatusRevisionCartera,
		ProductEvidencePhoto: "photo-1.jpg",
		PaymentEvidencePhoto: &payment,
		ActorID:              9,
		Now:                  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusRevisionCartera, got.Status)
	require.NotNil(t, got.PaymentEvidencePhoto)
	require.NotNil(t, got.SubmittedForApprovalAt)
	require.Nil(t, got.DeliveredAt, "review submission must not stamp delivery")
}

func TestDeliverWithEvidenceGuardSkipsWrongStatus(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, func(o *models.Order) {
		o.Status = enums.OrderStatusEnEmpaque
	})

	affected, err := repo.DeliverWithEvidence(ctx, DeliverParams{
		OrderID:              order.ID,
		ToStatus:             enums.OrderStatusEntregado,
		ProductEvidencePhoto: "photo-1.jpg",
		ActorID:              9,
		Now:                  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Zero(t, affected)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEnEmpaque, got.Status)
	require.Nil(t, got.ProductEvidencePhoto)
}

func TestResolveTransferReviewGuard(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	inReview := seedOrder(t, conn, func(o *models.Order) {
		o.Status = enums.OrderStatusRevisionCartera
	})
	ready := seedOrder(t, conn, nil)
	now := time.Now().UTC()

	affected, err := repo.ResolveTransferReview(ctx, ResolveParams{
		OrderID: inReview.ID, ToStatus: enums.OrderStatusEntregado, ActorID: 4, Now: now,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	got, err := repo.FindByID(ctx, inReview.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusEntregado, got.Status)
	require.NotNil(t, got.ApprovedBy)
	require.EqualValues(t, 4, *got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)

	// an order already back in listo_para_entrega must stay untouched
	affected, err = repo.ResolveTransferReview(ctx, ResolveParams{
		OrderID: ready.ID, ToStatus: enums.OrderStatusGestionEspecial, ActorID: 4, Now: now,
	})
	require.NoError(t, err)
	require.Zero(t, affected)

	untouched, err := repo.FindByID(ctx, ready.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusListoParaEntrega, untouched.Status)
}

func TestListFiltersByStatusAndPaymentMethod(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedOrder(t, conn, func(o *models.Order) {
		o.Status = enums.OrderStatusRevisionCartera
		o.PaymentMethod = enums.PaymentMethodTransferencia
	})
	seedOrder(t, conn, func(o *models.Order) {
		o.Status = enums.OrderStatusRevisionCartera
		o.PaymentMethod = enums.PaymentMethodMixto
	})
	seedOrder(t, conn, func(o *models.Order) {
		o.Status = enums.OrderStatusRevisionCartera
		o.PaymentMethod = enums.PaymentMethodEfectivo
	})
	seedOrder(t, conn, nil)

	rows, err := repo.List(ctx, ListQuery{
		Statuses:       []enums.OrderStatus{enums.OrderStatusRevisionCartera},
		PaymentMethods: []enums.PaymentMethod{enums.PaymentMethodTransferencia, enums.PaymentMethodMixto},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, enums.OrderStatusRevisionCartera, row.Status)
	}
}

func TestListFiltersByMessenger(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	messengerID := uint64(77)
	seedOrder(t, conn, func(o *models.Order) {
		o.AssignedMessengerID = &messengerID
		o.MessengerStatus = enums.MessengerStatusAssigned
	})
	seedOrder(t, conn, nil)

	rows, err := repo.List(ctx, ListQuery{MessengerID: &messengerID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].AssignedMessengerID)
	require.Equal(t, messengerID, *rows[0].AssignedMessengerID)
}

func TestCountCreatedBetweenGroupsByDay(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, time.Hour, 24 * time.Hour} {
		order := seedOrder(t, conn, nil)
		require.NoError(t, conn.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("created_at", base.Add(offset)).Error)
	}

	rows, err := repo.CountCreatedBetween(ctx, base.AddDate(0, 0, -1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	totals := map[string]int{}
	for _, row := range rows {
		totals[row.Day] = row.Total
	}
	require.Equal(t, 2, totals["2025-07-10"])
	require.Equal(t, 1, totals["2025-07-11"])
}
