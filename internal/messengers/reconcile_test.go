package messengers

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

func newReconcilerDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Carrier{}, &models.Order{}))
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, id uint64, role enums.UserRole, active bool) {
	t.Helper()
	require.NoError(t, conn.Create(&models.User{
		ID:           id,
		Username:     fmt.Sprintf("user-%d", id),
		PasswordHash: "x",
		FullName:     "Test User",
		Role:         role,
		Active:       active,
	}).Error)
}

func seedReconOrder(t *testing.T, conn *gorm.DB, n int, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:  fmt.Sprintf("REC-%d", n),
		CustomerName: "Cliente",
		Status:       enums.OrderStatusListoParaEntrega,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func newReconciler(t *testing.T, conn *gorm.DB) *Reconciler {
	t.Helper()
	rec, err := NewReconciler(conn, users.NewRepository(conn), logger.New(logger.Options{Level: zerolog.ErrorLevel}))
	require.NoError(t, err)
	return rec
}

func TestReconcileRepairsLegacyNumericColumn(t *testing.T) {
	conn := newReconcilerDB(t)
	seedUser(t, conn, 30, enums.UserRoleMensajero, true)

	legacy := uint64(30)
	order := seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.LegacyAssignedTo = &legacy
	})

	report, err := newReconciler(t, conn).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Scanned)
	require.Equal(t, 1, report.Repaired)

	var got models.Order
	require.NoError(t, conn.First(&got, order.ID).Error)
	require.NotNil(t, got.AssignedMessengerID)
	require.EqualValues(t, 30, *got.AssignedMessengerID)
	require.Nil(t, got.LegacyAssignedTo)
	require.Nil(t, got.LegacyAssignedMessenger)
}

func TestReconcileCanonicalIDWinsOverLegacyString(t *testing.T) {
	conn := newReconcilerDB(t)
	seedUser(t, conn, 30, enums.UserRoleMensajero, true)
	seedUser(t, conn, 31, enums.UserRoleMensajero, true)

	canonical := uint64(30)
	legacyStr := "31"
	order := seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.AssignedMessengerID = &canonical
		o.LegacyAssignedMessenger = &legacyStr
	})

	report, err := newReconciler(t, conn).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Synced)

	var got models.Order
	require.NoError(t, conn.First(&got, order.ID).Error)
	require.EqualValues(t, 30, *got.AssignedMessengerID)
	require.Nil(t, got.LegacyAssignedMessenger)
}

func TestReconcileClearsInactiveMessenger(t *testing.T) {
	conn := newReconcilerDB(t)
	seedUser(t, conn, 30, enums.UserRoleMensajero, false)

	canonical := uint64(30)
	order := seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.AssignedMessengerID = &canonical
		o.MessengerStatus = enums.MessengerStatusAssigned
	})

	report, err := newReconciler(t, conn).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Cleared)

	var got models.Order
	require.NoError(t, conn.First(&got, order.ID).Error)
	require.Nil(t, got.AssignedMessengerID)
	require.Equal(t, enums.MessengerStatusPendingAssignment, got.MessengerStatus)
}

func TestReconcileClearsNonMessengerRole(t *testing.T) {
	conn := newReconcilerDB(t)
	seedUser(t, conn, 40, enums.UserRolePOS, true)

	legacy := uint64(40)
	order := seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.LegacyAssignedTo = &legacy
		o.MessengerStatus = enums.MessengerStatusAssigned
	})

	report, err := newReconciler(t, conn).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Cleared)

	var got models.Order
	require.NoError(t, conn.First(&got, order.ID).Error)
	require.Nil(t, got.AssignedMessengerID)
	require.Nil(t, got.LegacyAssignedTo)
}

func TestReconcilePreservesDeliveredStatus(t *testing.T) {
	conn := newReconcilerDB(t)

	// messenger row no longer exists
	legacy := uint64(99)
	order := seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.Status = enums.OrderStatusEntregado
		o.MessengerStatus = enums.MessengerStatusDelivered
		o.LegacyAssignedTo = &legacy
	})

	_, err := newReconciler(t, conn).Run(context.Background())
	require.NoError(t, err)

	var got models.Order
	require.NoError(t, conn.First(&got, order.ID).Error)
	require.Equal(t, enums.MessengerStatusDelivered, got.MessengerStatus,
		"terminal delivery facts must not be rewritten")
	require.Nil(t, got.LegacyAssignedTo)
}

func TestReconcileIsIdempotent(t *testing.T) {
	conn := newReconcilerDB(t)
	seedUser(t, conn, 30, enums.UserRoleMensajero, true)

	legacy := uint64(30)
	seedReconOrder(t, conn, 1, func(o *models.Order) {
		o.LegacyAssignedTo = &legacy
	})

	rec := newReconciler(t, conn)
	first, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Repaired)

	second, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, second.Repaired)
	require.Zero(t, second.Cleared)
	require.Zero(t, second.Synced)
}
