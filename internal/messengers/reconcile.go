package messengers

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Cleared  int `json:"cleared"`
	Synced   int `json:"synced"`
}

// Reconciler repairs drift between the canonical assigned_messenger_id
// column and the two legacy assignment columns older deployments wrote.
type Reconciler struct {
	db     *gorm.DB
	users  users.Repository
	logger *logger.Logger
}

// NewReconciler builds the maintenance reconciler.
func NewReconciler(db *gorm.DB, usersRepo users.Repository, logg *logger.Logger) (*Reconciler, error) {
	if db == nil {
		return nil, stderrors.New("db is required")
	}
	if usersRepo == nil {
		return nil, stderrors.New("users repo is required")
	}
	if logg == nil {
		return nil, stderrors.New("logger is required")
	}
	return &Reconciler{db: db, users: usersRepo, logger: logg}, nil
}

// Run walks every order carrying any assignment data and settles it on the
// canonical column. The numeric id wins when the columns disagree. A
// candidate that does not resolve to an active mensajero clears the
// assignment entirely and resets messenger_status.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("assigned_messenger_id IS NOT NULL OR assigned_to IS NOT NULL OR assigned_messenger IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "scanning orders for reconciliation")
	}

	report := &ReconcileReport{Scanned: len(rows)}
	for i := range rows {
		order := &rows[i]
		candidate := candidateMessengerID(order)

		if candidate == 0 {
			if r.clearAssignment(ctx, order) {
				report.Cleared++
			}
			continue
		}

		valid, err := r.isActiveMessenger(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !valid {
			r.mustClear(ctx, order)
			report.Cleared++
			continue
		}

		changed, err := r.settle(ctx, order, candidate)
		if err != nil {
			return nil, err
		}
		if changed {
			if order.AssignedMessengerID == nil || *order.AssignedMessengerID != candidate {
				report.Repaired++
			} else {
				report.Synced++
			}
		}
	}

	ctx = r.logger.WithFields(ctx, map[string]any{
		"scanned":  report.Scanned,
		"repaired": report.Repaired,
		"cleared":  report.Cleared,
		"synced":   report.Synced,
	})
	r.logger.Info(ctx, "messenger assignment reconciliation finished")
	return report, nil
}

// candidateMessengerID picks the winning id: the canonical column first,
// then the legacy numeric column, then the legacy stringified id.
func candidateMessengerID(order *models.Order) uint64 {
	if order.AssignedMessengerID != nil && *order.AssignedMessengerID != 0 {
		return *order.AssignedMessengerID
	}
	if order.LegacyAssignedTo != nil && *order.LegacyAssignedTo != 0 {
		return *order.LegacyAssignedTo
	}
	if order.LegacyAssignedMessenger != nil {
		raw := strings.TrimSpace(*order.LegacyAssignedMessenger)
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id != 0 {
			return id
		}
	}
	return 0
}

func (r *Reconciler) isActiveMessenger(ctx context.Context, id uint64) (bool, error) {
	user, err := r.users.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "resolving assignment candidate")
	}
	return user.Active && user.Role == enums.UserRoleMensajero, nil
}

// settle writes the canonical column and drops the legacy values. Returns
// whether anything actually changed.
func (r *Reconciler) settle(ctx context.Context, order *models.Order, candidate uint64) (bool, error) {
	alreadyCanonical := order.AssignedMessengerID != nil && *order.AssignedMessengerID == candidate
	legacyClean := order.LegacyAssignedTo == nil && order.LegacyAssignedMessenger == nil
	if alreadyCanonical && legacyClean {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"assigned_messenger_id": candidate,
			"assigned_to":           nil,
			"assigned_messenger":    nil,
		}).Error
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "settling assignment")
	}
	return true, nil
}

func (r *Reconciler) clearAssignment(ctx context.Context, order *models.Order) bool {
	if order.AssignedMessengerID == nil &&
		order.LegacyAssignedTo == nil &&
		order.LegacyAssignedMessenger == nil {
		return false
	}
	r.mustClear(ctx, order)
	return true
}

func (r *Reconciler) mustClear(ctx context.Context, order *models.Order) {
	updates := map[string]any{
		"assigned_messenger_id": nil,
		"assigned_to":           nil,
		"assigned_messenger":    nil,
	}
	// do not rewrite terminal delivery facts
	if order.MessengerStatus != enums.MessengerStatusDelivered {
		updates["messenger_status"] = enums.MessengerStatusPendingAssignment
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(updates).Error; err != nil {
		ctx = r.logger.WithOrderID(ctx, order.ID)
		r.logger.Error(ctx, "clearing stale assignment", err)
	}
}
