package orders

import (
	"fmt"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
)

// allowedTransitions is the closed status graph. Anything not listed here is
// rejected with a state conflict, including no-op same-status updates.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendienteFacturacion: {
		enums.OrderStatusEnEmpaque,
		enums.OrderStatusListoParaEntrega,
	},
	enums.OrderStatusEnEmpaque: {
		enums.OrderStatusEnLogistica,
		enums.OrderStatusListoParaEntrega,
	},
	enums.OrderStatusEnLogistica: {
		enums.OrderStatusListoParaEntrega,
	},
	enums.OrderStatusListoParaEntrega: {
		enums.OrderStatusEnReparto,
		enums.OrderStatusEntregado,
		enums.OrderStatusRevisionCartera,
	},
	enums.OrderStatusEnReparto: {
		enums.OrderStatusEntregado,
		enums.OrderStatusListoParaEntrega,
	},
	enums.OrderStatusRevisionCartera: {
		enums.OrderStatusEntregado,
		enums.OrderStatusGestionEspecial,
	},
	enums.OrderStatusGestionEspecial: {
		enums.OrderStatusEntregado,
		enums.OrderStatusListoParaEntrega,
	},
	enums.OrderStatusEntregado: nil,
}

// IsPreDelivery reports whether the status precedes the ready-for-delivery
// stage. Logistics assignment promotes these to listo_para_entrega.
func IsPreDelivery(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPendienteFacturacion, enums.OrderStatusEnEmpaque, enums.OrderStatusEnLogistica:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a typed state-conflict error for illegal moves.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !from.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid order status %q", from))
	}
	if !to.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid order status %q", to))
	}
	if !CanTransition(from, to) {
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", from, to))
	}
	return nil
}
