package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order from quotation to delivery.
type OrderStatus string

const (
	OrderStatusPendienteFacturacion OrderStatus = "pendiente_por_facturacion"
	OrderStatusEnEmpaque            OrderStatus = "en_empaque"
	OrderStatusEnLogistica          OrderStatus = "en_logistica"
	OrderStatusListoParaEntrega     OrderStatus = "listo_para_entrega"
	OrderStatusEnReparto            OrderStatus = "en_reparto"
	OrderStatusRevisionCartera      OrderStatus = "revision_cartera"
	OrderStatusGestionEspecial      OrderStatus = "gestion_especial"
	OrderStatusEntregado            OrderStatus = "entregado"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendienteFacturacion,
	OrderStatusEnEmpaque,
	OrderStatusEnLogistica,
	OrderStatusListoParaEntrega,
	OrderStatusEnReparto,
	OrderStatusRevisionCartera,
	OrderStatusGestionEspecial,
	OrderStatusEntregado,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
