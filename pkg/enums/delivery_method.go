package enums

import "fmt"

// DeliveryMethod describes how an order physically reaches the customer.
type DeliveryMethod string

const (
	DeliveryMethodRecogeBodega   DeliveryMethod = "recoge_bodega"
	DeliveryMethodMensajeriaLocal DeliveryMethod = "mensajeria_local"
	DeliveryMethodTransportadora DeliveryMethod = "transportadora"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodRecogeBodega,
	DeliveryMethodMensajeriaLocal,
	DeliveryMethodTransportadora,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
