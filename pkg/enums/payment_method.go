package enums

import "fmt"

// PaymentMethod describes how a customer settles an order.
type PaymentMethod string

const (
	PaymentMethodEfectivo      PaymentMethod = "efectivo"
	PaymentMethodTransferencia PaymentMethod = "transferencia"
	PaymentMethodMixto         PaymentMethod = "mixto"
	PaymentMethodCredito       PaymentMethod = "credito"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodEfectivo,
	PaymentMethodTransferencia,
	PaymentMethodMixto,
	PaymentMethodCredito,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresTransferEvidence reports whether a payment proof upload is mandatory.
func (p PaymentMethod) RequiresTransferEvidence() bool {
	return p == PaymentMethodTransferencia || p == PaymentMethodMixto
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
