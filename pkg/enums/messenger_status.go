package enums

import "fmt"

// MessengerStatus is the delivery sub-state machine, independent of OrderStatus.
type MessengerStatus string

const (
	MessengerStatusPendingAssignment MessengerStatus = "pending_assignment"
	MessengerStatusAssigned          MessengerStatus = "assigned"
	MessengerStatusAccepted          MessengerStatus = "accepted"
	MessengerStatusInDelivery        MessengerStatus = "in_delivery"
	MessengerStatusDelivered         MessengerStatus = "delivered"
	MessengerStatusDeliveryFailed    MessengerStatus = "delivery_failed"
)

var validMessengerStatuses = []MessengerStatus{
	MessengerStatusPendingAssignment,
	MessengerStatusAssigned,
	MessengerStatusAccepted,
	MessengerStatusInDelivery,
	MessengerStatusDelivered,
	MessengerStatusDeliveryFailed,
}

// String implements fmt.Stringer.
func (m MessengerStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessengerStatus.
func (m MessengerStatus) IsValid() bool {
	for _, candidate := range validMessengerStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessengerStatus converts raw input into a MessengerStatus.
func ParseMessengerStatus(value string) (MessengerStatus, error) {
	for _, candidate := range validMessengerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid messenger status %q", value)
}
