package enums

import "fmt"

// AppointmentPriority orders how urgently a vehicle has to be prepared.
type AppointmentPriority string

const (
	AppointmentPriorityLow    AppointmentPriority = "low"
	AppointmentPriorityMedium AppointmentPriority = "medium"
	AppointmentPriorityHigh   AppointmentPriority = "high"
)

var validAppointmentPriorities = []AppointmentPriority{
	AppointmentPriorityLow,
	AppointmentPriorityMedium,
	AppointmentPriorityHigh,
}

// String implements fmt.Stringer.
func (p AppointmentPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known AppointmentPriority.
func (p AppointmentPriority) IsValid() bool {
	for _, candidate := range validAppointmentPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseAppointmentPriority converts raw input into an AppointmentPriority.
func ParseAppointmentPriority(value string) (AppointmentPriority, error) {
	for _, candidate := range validAppointmentPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid appointment priority %q", value)
}
