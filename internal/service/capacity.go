package service

import "fmt"

// Seat limits for a single exam day at the center.
const (
	MaxDailyCandidates    = 40
	CapacityWarnThreshold = 30
)

// CapacityLevel classifies a candidate count against the center's seat limit.
type CapacityLevel string

const (
	CapacityOK      CapacityLevel = "ok"
	CapacityWarning CapacityLevel = "warning"
	CapacityError   CapacityLevel = "error"
)

// CapacityCheck is the result of validating a candidate count.
type CapacityCheck struct {
	Level   CapacityLevel `json:"level"`
	Message string        `json:"message,omitempty"`
}

// ValidateCapacity classifies a total candidate count for one exam day.
// Counts above the hard limit are rejected; counts at or above the warning
// threshold pass with an advisory message.
func ValidateCapacity(count int) CapacityCheck {
	if count > MaxDailyCandidates {
		return CapacityCheck{
			Level:   CapacityError,
			Message: fmt.Sprintf("Session exceeds maximum capacity of %d candidates", MaxDailyCandidates),
		}
	}
	if count >= CapacityWarnThreshold {
		return CapacityCheck{
			Level:   CapacityWarning,
			Message: fmt.Sprintf("Session approaching capacity (%d/%d candidates)", count, MaxDailyCandidates),
		}
	}
	return CapacityCheck{Level: CapacityOK}
}
