package domain

import "github.com/m04kA/SMC-BarberService/pkg/types"

// AvailableSlot represents a start time a client can book
type AvailableSlot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
}
