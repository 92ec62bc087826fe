package get_available_slots

import (
	"github.com/m04kA/SMC-BarberService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP response model для одного слота
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// WorkingHoursResponse эффективный рабочий интервал на дату
type WorkingHoursResponse struct {
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Source      string  `json:"source"`
	Reason      *string `json:"reason,omitempty"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date                   string               `json:"date"`
	BarberID               int64                `json:"barberId"`
	ServiceID              int64                `json:"serviceId"`
	ServiceDurationMinutes int                  `json:"serviceDurationMinutes"`
	WorkingHours           WorkingHoursResponse `json:"workingHours"`
	Slots                  []SlotResponse       `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			DurationMinutes: slot.DurationMinutes,
		})
	}

	hours := WorkingHoursResponse{
		IsAvailable: resp.Availability.IsAvailable,
		Source:      string(resp.Availability.Source),
		Reason:      resp.Availability.Reason,
	}
	if resp.Availability.Interval != nil {
		start := resp.Availability.Interval.Start.String()
		end := resp.Availability.Interval.End.String()
		hours.StartTime = &start
		hours.EndTime = &end
	}

	return &AvailableSlotsResponse{
		Date:                   resp.Date.Format(domain.DateFormat),
		BarberID:               resp.BarberID,
		ServiceID:              resp.ServiceID,
		ServiceDurationMinutes: resp.ServiceDurationMinutes,
		WorkingHours:           hours,
		Slots:                  slots,
	}
}
