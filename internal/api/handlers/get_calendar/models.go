package get_calendar

import (
	"github.com/m04kA/SMC-BarberService/internal/domain"
	getCalendar "github.com/m04kA/SMC-BarberService/internal/usecase/get_calendar"
)

// DayResponse эффективная доступность на одну дату
type DayResponse struct {
	Date        string  `json:"date"`
	DayOfWeek   int     `json:"dayOfWeek"`
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Source      string  `json:"source"`
	Reason      *string `json:"reason,omitempty"`
}

// CalendarResponse HTTP response model
type CalendarResponse struct {
	BarberID int64         `json:"barberId"`
	Days     []DayResponse `json:"days"`
}

func FromUseCaseResponse(resp *getCalendar.Response) *CalendarResponse {
	days := make([]DayResponse, 0, len(resp.Days))
	for _, day := range resp.Days {
		item := DayResponse{
			Date:        day.Date.Format(domain.DateFormat),
			DayOfWeek:   domain.DayOfWeek(day.Date),
			IsAvailable: day.IsAvailable,
			Source:      string(day.Source),
			Reason:      day.Reason,
		}
		if day.Interval != nil {
			start := day.Interval.Start.String()
			end := day.Interval.End.String()
			item.StartTime = &start
			item.EndTime = &end
		}
		days = append(days, item)
	}

	return &CalendarResponse{
		BarberID: resp.BarberID,
		Days:     days,
	}
}
