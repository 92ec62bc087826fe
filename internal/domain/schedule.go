package domain

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// WeeklyScheduleRule represents a barber's recurring working hours for one weekday
// DayOfWeek: 0 = Sunday ... 6 = Saturday (совпадает с time.Weekday)
type WeeklyScheduleRule struct {
	ID          int64
	BarberID    int64
	DayOfWeek   int
	StartTime   types.TimeString
	EndTime     types.TimeString
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleException overrides the weekly rule for a single calendar date
//
// Варианты:
// - IsAvailable = false: барбер не работает весь день (время игнорируется)
// - IsAvailable = true, AllDay = true: работает весь день (границы из настроек движка)
// - IsAvailable = true, AllDay = false: работает только в [StartTime, EndTime)
type ScheduleException struct {
	ID            int64
	BarberID      int64
	ExceptionDate time.Time
	AllDay        bool
	IsAvailable   bool
	StartTime     *types.TimeString
	EndTime       *types.TimeString
	Reason        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsSpecialHours returns true if the exception defines its own working interval
func (e *ScheduleException) IsSpecialHours() bool {
	return e.IsAvailable && !e.AllDay
}

// TimeInterval half-open interval [Start, End) within a day
type TimeInterval struct {
	Start types.TimeString
	End   types.TimeString
}

// IsEmpty returns true if the interval contains no time
func (i TimeInterval) IsEmpty() bool {
	return !i.Start.IsBefore(i.End)
}

// AvailabilitySource explains which rule produced the effective availability
type AvailabilitySource string

const (
	SourceWeekly                AvailabilitySource = "weekly"
	SourceNoRule                AvailabilitySource = "no_rule"
	SourceExceptionUnavailable  AvailabilitySource = "exception_unavailable"
	SourceExceptionSpecialHours AvailabilitySource = "exception_special_hours"
	SourceExceptionAllDay       AvailabilitySource = "exception_all_day"
)

// EffectiveDayAvailability resolved availability of a barber on a date
// Если IsAvailable = true, Interval содержит непустой рабочий интервал
type EffectiveDayAvailability struct {
	BarberID    int64
	Date        time.Time
	IsAvailable bool
	Interval    *TimeInterval
	Source      AvailabilitySource
	Reason      *string
}

// DayOfWeek returns the schedule weekday index (0 = Sunday) for a date
func DayOfWeek(date time.Time) int {
	return int(date.Weekday())
}

// DateOnly truncates a timestamp to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
