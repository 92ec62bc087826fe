package availability

import (
	"fmt"
	"math"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// RangeRequest параметры массового создания исключений
type RangeRequest struct {
	BarberID    int64
	StartDate   time.Time
	EndDate     time.Time // включительно
	Weekdays    []int     // 0 = воскресенье; пусто - все дни
	AllDay      bool
	IsAvailable bool
	StartTime   *types.TimeString
	EndTime     *types.TimeString
	Reason      *string
}

// ExpandRange разворачивает диапазон дат в одно исключение на каждую подходящую дату
// Каждое исключение проходит ту же валидацию, что и одиночная запись
func ExpandRange(req RangeRequest) ([]*domain.ScheduleException, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidConfiguration)
	}

	start := domain.DateOnly(req.StartDate)
	end := domain.DateOnly(req.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidConfiguration)
	}

	days := int(math.Round(end.Sub(start).Hours()/24)) + 1
	if days > domain.MaxExceptionRangeDays {
		return nil, fmt.Errorf("%w: range covers %d days, max %d", ErrInvalidConfiguration, days, domain.MaxExceptionRangeDays)
	}

	weekdays, err := weekdaySet(req.Weekdays)
	if err != nil {
		return nil, err
	}

	template := domain.ScheduleException{
		BarberID:      req.BarberID,
		ExceptionDate: start,
		AllDay:        req.AllDay,
		IsAvailable:   req.IsAvailable,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Reason:        req.Reason,
	}
	if err := ValidateException(&template); err != nil {
		return nil, err
	}

	result := make([]*domain.ScheduleException, 0, days)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if weekdays != nil {
			if _, ok := weekdays[domain.DayOfWeek(date)]; !ok {
				continue
			}
		}
		exc := template
		exc.ExceptionDate = date
		result = append(result, &exc)
	}

	return result, nil
}

func weekdaySet(weekdays []int) (map[int]struct{}, error) {
	if len(weekdays) == 0 {
		return nil, nil
	}
	set := make(map[int]struct{}, len(weekdays))
	for _, day := range weekdays {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: weekday must be in 0..6, got %d", ErrInvalidConfiguration, day)
		}
		set[day] = struct{}{}
	}
	return set, nil
}
