package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Resolver сводит недельное правило и исключение в эффективную доступность на дату
type Resolver struct {
	src        ScheduleSource
	defaultDay domain.TimeInterval
}

// NewResolver создает резолвер
// defaultDay - интервал, который получает исключение "доступен весь день"
func NewResolver(src ScheduleSource, defaultDay domain.TimeInterval) (*Resolver, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: schedule source is nil", ErrInvalidConfiguration)
	}
	if err := ValidateInterval(defaultDay); err != nil {
		return nil, fmt.Errorf("default day: %w", err)
	}
	return &Resolver{src: src, defaultDay: defaultDay}, nil
}

// Resolve вычисляет эффективную доступность барбера на дату
// Исключение полностью заменяет день, частичного слияния с недельным правилом нет
// Отсутствие доступности - валидный результат, ошибка только для некорректного ввода
func (r *Resolver) Resolve(barberID int64, date time.Time) (domain.EffectiveDayAvailability, error) {
	if barberID <= 0 {
		return domain.EffectiveDayAvailability{}, fmt.Errorf("%w: barberID must be positive", ErrInvalidConfiguration)
	}
	if date.IsZero() {
		return domain.EffectiveDayAvailability{}, fmt.Errorf("%w: date is required", ErrInvalidConfiguration)
	}

	day := domain.DateOnly(date)
	result := domain.EffectiveDayAvailability{BarberID: barberID, Date: day}

	outcome := ResolveException(r.src, barberID, day)
	if outcome.Exception != nil {
		result.Reason = outcome.Exception.Reason
	}

	switch outcome.Kind {
	case FullyUnavailable:
		result.Source = domain.SourceExceptionUnavailable
		return result, nil

	case SpecialHours:
		result.Source = domain.SourceExceptionSpecialHours
		return withInterval(result, outcome.Interval), nil

	case FullyAvailableAllDay:
		result.Source = domain.SourceExceptionAllDay
		return withInterval(result, r.defaultDay), nil
	}

	rule, ok := r.src.GetWeeklyRule(barberID, domain.DayOfWeek(day))
	if !ok {
		result.Source = domain.SourceNoRule
		return result, nil
	}

	result.Source = domain.SourceWeekly
	if !rule.IsAvailable {
		return result, nil
	}
	return withInterval(result, domain.TimeInterval{Start: rule.StartTime, End: rule.EndTime}), nil
}

// withInterval помечает день доступным, если интервал непустой
func withInterval(result domain.EffectiveDayAvailability, interval domain.TimeInterval) domain.EffectiveDayAvailability {
	if interval.IsEmpty() {
		return result
	}
	result.IsAvailable = true
	result.Interval = &interval
	return result
}
