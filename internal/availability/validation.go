package availability

import (
	"fmt"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// ValidateWeeklyRule проверяет недельное правило перед записью
func ValidateWeeklyRule(rule *domain.WeeklyScheduleRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule is nil", ErrInvalidConfiguration)
	}
	if rule.BarberID <= 0 {
		return fmt.Errorf("%w: barberID must be positive", ErrInvalidConfiguration)
	}
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return fmt.Errorf("%w: dayOfWeek must be in 0..6, got %d", ErrInvalidConfiguration, rule.DayOfWeek)
	}

	// Для выходного дня интервал игнорируется
	if !rule.IsAvailable {
		return nil
	}

	return validateInterval(rule.StartTime, rule.EndTime)
}

// ValidateException проверяет исключение перед записью
func ValidateException(exc *domain.ScheduleException) error {
	if exc == nil {
		return fmt.Errorf("%w: exception is nil", ErrInvalidConfiguration)
	}
	if exc.BarberID <= 0 {
		return fmt.Errorf("%w: barberID must be positive", ErrInvalidConfiguration)
	}
	if exc.ExceptionDate.IsZero() {
		return fmt.Errorf("%w: exceptionDate is required", ErrInvalidConfiguration)
	}
	if exc.Reason != nil && len(*exc.Reason) > domain.MaxExceptionReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidConfiguration, domain.MaxExceptionReasonLength)
	}

	if exc.AllDay {
		if exc.StartTime != nil || exc.EndTime != nil {
			return fmt.Errorf("%w: all-day exception must not have hours", ErrInvalidConfiguration)
		}
		return nil
	}

	// Недоступность блокирует весь день, часы не используются
	if !exc.IsAvailable {
		return nil
	}

	if exc.StartTime == nil || exc.EndTime == nil {
		return fmt.Errorf("%w: special hours require startTime and endTime", ErrInvalidConfiguration)
	}
	return validateInterval(*exc.StartTime, *exc.EndTime)
}

// ValidateInterval проверяет рабочий интервал [start, end)
func ValidateInterval(interval domain.TimeInterval) error {
	return validateInterval(interval.Start, interval.End)
}

func validateInterval(start, end types.TimeString) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidConfiguration, err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("%w: endTime: %v", ErrInvalidConfiguration, err)
	}
	if !start.IsBefore(end) {
		return fmt.Errorf("%w: startTime %s must be before endTime %s", ErrInvalidConfiguration, start, end)
	}
	return nil
}
