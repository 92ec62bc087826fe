package availability

import (
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// OutcomeKind вид переопределения, которое исключение задаёт для даты
type OutcomeKind int

const (
	// NoException исключения нет, используется недельное правило
	NoException OutcomeKind = iota
	// FullyUnavailable барбер недоступен весь день (время исключения игнорируется)
	FullyUnavailable
	// SpecialHours разовый интервал, заменяющий недельное правило
	SpecialHours
	// FullyAvailableAllDay доступен весь день в пределах настроенного дня по умолчанию
	FullyAvailableAllDay
)

func (k OutcomeKind) String() string {
	switch k {
	case NoException:
		return "no_exception"
	case FullyUnavailable:
		return "fully_unavailable"
	case SpecialHours:
		return "special_hours"
	case FullyAvailableAllDay:
		return "fully_available_all_day"
	default:
		return "unknown"
	}
}

// ExceptionOutcome результат разбора исключения на дату
// Interval заполнен только для SpecialHours
type ExceptionOutcome struct {
	Kind      OutcomeKind
	Interval  domain.TimeInterval
	Exception *domain.ScheduleException
}

// ResolveException определяет, что исключение диктует для даты
// Недоступность всегда побеждает, независимо от allDay и полей времени
func ResolveException(src ScheduleSource, barberID int64, date time.Time) ExceptionOutcome {
	exc, ok := src.GetException(barberID, date)
	if !ok {
		return ExceptionOutcome{Kind: NoException}
	}

	if !exc.IsAvailable {
		return ExceptionOutcome{Kind: FullyUnavailable, Exception: exc}
	}

	if exc.AllDay {
		return ExceptionOutcome{Kind: FullyAvailableAllDay, Exception: exc}
	}

	// Записи проходят ValidateException, но снимок из БД мог сохраниться без часов
	if exc.StartTime == nil || exc.EndTime == nil {
		return ExceptionOutcome{Kind: FullyUnavailable, Exception: exc}
	}

	return ExceptionOutcome{
		Kind:      SpecialHours,
		Interval:  domain.TimeInterval{Start: *exc.StartTime, End: *exc.EndTime},
		Exception: exc,
	}
}
