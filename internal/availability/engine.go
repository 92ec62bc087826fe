package availability

import (
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Config параметры движка доступности
type Config struct {
	// DefaultDay интервал для исключений "доступен весь день"
	DefaultDay domain.TimeInterval
	// GranularityMinutes шаг сетки слотов
	GranularityMinutes int
}

// Engine связывает резолвер, генератор слотов и проверку конфликтов с настройками сервиса
// Engine не хранит состояния запроса и безопасен для конкурентного использования
type Engine struct {
	cfg Config
}

// NewEngine создает движок, проверяя конфигурацию
func NewEngine(cfg Config) (*Engine, error) {
	if err := ValidateInterval(cfg.DefaultDay); err != nil {
		return nil, fmt.Errorf("default day: %w", err)
	}
	if cfg.GranularityMinutes <= 0 {
		return nil, fmt.Errorf("%w: granularity must be positive, got %d", ErrInvalidConfiguration, cfg.GranularityMinutes)
	}
	return &Engine{cfg: cfg}, nil
}

// GranularityMinutes возвращает шаг сетки слотов
func (e *Engine) GranularityMinutes() int {
	return e.cfg.GranularityMinutes
}

// Resolve вычисляет эффективную доступность барбера на дату
func (e *Engine) Resolve(src ScheduleSource, barberID int64, date time.Time) (domain.EffectiveDayAvailability, error) {
	resolver, err := NewResolver(src, e.cfg.DefaultDay)
	if err != nil {
		return domain.EffectiveDayAvailability{}, err
	}
	return resolver.Resolve(barberID, date)
}

// SlotsQuery параметры расчёта свободных слотов на дату
type SlotsQuery struct {
	BarberID               int64
	Date                   time.Time
	ServiceDurationMinutes int
	Bookings               []*domain.Booking
	// NotBefore опционально отсекает слоты раньше указанного времени (минимальное время до записи)
	NotBefore *types.TimeString
}

// DaySlots результат расчёта: эффективная доступность и свободные слоты
type DaySlots struct {
	Availability domain.EffectiveDayAvailability
	Slots        []domain.AvailableSlot
}

// AvailableSlots выполняет полный конвейер: резолвинг, генерация слотов, фильтрация по бронированиям
// Для недоступного дня генератор не вызывается и список слотов пуст
func (e *Engine) AvailableSlots(src ScheduleSource, q SlotsQuery) (DaySlots, error) {
	avail, err := e.Resolve(src, q.BarberID, q.Date)
	if err != nil {
		return DaySlots{}, err
	}

	result := DaySlots{Availability: avail, Slots: []domain.AvailableSlot{}}
	if !avail.IsAvailable {
		return result, nil
	}

	candidates, err := GenerateSlots(*avail.Interval, e.cfg.GranularityMinutes, q.ServiceDurationMinutes)
	if err != nil {
		return DaySlots{}, err
	}
	if q.NotBefore != nil {
		candidates = NotBefore(candidates, *q.NotBefore)
	}

	for _, start := range FilterAvailable(candidates, q.Bookings, q.ServiceDurationMinutes) {
		end, err := start.AddMinutes(q.ServiceDurationMinutes)
		if err != nil {
			return DaySlots{}, fmt.Errorf("%w: slot %s: %v", ErrInvalidConfiguration, start, err)
		}
		result.Slots = append(result.Slots, domain.AvailableSlot{
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: q.ServiceDurationMinutes,
		})
	}

	return result, nil
}

// BookingCheck параметры проверки бронирования
type BookingCheck struct {
	BarberID               int64
	Date                   time.Time
	StartTime              types.TimeString
	ServiceDurationMinutes int
	Bookings               []*domain.Booking
}

// ValidateBooking повторно выполняет резолвинг, генерацию и проверку конфликтов для запрошенного слота
// Слот, присланный клиентом, не считается доверенным
func (e *Engine) ValidateBooking(src ScheduleSource, check BookingCheck) (domain.EffectiveDayAvailability, error) {
	avail, err := e.Resolve(src, check.BarberID, check.Date)
	if err != nil {
		return avail, err
	}
	if !avail.IsAvailable {
		return avail, ErrBarberUnavailable
	}

	if err := check.StartTime.Validate(); err != nil {
		return avail, fmt.Errorf("%w: startTime: %v", ErrInvalidConfiguration, err)
	}
	start, err := check.StartTime.Minutes()
	if err != nil {
		return avail, fmt.Errorf("%w: startTime: %v", ErrInvalidConfiguration, err)
	}

	candidates, err := GenerateSlots(*avail.Interval, e.cfg.GranularityMinutes, check.ServiceDurationMinutes)
	if err != nil {
		return avail, err
	}

	if !slices.Contains(slices.Collect(candidates), check.StartTime) {
		open, closeAt, err := intervalMinutes(*avail.Interval)
		if err != nil {
			return avail, err
		}
		return avail, e.explainMissingSlot(*avail.Interval, open, closeAt, start, check)
	}

	if conflict, ok := FindConflict(check.StartTime, check.ServiceDurationMinutes, check.Bookings); ok {
		return avail, fmt.Errorf("%w: overlaps booking id=%d at %s", ErrSlotAlreadyTaken, conflict.ID, conflict.StartTime)
	}

	return avail, nil
}

// explainMissingSlot различает выход за рабочие часы и несовпадение с сеткой
func (e *Engine) explainMissingSlot(interval domain.TimeInterval, open, closeAt, start int, check BookingCheck) error {
	if start < open || start+check.ServiceDurationMinutes > closeAt {
		return fmt.Errorf("%w: %s+%dmin is outside %s-%s",
			ErrOutsideWorkingHours, check.StartTime, check.ServiceDurationMinutes, interval.Start, interval.End)
	}
	return fmt.Errorf("%w: %s is not on a %d-minute grid from %s",
		ErrSlotNotOnGrid, check.StartTime, e.cfg.GranularityMinutes, interval.Start)
}
