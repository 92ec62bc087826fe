package availability

import (
	"fmt"
	"iter"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// GenerateSlots перечисляет времена начала слотов в интервале
// Слоты идут с шагом granularityMinutes от interval.Start, последний слот заканчивается
// (start + serviceDurationMinutes) не позже interval.End
// Последовательность ленивая и может обходиться повторно
// Пустой или перевёрнутый интервал даёт пустую последовательность
func GenerateSlots(interval domain.TimeInterval, granularityMinutes, serviceDurationMinutes int) (iter.Seq[types.TimeString], error) {
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("%w: granularity must be positive, got %d", ErrInvalidConfiguration, granularityMinutes)
	}
	if serviceDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service duration must be positive, got %d", ErrInvalidConfiguration, serviceDurationMinutes)
	}

	start, end, err := intervalMinutes(interval)
	if err != nil {
		return nil, err
	}

	return func(yield func(types.TimeString) bool) {
		for m := start; m+serviceDurationMinutes <= end; m += granularityMinutes {
			slot, err := types.NewTimeStringFromMinutes(m)
			if err != nil {
				return
			}
			if !yield(slot) {
				return
			}
		}
	}, nil
}

// NotBefore отбрасывает слоты, начинающиеся раньше earliest
func NotBefore(slots iter.Seq[types.TimeString], earliest types.TimeString) iter.Seq[types.TimeString] {
	return func(yield func(types.TimeString) bool) {
		for slot := range slots {
			if slot.IsBefore(earliest) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// intervalMinutes переводит границы интервала в минуты от начала суток
func intervalMinutes(interval domain.TimeInterval) (int, int, error) {
	open, err := interval.Start.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: interval start: %v", ErrInvalidConfiguration, err)
	}
	closeAt, err := interval.End.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: interval end: %v", ErrInvalidConfiguration, err)
	}
	return open, closeAt, nil
}
