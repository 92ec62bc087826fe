package availability

import (
	"iter"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aStart+aDur) и [bStart, bStart+bDur)
// Граничащие интервалы (один заканчивается, когда начинается другой) не пересекаются
func Overlaps(aStart, aDuration, bStart, bDuration int) bool {
	return aStart < bStart+bDuration && bStart < aStart+aDuration
}

// busyInterval занятый интервал в минутах от полуночи
type busyInterval struct {
	start    int
	duration int
}

// busyIntervals собирает интервалы активных бронирований
// Бронирования с некорректным временем пропускаются
func busyIntervals(bookings []*domain.Booking) []busyInterval {
	busy := make([]busyInterval, 0, len(bookings))
	for _, booking := range bookings {
		if booking == nil || !booking.IsActive() {
			continue
		}
		start, err := booking.StartTime.Minutes()
		if err != nil {
			continue
		}
		busy = append(busy, busyInterval{start: start, duration: booking.DurationMinutes})
	}
	return busy
}

func conflicts(slotStart, serviceDuration int, busy []busyInterval) bool {
	for _, b := range busy {
		if Overlaps(slotStart, serviceDuration, b.start, b.duration) {
			return true
		}
	}
	return false
}

// FilterAvailable убирает кандидатов, строго пересекающихся с существующими бронированиями
func FilterAvailable(candidates iter.Seq[types.TimeString], bookings []*domain.Booking, serviceDurationMinutes int) []types.TimeString {
	busy := busyIntervals(bookings)

	result := make([]types.TimeString, 0)
	for slot := range candidates {
		start, err := slot.Minutes()
		if err != nil {
			continue
		}
		if conflicts(start, serviceDurationMinutes, busy) {
			continue
		}
		result = append(result, slot)
	}
	return result
}

// FindConflict возвращает первое активное бронирование, пересекающееся с [start, start+duration)
func FindConflict(start types.TimeString, serviceDurationMinutes int, bookings []*domain.Booking) (*domain.Booking, bool) {
	slotStart, err := start.Minutes()
	if err != nil {
		return nil, false
	}

	for _, booking := range bookings {
		if booking == nil || !booking.IsActive() {
			continue
		}
		bookingStart, err := booking.StartTime.Minutes()
		if err != nil {
			continue
		}
		if Overlaps(slotStart, serviceDurationMinutes, bookingStart, booking.DurationMinutes) {
			return booking, true
		}
	}
	return nil, false
}
