package domain

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a client appointment with a barber
type Booking struct {
	ID              int64
	BarberID        int64
	ClientID        int64
	ServiceID       int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Notes        *string

	// Ключ идемпотентности клиента (Idempotency-Key), если был передан
	IdempotencyKey *string

	CancellationReason *string
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies barber time
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsCompleted returns true if the service was delivered
func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// EndTime returns the time the booking releases the barber
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// BarberBookingsFilter фильтр для получения бронирований барбера
type BarberBookingsFilter struct {
	BarberID        int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально, если nil - без ограничения)
	EndDate         *time.Time     // Конец периода (опционально, если nil - без ограничения)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
}

// IsSingleDay returns true if the filter targets exactly one date
func (f BarberBookingsFilter) IsSingleDay() bool {
	return f.StartDate != nil && f.EndDate != nil && f.StartDate.Equal(*f.EndDate)
}

// StatusStats количество бронирований и сумма цен услуг в одном статусе
type StatusStats struct {
	Count   int
	Revenue float64
}

// BookingStats сводка по бронированиям барбера за период
type BookingStats struct {
	BarberID  int64
	StartDate time.Time
	EndDate   time.Time
	ByStatus  map[BookingStatus]StatusStats
}

// ActiveCount количество неотменённых бронирований
func (s BookingStats) ActiveCount() int {
	total := 0
	for status, stats := range s.ByStatus {
		if status != StatusCancelled {
			total += stats.Count
		}
	}
	return total
}

// CompletedRevenue выручка по завершённым бронированиям
func (s BookingStats) CompletedRevenue() float64 {
	return s.ByStatus[StatusCompleted].Revenue
}

// ExpectedRevenue выручка с учётом ещё не оказанных услуг (pending и confirmed)
func (s BookingStats) ExpectedRevenue() float64 {
	total := 0.0
	for status, stats := range s.ByStatus {
		if status != StatusCancelled {
			total += stats.Revenue
		}
	}
	return total
}
