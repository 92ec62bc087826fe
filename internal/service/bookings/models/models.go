package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              domain.Actor `json:"-"`
	CancellationReason *string      `json:"cancellationReason,omitempty"`
}

// UpdateStatusRequest запрос барбера на подтверждение или завершение записи
type UpdateStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// GetClientBookingsRequest запрос на получение истории бронирований клиента
type GetClientBookingsRequest struct {
	Actor    domain.Actor `json:"-"`
	ClientID int64        `json:"clientId"`
	Status   *string      `json:"status,omitempty"`
}

// GetBarberBookingsRequest запрос на получение бронирований барбера
type GetBarberBookingsRequest struct {
	Actor           domain.Actor `json:"-"`
	BarberID        int64        `json:"barberId"`
	StartDate       *time.Time   `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time   `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string      `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool         `json:"includeInactive,omitempty"` // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBarberBookingsRequest) ToDomainFilter() (domain.BarberBookingsFilter, error) {
	filter := domain.BarberBookingsFilter{
		BarberID:        r.BarberID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// GetBarberStatsRequest запрос сводки по бронированиям барбера за период
type GetBarberStatsRequest struct {
	Actor     domain.Actor `json:"-"`
	BarberID  int64        `json:"barberId"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	BarberID        int64  `json:"barberId"`
	ClientID        int64  `json:"clientId"`
	ServiceID       int64  `json:"serviceId"`
	BookingDate     string `json:"bookingDate"` // "2025-10-15"
	StartTime       string `json:"startTime"`   // "10:00"
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Notes        *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BarberStatsResponse сводка по бронированиям барбера
type BarberStatsResponse struct {
	BarberID          int64          `json:"barberId"`
	StartDate         string         `json:"startDate"`
	EndDate           string         `json:"endDate"`
	TotalBookings     int            `json:"totalBookings"` // Без отменённых
	CompletedBookings int            `json:"completedBookings"`
	CancelledBookings int            `json:"cancelledBookings"`
	ByStatus          map[string]int `json:"byStatus"`
	Revenue           float64        `json:"revenue"`         // Только завершённые
	ExpectedRevenue   float64        `json:"expectedRevenue"` // Все неотменённые
}

// Методы конвертации

// FromDomainStats конвертирует сводку в DTO
func FromDomainStats(stats *domain.BookingStats) *BarberStatsResponse {
	resp := &BarberStatsResponse{
		BarberID:          stats.BarberID,
		StartDate:         stats.StartDate.Format(domain.DateFormat),
		EndDate:           stats.EndDate.Format(domain.DateFormat),
		TotalBookings:     stats.ActiveCount(),
		CompletedBookings: stats.ByStatus[domain.StatusCompleted].Count,
		CancelledBookings: stats.ByStatus[domain.StatusCancelled].Count,
		ByStatus:          make(map[string]int, len(stats.ByStatus)),
		Revenue:           stats.CompletedRevenue(),
		ExpectedRevenue:   stats.ExpectedRevenue(),
	}

	for status, s := range stats.ByStatus {
		resp.ByStatus[string(status)] = s.Count
	}

	return resp
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		BarberID:           b.BarberID,
		ClientID:           b.ClientID,
		ServiceID:          b.ServiceID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		ServiceName:        b.ServiceName,
		ServicePrice:       b.ServicePrice,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if end, err := b.EndTime(); err == nil {
		resp.EndTime = end.String()
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	for _, valid := range domain.AllStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
