package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BarberService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Клиент видит только свои бронирования, барбер - записи к себе, администратор - все
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.UserID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !canSee(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetClientBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, status=%v", req.ClientID, req.Status)

	if req.Actor.UserID != req.ClientID && req.Actor.Role != domain.RoleAdmin {
		s.logger.Warn("GetClientBookings: user=%d cannot see bookings of client=%d", req.Actor.UserID, req.ClientID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientBookings: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByClientID(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientBookings: fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetBarberBookings получает расписание записей барбера с фильтрацией по периоду и статусу
// Доступно самому барберу и администратору
func (s *Service) GetBarberBookings(ctx context.Context, req *models.GetBarberBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetBarberBookings: fetching bookings for barber=%d by user=%d", req.BarberID, req.Actor.UserID)

	if !req.Actor.CanManageBarber(req.BarberID) {
		s.logger.Warn("GetBarberBookings: user=%d role=%s cannot see barber=%d", req.Actor.UserID, req.Actor.Role, req.BarberID)
		return nil, ErrAccessDenied
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBarberBookings: invalid filter for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByBarberWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBarberBookings: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: GetBarberBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBarberBookings: fetched %d bookings for barber=%d", len(bookings), req.BarberID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование, освобождая время барбера
// Отменить может клиент-владелец, барбер записи или администратор
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.Actor.UserID)

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return err
	}

	if !canSee(booking, req.Actor) {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.Actor.UserID, bookingID)
		return ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason); err != nil {
		// Статус мог измениться между чтением и обновлением
		if errors.Is(err, bookingRepo.ErrCannotCancel) {
			s.logger.Warn("Cancel: booking id=%d changed status concurrently", bookingID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// statusTransitions допустимые переходы статусов, кроме отмены
var statusTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.StatusConfirmed: {domain.StatusPending},
	domain.StatusCompleted: {domain.StatusConfirmed},
}

// UpdateStatus подтверждает или завершает бронирование
// Доступно барберу записи и администратору, отмена выполняется через Cancel
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: booking id=%d to status=%s by user=%d", bookingID, req.Status, req.Actor.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	from, ok := statusTransitions[newStatus]
	if !ok {
		s.logger.Warn("UpdateStatus: status=%s cannot be set directly", newStatus)
		return nil, ErrInvalidStatusTransition
	}

	booking, err := s.getBooking(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return nil, err
	}

	if !req.Actor.CanManageBarber(booking.BarberID) {
		s.logger.Warn("UpdateStatus: access denied for user=%d to booking id=%d", req.Actor.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrInvalidStatusTransition) {
			s.logger.Warn("UpdateStatus: booking id=%d in status=%s cannot become %s", bookingID, booking.Status, newStatus)
			return nil, ErrInvalidStatusTransition
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	updated, err := s.getBooking(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: booking id=%d is now %s", bookingID, updated.Status)
	return models.FromDomainBooking(updated), nil
}

// maxStatsDays максимальная длина периода для сводки, включительно
const maxStatsDays = 366

// GetBarberStats считает бронирования и выручку барбера за период [from, to]
// Доступно самому барберу и администратору
func (s *Service) GetBarberStats(ctx context.Context, req *models.GetBarberStatsRequest) (*models.BarberStatsResponse, error) {
	s.logger.Info("GetBarberStats: barber=%d %s..%s by user=%d", req.BarberID,
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.Actor.UserID)

	if !req.Actor.CanManageBarber(req.BarberID) {
		s.logger.Warn("GetBarberStats: user=%d role=%s cannot see barber=%d", req.Actor.UserID, req.Actor.Role, req.BarberID)
		return nil, ErrAccessDenied
	}

	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}
	if req.EndDate.After(req.StartDate.AddDate(0, 0, maxStatsDays-1)) {
		return nil, fmt.Errorf("%w: period is longer than %d days", ErrInvalidInput, maxStatsDays)
	}

	stats, err := s.bookingRepo.GetStats(ctx, req.BarberID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Error("GetBarberStats: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: GetBarberStats - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStats(stats), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// canSee проверяет, что пользователь участвует в бронировании или является администратором
func canSee(booking *domain.Booking, actor domain.Actor) bool {
	if actor.Role == domain.RoleClient || actor.Role == "" {
		return booking.ClientID == actor.UserID
	}
	return booking.ClientID == actor.UserID || actor.CanManageBarber(booking.BarberID)
}
