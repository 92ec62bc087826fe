package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	catalogClient "github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	exceptionRepo ExceptionRepository
	catalogClient CatalogClient
	engine        *availability.Engine
	settings      Settings
	metrics       Metrics
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	exceptionRepo ExceptionRepository,
	catalogClient CatalogClient,
	engine *availability.Engine,
	settings Settings,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		scheduleRepo:  scheduleRepo,
		exceptionRepo: exceptionRepo,
		catalogClient: catalogClient,
		engine:        engine,
		settings:      settings,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: barber=%d, service=%d, date=%s",
		req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}
	date := dateOnly(req.Date)

	// 2. Получаем текущее время и проверяем дату
	now := uc.timeProvider.Now()
	if err := validateDate(date, now, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Проверяем барбера
	barber, err := uc.catalogClient.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			uc.logger.Warn("GetAvailableSlots: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}
	if !barber.IsActive {
		uc.logger.Warn("GetAvailableSlots: barber id=%d is inactive", req.BarberID)
		return nil, ErrBarberNotFound
	}

	// 4. Получаем услугу, её длительность задаёт размер слота
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 5. Загружаем расписание барбера на дату
	src, err := uc.loadSchedule(ctx, req.BarberID, date)
	if err != nil {
		return nil, err
	}

	// 6. Получаем активные бронирования на эту дату
	bookings, err := uc.bookingRepo.GetByBarberWithFilter(ctx, domain.BarberBookingsFilter{
		BarberID:  req.BarberID,
		StartDate: &date,
		EndDate:   &date,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 7. Для сегодняшней даты отсекаем слоты с учетом minBookingNoticeMinutes
	notBefore, exhausted := earliestStart(date, now, uc.settings.MinBookingNoticeMinutes)

	// 8. Считаем свободные слоты
	daySlots, err := uc.engine.AvailableSlots(src, availability.SlotsQuery{
		BarberID:               req.BarberID,
		Date:                   date,
		ServiceDurationMinutes: service.DurationMinutes,
		Bookings:               bookings,
		NotBefore:              notBefore,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}
	if exhausted {
		daySlots.Slots = []domain.AvailableSlot{}
	}

	uc.metrics.ObserveAvailableSlots(len(daySlots.Slots))
	uc.logger.Info("GetAvailableSlots: %d slots for barber=%d, service=%d, date=%s, source=%s",
		len(daySlots.Slots), req.BarberID, req.ServiceID, date.Format(domain.DateFormat), daySlots.Availability.Source)

	return &Response{
		Date:                   date,
		BarberID:               req.BarberID,
		ServiceID:              req.ServiceID,
		ServiceDurationMinutes: service.DurationMinutes,
		Availability:           daySlots.Availability,
		Slots:                  daySlots.Slots,
	}, nil
}

// loadSchedule собирает снимок расписания барбера: недельные правила и исключение на дату
func (uc *UseCase) loadSchedule(ctx context.Context, barberID int64, date time.Time) (availability.ScheduleSource, error) {
	rules, err := uc.scheduleRepo.GetByBarber(ctx, barberID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get weekly schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get weekly schedule: %v", ErrInternal, err)
	}

	var exceptions []*domain.ScheduleException
	exc, err := uc.exceptionRepo.GetByDate(ctx, barberID, date)
	switch {
	case err == nil:
		exceptions = append(exceptions, exc)
	case errors.Is(err, exceptionRepo.ErrExceptionNotFound):
	default:
		uc.logger.Error("GetAvailableSlots: failed to get exception: %v", err)
		return nil, fmt.Errorf("%w: failed to get exception: %v", ErrInternal, err)
	}

	src, err := availability.NewSnapshot(rules, exceptions)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: stored schedule is invalid for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: invalid stored schedule: %v", ErrInternal, err)
	}

	return src, nil
}
