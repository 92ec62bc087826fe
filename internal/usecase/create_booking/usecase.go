package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/infra/cache/idempotency"
	bookingRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/booking"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	catalogClient "github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// Причины отказа для метрики конфликтов
const (
	conflictSlotTaken   = "slot_taken"
	conflictUnavailable = "barber_unavailable"
	conflictInvalidSlot = "invalid_slot"
	conflictTooLate     = "too_late"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	scheduleRepo     ScheduleRepository
	exceptionRepo    ExceptionRepository
	catalogClient    CatalogClient
	idempotencyStore IdempotencyStore
	txManager        TransactionManager
	engine           *availability.Engine
	settings         Settings
	metrics          Metrics
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	exceptionRepo ExceptionRepository,
	catalogClient CatalogClient,
	idempotencyStore IdempotencyStore,
	txManager TransactionManager,
	engine *availability.Engine,
	settings Settings,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		scheduleRepo:     scheduleRepo,
		exceptionRepo:    exceptionRepo,
		catalogClient:    catalogClient,
		idempotencyStore: idempotencyStore,
		txManager:        txManager,
		engine:           engine,
		settings:         settings,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Слот заново проверяется движком доступности внутри сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, barber=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	date := dateOnly(req.Date)

	// 2. Повтор запроса с тем же ключом возвращает уже созданное бронирование
	if req.IdempotencyKey != nil {
		replayed, err := uc.findReplay(ctx, req)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}

	// 3. Проверяем дату и минимальное время до записи
	now := uc.timeProvider.Now()
	if err := validateDate(date, now, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}
	if err := validateBookingTime(date, req.StartTime, now, uc.settings.MinBookingNoticeMinutes); err != nil {
		uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
		uc.metrics.IncBookingConflict(conflictTooLate)
		return nil, err
	}

	// 4. Проверяем барбера и получаем услугу
	if err := uc.checkBarber(ctx, req.BarberID); err != nil {
		return nil, err
	}

	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 5. Выполняем проверку и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Загружаем расписание барбера на дату
		src, err := uc.loadSchedule(txCtx, req.BarberID, date)
		if err != nil {
			return err
		}

		// 5.2. Получаем активные бронирования барбера на дату с блокировкой (FOR UPDATE)
		bookings, err := uc.bookingRepo.GetByBarberWithFilter(txCtx, domain.BarberBookingsFilter{
			BarberID:  req.BarberID,
			StartDate: &date,
			EndDate:   &date,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 5.3. Повторяем резолвинг, генерацию слотов и проверку конфликтов
		_, err = uc.engine.ValidateBooking(src, availability.BookingCheck{
			BarberID:               req.BarberID,
			Date:                   date,
			StartTime:              req.StartTime,
			ServiceDurationMinutes: service.DurationMinutes,
			Bookings:               bookings,
		})
		if err != nil {
			uc.logger.Warn("CreateBooking: slot %s %s rejected: %v", date.Format(domain.DateFormat), req.StartTime, err)
			return mapEngineError(err)
		}

		// 5.4. Создаем бронирование с денормализацией данных услуги
		booking := &domain.Booking{
			BarberID:        req.BarberID,
			ClientID:        req.ClientID,
			ServiceID:       req.ServiceID,
			BookingDate:     date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusPending,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
			Notes:           req.Notes,
			IdempotencyKey:  req.IdempotencyKey,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyTaken) {
				uc.logger.Warn("CreateBooking: slot %s %s taken concurrently", date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotNotAvailable
			}
			if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
				return err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Параллельный запрос с тем же ключом успел создать бронирование
		if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
			uc.logger.Info("CreateBooking: idempotency key raced for client=%d", req.ClientID)
			replayed, replayErr := uc.findReplay(ctx, req)
			if replayErr != nil {
				return nil, replayErr
			}
			if replayed != nil {
				return replayed, nil
			}
			return nil, fmt.Errorf("%w: duplicate idempotency key without booking", ErrInternal)
		}
		uc.recordConflict(err)
		return nil, err
	}

	// 6. Запоминаем ключ идемпотентности, ошибка кеша не отменяет бронирование
	if req.IdempotencyKey != nil {
		if _, err := uc.idempotencyStore.Remember(ctx, req.ClientID, *req.IdempotencyKey, result.ID); err != nil {
			uc.logger.Warn("CreateBooking: failed to remember idempotency key for booking id=%d: %v", result.ID, err)
		}
	}

	uc.metrics.IncBookingCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return toResponse(result, false), nil
}

// findReplay ищет бронирование, уже созданное клиентом с этим ключом: сначала в Redis, затем в БД
func (uc *UseCase) findReplay(ctx context.Context, req *Request) (*Response, error) {
	key := *req.IdempotencyKey

	var existing *domain.Booking
	bookingID, err := uc.idempotencyStore.Get(ctx, req.ClientID, key)
	switch {
	case err == nil:
		existing, err = uc.bookingRepo.GetByID(ctx, bookingID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: failed to load booking id=%d for replay: %v", bookingID, err)
			return nil, fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}
	case errors.Is(err, idempotency.ErrKeyNotFound):
	default:
		uc.logger.Warn("CreateBooking: idempotency store unavailable, falling back to database: %v", err)
	}

	if existing == nil {
		existing, err = uc.bookingRepo.GetByIdempotencyKey(ctx, req.ClientID, key)
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil
		}
		if err != nil {
			uc.logger.Error("CreateBooking: failed to look up idempotency key: %v", err)
			return nil, fmt.Errorf("%w: failed to look up idempotency key: %v", ErrInternal, err)
		}
		if _, err := uc.idempotencyStore.Remember(ctx, req.ClientID, key, existing.ID); err != nil {
			uc.logger.Warn("CreateBooking: failed to cache idempotency key: %v", err)
		}
	}

	if !matchesRequest(existing, req) {
		uc.logger.Warn("CreateBooking: idempotency key reused by client=%d for a different booking", req.ClientID)
		return nil, ErrIdempotencyKeyReused
	}

	uc.metrics.IncIdempotentReplay()
	uc.logger.Info("CreateBooking: replaying booking id=%d for client=%d", existing.ID, req.ClientID)

	return toResponse(existing, true), nil
}

// checkBarber проверяет, что барбер существует и принимает записи
func (uc *UseCase) checkBarber(ctx context.Context, barberID int64) error {
	barber, err := uc.catalogClient.GetBarber(ctx, barberID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			uc.logger.Warn("CreateBooking: barber id=%d not found", barberID)
			return ErrBarberNotFound
		}
		uc.logger.Error("CreateBooking: failed to get barber id=%d: %v", barberID, err)
		return fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}
	if !barber.IsActive {
		uc.logger.Warn("CreateBooking: barber id=%d is inactive", barberID)
		return ErrBarberNotFound
	}
	return nil
}

// loadSchedule собирает снимок расписания барбера: недельные правила и исключение на дату
func (uc *UseCase) loadSchedule(ctx context.Context, barberID int64, date time.Time) (availability.ScheduleSource, error) {
	rules, err := uc.scheduleRepo.GetByBarber(ctx, barberID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get weekly schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get weekly schedule: %w", ErrInternal, err)
	}

	var exceptions []*domain.ScheduleException
	exc, err := uc.exceptionRepo.GetByDate(ctx, barberID, date)
	switch {
	case err == nil:
		exceptions = append(exceptions, exc)
	case errors.Is(err, exceptionRepo.ErrExceptionNotFound):
	default:
		uc.logger.Error("CreateBooking: failed to get exception: %v", err)
		return nil, fmt.Errorf("%w: failed to get exception: %w", ErrInternal, err)
	}

	src, err := availability.NewSnapshot(rules, exceptions)
	if err != nil {
		uc.logger.Error("CreateBooking: stored schedule is invalid for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: invalid stored schedule: %v", ErrInternal, err)
	}

	return src, nil
}

// mapEngineError переводит ошибки движка доступности в ошибки use case
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, availability.ErrBarberUnavailable):
		return fmt.Errorf("%w: %v", ErrBarberUnavailable, err)
	case errors.Is(err, availability.ErrSlotAlreadyTaken):
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, availability.ErrOutsideWorkingHours), errors.Is(err, availability.ErrSlotNotOnGrid):
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	case errors.Is(err, availability.ErrInvalidConfiguration):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

// recordConflict учитывает отказ в метрике конфликтов
func (uc *UseCase) recordConflict(err error) {
	switch {
	case errors.Is(err, ErrSlotNotAvailable):
		uc.metrics.IncBookingConflict(conflictSlotTaken)
	case errors.Is(err, ErrBarberUnavailable):
		uc.metrics.IncBookingConflict(conflictUnavailable)
	case errors.Is(err, ErrInvalidTimeSlot):
		uc.metrics.IncBookingConflict(conflictInvalidSlot)
	}
}

func toResponse(b *domain.Booking, replayed bool) *Response {
	resp := &Response{
		ID:              b.ID,
		BarberID:        b.BarberID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		BookingDate:     b.BookingDate,
		StartTime:       b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Replayed:        replayed,
	}
	if end, err := b.EndTime(); err == nil {
		resp.EndTime = end
	}
	return resp
}
