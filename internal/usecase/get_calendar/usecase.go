package get_calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	catalogClient "github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// UseCase use case для построения календаря доступности барбера
type UseCase struct {
	scheduleRepo  ScheduleRepository
	exceptionRepo ExceptionRepository
	catalogClient CatalogClient
	txManager     TransactionManager
	engine        *availability.Engine
	maxDays       int
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	exceptionRepo ExceptionRepository,
	catalogClient CatalogClient,
	txManager TransactionManager,
	engine *availability.Engine,
	maxDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:  scheduleRepo,
		exceptionRepo: exceptionRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		engine:        engine,
		maxDays:       maxDays,
		logger:        logger,
	}
}

// Execute вычисляет эффективную доступность на каждый день периода [From, To]
// Расписание и исключения загружаются один раз на весь период
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetCalendar: barber=%d, from=%s, to=%s",
		req.BarberID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	// 1. Валидация периода
	from, to, err := uc.validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetCalendar: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем барбера
	barber, err := uc.catalogClient.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			uc.logger.Warn("GetCalendar: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("GetCalendar: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}
	if !barber.IsActive {
		return nil, ErrBarberNotFound
	}

	// 3. Загружаем правила и исключения за период в одной read-only транзакции
	var (
		rules      []*domain.WeeklyScheduleRule
		exceptions []*domain.ScheduleException
	)
	err = uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rules, err = uc.scheduleRepo.GetByBarber(ctx, req.BarberID)
		if err != nil {
			return fmt.Errorf("failed to get weekly schedule: %w", err)
		}
		exceptions, err = uc.exceptionRepo.ListByRange(ctx, req.BarberID, &from, &to)
		if err != nil {
			return fmt.Errorf("failed to get exceptions: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("GetCalendar: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	src, err := availability.NewSnapshot(rules, exceptions)
	if err != nil {
		uc.logger.Error("GetCalendar: stored schedule is invalid for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: invalid stored schedule: %v", ErrInternal, err)
	}

	// 4. Резолвим каждый день периода
	days := make([]domain.EffectiveDayAvailability, 0, int(to.Sub(from).Hours()/24)+1)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		avail, err := uc.engine.Resolve(src, req.BarberID, date)
		if err != nil {
			uc.logger.Error("GetCalendar: failed to resolve %s: %v", date.Format(domain.DateFormat), err)
			return nil, fmt.Errorf("%w: failed to resolve %s: %v", ErrInternal, date.Format(domain.DateFormat), err)
		}
		days = append(days, avail)
	}

	uc.logger.Info("GetCalendar: resolved %d days for barber=%d", len(days), req.BarberID)

	return &Response{BarberID: req.BarberID, Days: days}, nil
}

// validateRequest проверяет период и приводит границы к датам в UTC
func (uc *UseCase) validateRequest(req *Request) (time.Time, time.Time, error) {
	if req.BarberID <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}
	if req.From.IsZero() || req.To.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	y, m, d := req.From.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = req.To.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}
	if uc.maxDays > 0 && from.AddDate(0, 0, uc.maxDays-1).Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: period is limited to %d days", ErrInvalidInput, uc.maxDays)
	}

	return from, to, nil
}
