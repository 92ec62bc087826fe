package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	scheduleRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule/models"
)

// Service сервис управления расписанием барберов: недельные правила и исключения
type Service struct {
	scheduleRepo  ScheduleRepository
	exceptionRepo ExceptionRepository
	catalog       CatalogClient
	txManager     TxManager
	validator     *validator.Validate
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	exceptionRepo ExceptionRepository,
	catalog CatalogClient,
	txManager TxManager,
	validate *validator.Validate,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepo,
		exceptionRepo: exceptionRepo,
		catalog:       catalog,
		txManager:     txManager,
		validator:     registerValidations(validate),
		logger:        logger,
	}
}

// GetWeeklySchedule получает недельное расписание барбера
// Дни без правила в ответе отсутствуют и считаются нерабочими
func (s *Service) GetWeeklySchedule(ctx context.Context, barberID int64) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("GetWeeklySchedule: fetching schedule for barber=%d", barberID)

	rules, err := s.scheduleRepo.GetByBarber(ctx, barberID)
	if err != nil {
		s.logger.Error("GetWeeklySchedule: repository error for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRules(barberID, rules), nil
}

// ReplaceWeeklySchedule полностью заменяет недельное расписание барбера
// Доступно барберу (только своё расписание) и администратору
func (s *Service) ReplaceWeeklySchedule(ctx context.Context, req *models.ReplaceWeekRequest) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("ReplaceWeeklySchedule: barber=%d, rules=%d by user=%d", req.BarberID, len(req.Rules), req.Actor.UserID)

	// 1. Валидируем формат запроса
	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("ReplaceWeeklySchedule: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем права доступа и существование барбера
	if err := s.authorize(ctx, "ReplaceWeeklySchedule", req.Actor, req.BarberID); err != nil {
		return nil, err
	}

	// 3. Проверяем правила целиком до записи: некорректная неделя не должна частично сохраниться
	rules := make([]*domain.WeeklyScheduleRule, 0, len(req.Rules))
	for _, r := range req.Rules {
		rules = append(rules, r.ToDomainRule(req.BarberID))
	}
	if err := availability.NewMemoryStore().ReplaceWeek(req.BarberID, rules); err != nil {
		s.logger.Warn("ReplaceWeeklySchedule: invalid rules for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Удаляем старую неделю и записываем новую в одной транзакции
	var saved []*domain.WeeklyScheduleRule
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.scheduleRepo.ReplaceWeek(ctx, req.BarberID, rules)
		return err
	})
	if err != nil {
		s.logger.Error("ReplaceWeeklySchedule: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: ReplaceWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceWeeklySchedule: saved %d rules for barber=%d", len(saved), req.BarberID)
	return models.FromDomainRules(req.BarberID, saved), nil
}

// UpsertWeeklyRule создает или заменяет правило на один день недели
func (s *Service) UpsertWeeklyRule(ctx context.Context, req *models.UpsertWeeklyRuleRequest) (*models.UpsertWeeklyRuleResponse, error) {
	s.logger.Info("UpsertWeeklyRule: barber=%d by user=%d", req.BarberID, req.Actor.UserID)

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("UpsertWeeklyRule: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.authorize(ctx, "UpsertWeeklyRule", req.Actor, req.BarberID); err != nil {
		return nil, err
	}

	rule := req.Rule.ToDomainRule(req.BarberID)
	if err := availability.ValidateWeeklyRule(rule); err != nil {
		s.logger.Warn("UpsertWeeklyRule: invalid rule for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, replaced, err := s.scheduleRepo.Upsert(ctx, rule)
	if err != nil {
		s.logger.Error("UpsertWeeklyRule: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: UpsertWeeklyRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertWeeklyRule: barber=%d day=%d replaced=%t", req.BarberID, saved.DayOfWeek, replaced)
	return &models.UpsertWeeklyRuleResponse{Rule: models.FromDomainRule(saved), Replaced: replaced}, nil
}

// DeleteWeeklyRule удаляет правило на день недели, день становится нерабочим
func (s *Service) DeleteWeeklyRule(ctx context.Context, actor domain.Actor, barberID int64, dayOfWeek int) error {
	s.logger.Info("DeleteWeeklyRule: barber=%d day=%d by user=%d", barberID, dayOfWeek, actor.UserID)

	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("%w: day of week must be in [0, 6], got %d", ErrInvalidInput, dayOfWeek)
	}

	if err := s.authorize(ctx, "DeleteWeeklyRule", actor, barberID); err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, barberID, dayOfWeek); err != nil {
		if errors.Is(err, scheduleRepo.ErrRuleNotFound) {
			s.logger.Warn("DeleteWeeklyRule: no rule for barber=%d on day=%d", barberID, dayOfWeek)
			return ErrRuleNotFound
		}
		s.logger.Error("DeleteWeeklyRule: repository error for barber=%d: %v", barberID, err)
		return fmt.Errorf("%w: DeleteWeeklyRule - repository error: %v", ErrInternal, err)
	}

	return nil
}

// GetExceptions получает исключения барбера, опционально в периоде [from, to]
func (s *Service) GetExceptions(ctx context.Context, barberID int64, from, to *time.Time) (*models.ExceptionListResponse, error) {
	s.logger.Info("GetExceptions: fetching exceptions for barber=%d", barberID)

	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}

	exceptions, err := s.exceptionRepo.ListByRange(ctx, barberID, from, to)
	if err != nil {
		s.logger.Error("GetExceptions: repository error for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: GetExceptions - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainExceptions(exceptions), nil
}

// UpsertException создает или заменяет исключение на дату, последняя запись побеждает
func (s *Service) UpsertException(ctx context.Context, req *models.UpsertExceptionRequest) (*models.UpsertExceptionResponse, error) {
	s.logger.Info("UpsertException: barber=%d date=%s by user=%d", req.BarberID, req.Exception.Date, req.Actor.UserID)

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("UpsertException: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.authorize(ctx, "UpsertException", req.Actor, req.BarberID); err != nil {
		return nil, err
	}

	exc, err := req.Exception.ToDomainException(req.BarberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := availability.ValidateException(exc); err != nil {
		s.logger.Warn("UpsertException: invalid exception for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, replaced, err := s.exceptionRepo.Upsert(ctx, exc)
	if err != nil {
		s.logger.Error("UpsertException: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: UpsertException - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertException: barber=%d date=%s replaced=%t", req.BarberID, req.Exception.Date, replaced)
	return &models.UpsertExceptionResponse{Exception: models.FromDomainException(saved), Replaced: replaced}, nil
}

// CreateExceptionRange создает одинаковые исключения на каждую подходящую дату диапазона
// Все даты записываются в одной транзакции
func (s *Service) CreateExceptionRange(ctx context.Context, req *models.ExceptionRangeRequest) (*models.ExceptionRangeResponse, error) {
	s.logger.Info("CreateExceptionRange: barber=%d %s..%s by user=%d", req.BarberID, req.StartDate, req.EndDate, req.Actor.UserID)

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("CreateExceptionRange: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.authorize(ctx, "CreateExceptionRange", req.Actor, req.BarberID); err != nil {
		return nil, err
	}

	rangeReq, err := req.ToRangeRequest()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	exceptions, err := availability.ExpandRange(rangeReq)
	if err != nil {
		s.logger.Warn("CreateExceptionRange: invalid range for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp := &models.ExceptionRangeResponse{Exceptions: make([]models.ExceptionResponse, 0, len(exceptions))}
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		for _, exc := range exceptions {
			saved, replaced, err := s.exceptionRepo.Upsert(ctx, exc)
			if err != nil {
				return err
			}
			if replaced {
				resp.Replaced++
			} else {
				resp.Created++
			}
			resp.Exceptions = append(resp.Exceptions, models.FromDomainException(saved))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("CreateExceptionRange: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: CreateExceptionRange - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateExceptionRange: barber=%d created=%d replaced=%d", req.BarberID, resp.Created, resp.Replaced)
	return resp, nil
}

// DeleteException удаляет исключение на дату, после чего снова действует недельное правило
func (s *Service) DeleteException(ctx context.Context, actor domain.Actor, barberID int64, date time.Time) error {
	s.logger.Info("DeleteException: barber=%d date=%s by user=%d", barberID, date.Format(domain.DateFormat), actor.UserID)

	if err := s.authorize(ctx, "DeleteException", actor, barberID); err != nil {
		return err
	}

	if err := s.exceptionRepo.Delete(ctx, barberID, date); err != nil {
		if errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			s.logger.Warn("DeleteException: no exception for barber=%d on %s", barberID, date.Format(domain.DateFormat))
			return ErrExceptionNotFound
		}
		s.logger.Error("DeleteException: repository error for barber=%d: %v", barberID, err)
		return fmt.Errorf("%w: DeleteException - repository error: %v", ErrInternal, err)
	}

	return nil
}

// Вспомогательные методы

// authorize проверяет права на расписание барбера и его наличие в каталоге
func (s *Service) authorize(ctx context.Context, op string, actor domain.Actor, barberID int64) error {
	if !actor.CanManageBarber(barberID) {
		s.logger.Warn("%s: user=%d role=%s cannot manage barber=%d", op, actor.UserID, actor.Role, barberID)
		return ErrAccessDenied
	}

	if _, err := s.catalog.GetBarber(ctx, barberID); err != nil {
		if errors.Is(err, catalogservice.ErrBarberNotFound) {
			s.logger.Warn("%s: barber id=%d not found", op, barberID)
			return ErrBarberNotFound
		}
		s.logger.Error("%s: failed to get barber id=%d: %v", op, barberID, err)
		return fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	return nil
}
