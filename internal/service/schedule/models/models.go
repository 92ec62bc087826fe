package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Request модели

// WeeklyRuleRequest правило на один день недели
type WeeklyRuleRequest struct {
	DayOfWeek   *int   `json:"dayOfWeek" validate:"required,min=0,max=6"` // 0 = воскресенье
	StartTime   string `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime     string `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	IsAvailable bool   `json:"isAvailable"`
}

// ReplaceWeekRequest запрос на полную замену недельного расписания
// Дни, не попавшие в Rules, становятся нерабочими
type ReplaceWeekRequest struct {
	Actor    domain.Actor        `json:"-"`
	BarberID int64               `json:"-" validate:"gt=0"`
	Rules    []WeeklyRuleRequest `json:"rules" validate:"max=7,dive"`
}

// UpsertWeeklyRuleRequest запрос на создание или замену правила на день недели
type UpsertWeeklyRuleRequest struct {
	Actor    domain.Actor      `json:"-"`
	BarberID int64             `json:"-" validate:"gt=0"`
	Rule     WeeklyRuleRequest `json:"rule"`
}

// ExceptionRequest исключение на одну дату
type ExceptionRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	AllDay      bool    `json:"allDay"`
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime     *string `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// UpsertExceptionRequest запрос на создание или замену исключения на дату
type UpsertExceptionRequest struct {
	Actor     domain.Actor     `json:"-"`
	BarberID  int64            `json:"-" validate:"gt=0"`
	Exception ExceptionRequest `json:"exception"`
}

// ExceptionRangeRequest запрос на создание исключений на диапазон дат
type ExceptionRangeRequest struct {
	Actor       domain.Actor `json:"-"`
	BarberID    int64        `json:"-" validate:"gt=0"`
	StartDate   string       `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string       `json:"endDate" validate:"required,datetime=2006-01-02"`
	Weekdays    []int        `json:"weekdays,omitempty" validate:"max=7,dive,min=0,max=6"`
	AllDay      bool         `json:"allDay"`
	IsAvailable bool         `json:"isAvailable"`
	StartTime   *string      `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime     *string      `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Reason      *string      `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// Response модели

// WeeklyRuleResponse правило недельного расписания
type WeeklyRuleResponse struct {
	ID          int64     `json:"id"`
	BarberID    int64     `json:"barberId"`
	DayOfWeek   int       `json:"dayOfWeek"`
	StartTime   string    `json:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WeeklyScheduleResponse недельное расписание барбера
type WeeklyScheduleResponse struct {
	BarberID int64                `json:"barberId"`
	Rules    []WeeklyRuleResponse `json:"rules"`
}

// UpsertWeeklyRuleResponse результат записи правила
type UpsertWeeklyRuleResponse struct {
	Rule     WeeklyRuleResponse `json:"rule"`
	Replaced bool               `json:"replaced"`
}

// ExceptionResponse исключение из расписания
type ExceptionResponse struct {
	ID          int64     `json:"id"`
	BarberID    int64     `json:"barberId"`
	Date        string    `json:"date"`
	AllDay      bool      `json:"allDay"`
	IsAvailable bool      `json:"isAvailable"`
	StartTime   *string   `json:"startTime,omitempty"`
	EndTime     *string   `json:"endTime,omitempty"`
	Reason      *string   `json:"reason,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ExceptionListResponse список исключений
type ExceptionListResponse struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
}

// UpsertExceptionResponse результат записи исключения
type UpsertExceptionResponse struct {
	Exception ExceptionResponse `json:"exception"`
	Replaced  bool              `json:"replaced"`
}

// ExceptionRangeResponse результат массового создания исключений
type ExceptionRangeResponse struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
	Created    int                 `json:"created"`
	Replaced   int                 `json:"replaced"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.WeeklyScheduleRule) WeeklyRuleResponse {
	resp := WeeklyRuleResponse{
		ID:          r.ID,
		BarberID:    r.BarberID,
		DayOfWeek:   r.DayOfWeek,
		IsAvailable: r.IsAvailable,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.IsAvailable {
		resp.StartTime = r.StartTime.String()
		resp.EndTime = r.EndTime.String()
	}
	return resp
}

// FromDomainRules конвертирует правила барбера в недельное расписание
func FromDomainRules(barberID int64, rules []*domain.WeeklyScheduleRule) *WeeklyScheduleResponse {
	resp := &WeeklyScheduleResponse{
		BarberID: barberID,
		Rules:    make([]WeeklyRuleResponse, 0, len(rules)),
	}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, FromDomainRule(rule))
	}
	return resp
}

// FromDomainException конвертирует domain модель в DTO
func FromDomainException(e *domain.ScheduleException) ExceptionResponse {
	resp := ExceptionResponse{
		ID:          e.ID,
		BarberID:    e.BarberID,
		Date:        e.ExceptionDate.Format(domain.DateFormat),
		AllDay:      e.AllDay,
		IsAvailable: e.IsAvailable,
		Reason:      e.Reason,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.StartTime != nil {
		start := e.StartTime.String()
		resp.StartTime = &start
	}
	if e.EndTime != nil {
		end := e.EndTime.String()
		resp.EndTime = &end
	}
	return resp
}

// FromDomainExceptions конвертирует список исключений в DTO
func FromDomainExceptions(exceptions []*domain.ScheduleException) *ExceptionListResponse {
	resp := &ExceptionListResponse{
		Exceptions: make([]ExceptionResponse, 0, len(exceptions)),
	}
	for _, exc := range exceptions {
		resp.Exceptions = append(resp.Exceptions, FromDomainException(exc))
	}
	return resp
}

// ToDomainRule конвертирует запрос в domain модель
func (r WeeklyRuleRequest) ToDomainRule(barberID int64) *domain.WeeklyScheduleRule {
	rule := &domain.WeeklyScheduleRule{
		BarberID:    barberID,
		IsAvailable: r.IsAvailable,
		StartTime:   types.TimeString(r.StartTime),
		EndTime:     types.TimeString(r.EndTime),
	}
	if r.DayOfWeek != nil {
		rule.DayOfWeek = *r.DayOfWeek
	}
	return rule
}

// ToDomainException конвертирует запрос в domain модель
func (r ExceptionRequest) ToDomainException(barberID int64) (*domain.ScheduleException, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %v", err)
	}

	return &domain.ScheduleException{
		BarberID:      barberID,
		ExceptionDate: date,
		AllDay:        r.AllDay,
		IsAvailable:   r.IsAvailable,
		StartTime:     toTimeString(r.StartTime),
		EndTime:       toTimeString(r.EndTime),
		Reason:        r.Reason,
	}, nil
}

// ToRangeRequest конвертирует запрос в параметры разворачивания диапазона
func (r *ExceptionRangeRequest) ToRangeRequest() (availability.RangeRequest, error) {
	start, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return availability.RangeRequest{}, fmt.Errorf("startDate: %v", err)
	}
	end, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return availability.RangeRequest{}, fmt.Errorf("endDate: %v", err)
	}

	return availability.RangeRequest{
		BarberID:    r.BarberID,
		StartDate:   start,
		EndDate:     end,
		Weekdays:    r.Weekdays,
		AllDay:      r.AllDay,
		IsAvailable: r.IsAvailable,
		StartTime:   toTimeString(r.StartTime),
		EndTime:     toTimeString(r.EndTime),
		Reason:      r.Reason,
	}, nil
}

func toTimeString(s *string) *types.TimeString {
	if s == nil {
		return nil
	}
	t := types.TimeString(*s)
	return &t
}
