package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, clientID int64, key string) (*domain.Booking, error)
	GetByBarberWithFilter(ctx context.Context, filter domain.BarberBookingsFilter) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error)
}

// ExceptionRepository интерфейс репозитория исключений
type ExceptionRepository interface {
	GetByDate(ctx context.Context, barberID int64, date time.Time) (*domain.ScheduleException, error)
}

// CatalogClient интерфейс клиента каталога барберов и услуг
type CatalogClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// IdempotencyStore интерфейс хранилища ключей идемпотентности
type IdempotencyStore interface {
	Get(ctx context.Context, clientID int64, key string) (int64, error)
	Remember(ctx context.Context, clientID int64, key string, bookingID int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс для доменных метрик
type Metrics interface {
	IncBookingCreated()
	IncBookingConflict(reason string)
	IncIdempotentReplay()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
