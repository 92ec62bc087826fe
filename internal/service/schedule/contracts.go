package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	Upsert(ctx context.Context, rule *domain.WeeklyScheduleRule) (*domain.WeeklyScheduleRule, bool, error)
	GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error)
	ReplaceWeek(ctx context.Context, barberID int64, rules []*domain.WeeklyScheduleRule) ([]*domain.WeeklyScheduleRule, error)
	Delete(ctx context.Context, barberID int64, dayOfWeek int) error
}

// ExceptionRepository интерфейс репозитория исключений
type ExceptionRepository interface {
	Upsert(ctx context.Context, exc *domain.ScheduleException) (*domain.ScheduleException, bool, error)
	ListByRange(ctx context.Context, barberID int64, from, to *time.Time) ([]*domain.ScheduleException, error)
	Delete(ctx context.Context, barberID int64, date time.Time) error
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
