package get_calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error)
}

// ExceptionRepository интерфейс репозитория исключений
type ExceptionRepository interface {
	ListByRange(ctx context.Context, barberID int64, from, to *time.Time) ([]*domain.ScheduleException, error)
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
