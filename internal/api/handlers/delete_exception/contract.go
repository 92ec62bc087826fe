package delete_exception

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

type ScheduleService interface {
	DeleteException(ctx context.Context, actor domain.Actor, barberID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
