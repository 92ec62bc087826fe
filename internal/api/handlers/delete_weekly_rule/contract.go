package delete_weekly_rule

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

type ScheduleService interface {
	DeleteWeeklyRule(ctx context.Context, actor domain.Actor, barberID int64, dayOfWeek int) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
