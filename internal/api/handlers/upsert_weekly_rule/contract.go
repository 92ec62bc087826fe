package upsert_weekly_rule

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertWeeklyRule(ctx context.Context, req *models.UpsertWeeklyRuleRequest) (*models.UpsertWeeklyRuleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
