package upsert_weekly_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule/models"
)

const (
	msgInvalidBarberID    = "некорректный ID барбера"
	msgInvalidDayOfWeek   = "некорректный день недели, ожидается число от 0 (воскресенье) до 6"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgAccessDenied       = "нет прав на изменение расписания барбера"
	msgBarberNotFound     = "барбер не найден"
	msgInvalidRule        = "некорректное правило расписания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/barbers/{barberId}/schedule/{dayOfWeek}
// Тело запроса: {"startTime": "09:00", "endTime": "17:00", "isAvailable": true}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	dayOfWeek, err := strconv.Atoi(vars["dayOfWeek"])
	if err != nil {
		h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Invalid day of week: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDayOfWeek)
		return
	}

	var rule models.WeeklyRuleRequest
	if err := handlers.DecodeJSON(r, &rule); err != nil {
		h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	// День недели всегда берется из пути
	rule.DayOfWeek = &dayOfWeek

	result, err := h.service.UpsertWeeklyRule(r.Context(), &models.UpsertWeeklyRuleRequest{
		Actor:    actor,
		BarberID: barberID,
		Rule:     rule,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Access denied: barber_id=%d, user_id=%d", barberID, actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedule.ErrBarberNotFound):
			h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRule)

		default:
			h.logger.Error("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Failed to upsert rule: barber_id=%d, day=%d, error=%v",
				barberID, dayOfWeek, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}

	h.logger.Info("PUT /barbers/{barberId}/schedule/{dayOfWeek} - Rule saved: barber_id=%d, day=%d, replaced=%t",
		barberID, dayOfWeek, result.Replaced)
	handlers.RespondJSON(w, status, result)
}
