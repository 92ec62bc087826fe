package delete_weekly_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule"
)

const (
	msgInvalidBarberID  = "некорректный ID барбера"
	msgInvalidDayOfWeek = "некорректный день недели, ожидается число от 0 до 6"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgAccessDenied     = "нет прав на изменение расписания барбера"
	msgBarberNotFound   = "барбер не найден"
	msgRuleNotFound     = "правило на этот день недели не найдено"
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

// Handle DELETE /api/v1/barbers/{barberId}/schedule/{dayOfWeek}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	dayOfWeek, err := strconv.Atoi(vars["dayOfWeek"])
	if err != nil || dayOfWeek < 0 || dayOfWeek > 6 {
		h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Invalid day of week: barber_id=%d, day=%q", barberID, vars["dayOfWeek"])
		handlers.RespondBadRequest(w, msgInvalidDayOfWeek)
		return
	}

	if err := h.service.DeleteWeeklyRule(r.Context(), actor, barberID, dayOfWeek); err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Access denied: barber_id=%d, user_id=%d", barberID, actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedule.ErrBarberNotFound):
			h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, schedule.ErrRuleNotFound):
			h.logger.Warn("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Rule not found: barber_id=%d, day=%d", barberID, dayOfWeek)
			handlers.RespondNotFound(w, msgRuleNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDayOfWeek)

		default:
			h.logger.Error("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Failed to delete rule: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /barbers/{barberId}/schedule/{dayOfWeek} - Rule deleted: barber_id=%d, day=%d", barberID, dayOfWeek)
	w.WriteHeader(http.StatusNoContent)
}
