package upsert_exception

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
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgAccessDenied       = "нет прав на изменение расписания барбера"
	msgBarberNotFound     = "барбер не найден"
	msgInvalidException   = "некорректное исключение из расписания"
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

// Handle PUT /api/v1/barbers/{barberId}/exceptions/{date}
// Тело запроса: {"isAvailable": true, "allDay": false, "startTime": "10:00", "endTime": "14:00", "reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	var exception models.ExceptionRequest
	if err := handlers.DecodeJSON(r, &exception); err != nil {
		h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	// Дата всегда берется из пути, формат проверяет сервис
	exception.Date = vars["date"]

	result, err := h.service.UpsertException(r.Context(), &models.UpsertExceptionRequest{
		Actor:     actor,
		BarberID:  barberID,
		Exception: exception,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Access denied: barber_id=%d, user_id=%d", barberID, actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedule.ErrBarberNotFound):
			h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /barbers/{barberId}/exceptions/{date} - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidException)

		default:
			h.logger.Error("PUT /barbers/{barberId}/exceptions/{date} - Failed to upsert exception: barber_id=%d, date=%s, error=%v",
				barberID, exception.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}

	h.logger.Info("PUT /barbers/{barberId}/exceptions/{date} - Exception saved: barber_id=%d, date=%s, replaced=%t",
		barberID, exception.Date, result.Replaced)
	handlers.RespondJSON(w, status, result)
}
