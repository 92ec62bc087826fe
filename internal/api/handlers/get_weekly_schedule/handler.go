package get_weekly_schedule

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
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

// Handle GET /api/v1/barbers/{barberId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/schedule - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	schedule, err := h.service.GetWeeklySchedule(r.Context(), barberID)
	if err != nil {
		h.logger.Error("GET /barbers/{barberId}/schedule - Failed to get schedule: barber_id=%d, error=%v", barberID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /barbers/{barberId}/schedule - Schedule retrieved: barber_id=%d, rules=%d", barberID, len(schedule.Rules))
	handlers.RespondJSON(w, http.StatusOK, schedule)
}
