package get_exceptions

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidPeriod   = "дата окончания периода раньше даты начала"
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

// Handle GET /api/v1/barbers/{barberId}/exceptions?from=2025-10-01&to=2025-10-31
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/exceptions - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	query := r.URL.Query()
	from, err := parseOptionalDate(query.Get("from"))
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/exceptions - Invalid from date: barber_id=%d, from=%q", barberID, query.Get("from"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := parseOptionalDate(query.Get("to"))
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/exceptions - Invalid to date: barber_id=%d, to=%q", barberID, query.Get("to"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetExceptions(r.Context(), barberID, from, to)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			h.logger.Warn("GET /barbers/{barberId}/exceptions - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /barbers/{barberId}/exceptions - Failed to get exceptions: barber_id=%d, error=%v", barberID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /barbers/{barberId}/exceptions - Found %d exceptions: barber_id=%d", len(result.Exceptions), barberID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
