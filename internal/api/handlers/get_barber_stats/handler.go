package get_barber_stats

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/bookings"
	"github.com/m04kA/SMC-BarberService/internal/service/bookings/models"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgInvalidPeriod   = "некорректный период, ожидаются параметры from и to в формате YYYY-MM-DD"
	msgPeriodTooLong   = "некорректный или слишком длинный период"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgAccessDenied    = "нет доступа к статистике барбера"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/barbers/{barberId}/stats?from=2025-10-01&to=2025-10-31
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /barbers/{barberId}/stats - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/stats - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	query := r.URL.Query()
	from, errFrom := time.Parse(domain.DateFormat, query.Get("from"))
	to, errTo := time.Parse(domain.DateFormat, query.Get("to"))
	if errFrom != nil || errTo != nil {
		h.logger.Warn("GET /barbers/{barberId}/stats - Invalid period: barber_id=%d, from=%q, to=%q",
			barberID, query.Get("from"), query.Get("to"))
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.service.GetBarberStats(r.Context(), &models.GetBarberStatsRequest{
		Actor:     actor,
		BarberID:  barberID,
		StartDate: from,
		EndDate:   to,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /barbers/{barberId}/stats - Access denied: barber_id=%d, user_id=%d", barberID, actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /barbers/{barberId}/stats - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgPeriodTooLong)

		default:
			h.logger.Error("GET /barbers/{barberId}/stats - Failed to get stats: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{barberId}/stats - Stats built: barber_id=%d, bookings=%d", barberID, result.TotalBookings)
	handlers.RespondJSON(w, http.StatusOK, result)
}
