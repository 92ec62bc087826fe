package get_barber_bookings

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
	msgMissingUserID   = "отсутствует ID пользователя"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFlag     = "некорректное значение includeInactive"
	msgAccessDenied    = "нет доступа к бронированиям барбера"
	msgInvalidFilter   = "некорректные параметры фильтра"
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

// Handle GET /api/v1/barbers/{barberId}/bookings?from=2025-10-01&to=2025-10-31&status=confirmed&includeInactive=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /barbers/{barberId}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/bookings - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	query := r.URL.Query()
	req := &models.GetBarberBookingsRequest{
		Actor:    actor,
		BarberID: barberID,
	}

	if req.StartDate, err = parseOptionalDate(query.Get("from")); err != nil {
		h.logger.Warn("GET /barbers/{barberId}/bookings - Invalid from date: barber_id=%d, from=%q", barberID, query.Get("from"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if req.EndDate, err = parseOptionalDate(query.Get("to")); err != nil {
		h.logger.Warn("GET /barbers/{barberId}/bookings - Invalid to date: barber_id=%d, to=%q", barberID, query.Get("to"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if flag := query.Get("includeInactive"); flag != "" {
		if req.IncludeInactive, err = strconv.ParseBool(flag); err != nil {
			h.logger.Warn("GET /barbers/{barberId}/bookings - Invalid includeInactive: barber_id=%d, value=%q", barberID, flag)
			handlers.RespondBadRequest(w, msgInvalidFlag)
			return
		}
	}

	result, err := h.service.GetBarberBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /barbers/{barberId}/bookings - Access denied: barber_id=%d, user_id=%d", barberID, actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /barbers/{barberId}/bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /barbers/{barberId}/bookings - Failed to get bookings: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{barberId}/bookings - Found %d bookings: barber_id=%d", len(result.Bookings), barberID)
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
