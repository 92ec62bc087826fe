package get_calendar

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	getCalendar "github.com/m04kA/SMC-BarberService/internal/usecase/get_calendar"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgInvalidPeriod   = "некорректный период, ожидаются параметры from и to в формате YYYY-MM-DD"
	msgPeriodTooLong   = "некорректный или слишком длинный период"
	msgBarberNotFound  = "барбер не найден"
)

type Handler struct {
	useCase GetCalendarUseCase
	logger  Logger
}

func NewHandler(useCase GetCalendarUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/barbers/{barberId}/calendar?from=2025-10-13&to=2025-10-19
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{barberId}/calendar - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	query := r.URL.Query()
	from, errFrom := time.Parse(domain.DateFormat, query.Get("from"))
	to, errTo := time.Parse(domain.DateFormat, query.Get("to"))
	if errFrom != nil || errTo != nil {
		h.logger.Warn("GET /barbers/{barberId}/calendar - Invalid period: barber_id=%d, from=%q, to=%q",
			barberID, query.Get("from"), query.Get("to"))
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getCalendar.Request{
		BarberID: barberID,
		From:     from,
		To:       to,
	})
	if err != nil {
		switch {
		case errors.Is(err, getCalendar.ErrBarberNotFound):
			h.logger.Warn("GET /barbers/{barberId}/calendar - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, getCalendar.ErrInvalidInput):
			h.logger.Warn("GET /barbers/{barberId}/calendar - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgPeriodTooLong)

		default:
			h.logger.Error("GET /barbers/{barberId}/calendar - Failed to build calendar: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{barberId}/calendar - Calendar built: barber_id=%d, days=%d", barberID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
