package get_calendar

import (
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Request модель запроса календаря доступности
type Request struct {
	BarberID int64
	From     time.Time // Первый день периода
	To       time.Time // Последний день периода (включительно)
}

// Response эффективная доступность барбера по дням
type Response struct {
	BarberID int64
	Days     []domain.EffectiveDayAvailability
}
