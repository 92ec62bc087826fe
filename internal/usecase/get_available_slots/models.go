package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Settings ограничения на даты бронирования
type Settings struct {
	AdvanceBookingDays      int // 0 = без ограничений
	MinBookingNoticeMinutes int
}

// Request модель запроса на получение доступных слотов
type Request struct {
	BarberID  int64     // ID барбера
	ServiceID int64     // ID услуги, определяет длительность
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date                   time.Time                       // Дата, на которую запрашивались слоты
	BarberID               int64                           // ID барбера
	ServiceID              int64                           // ID услуги
	ServiceDurationMinutes int                             // Длительность услуги
	Availability           domain.EffectiveDayAvailability // Эффективная доступность барбера на дату
	Slots                  []domain.AvailableSlot          // Свободные слоты
}
