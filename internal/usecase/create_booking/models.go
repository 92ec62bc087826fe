package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Settings ограничения на даты бронирования
type Settings struct {
	AdvanceBookingDays      int // 0 = без ограничений
	MinBookingNoticeMinutes int
}

// Request модель запроса на создание бронирования
type Request struct {
	ClientID       int64            // ID клиента из X-User-ID
	BarberID       int64            // ID барбера
	ServiceID      int64            // ID услуги
	Date           time.Time        // Дата бронирования (без времени)
	StartTime      types.TimeString // Время начала (например, "10:00")
	Notes          *string          // Дополнительные заметки (опционально)
	IdempotencyKey *string          // Заголовок Idempotency-Key (опционально, UUID)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64            // ID созданного бронирования
	BarberID        int64            // ID барбера
	ClientID        int64            // ID клиента
	ServiceID       int64            // ID услуги
	BookingDate     time.Time        // Дата бронирования
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус бронирования

	// Денормализованные данные
	ServiceName  string  // Название услуги
	ServicePrice float64 // Цена услуги
	Notes        *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления

	// Replayed = true, если бронирование уже было создано этим же ключом идемпотентности
	Replayed bool
}
