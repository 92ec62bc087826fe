package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotAlreadyTaken возвращается, когда активное бронирование на это время уже существует
	ErrSlotAlreadyTaken = errors.New("booking.repository: slot already taken")

	// ErrDuplicateIdempotencyKey возвращается, когда клиент повторно использует ключ идемпотентности
	ErrDuplicateIdempotencyKey = errors.New("booking.repository: duplicate idempotency key")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrInvalidStatusTransition возвращается, когда текущий статус не допускает перехода
	ErrInvalidStatusTransition = errors.New("booking.repository: invalid status transition")
)
