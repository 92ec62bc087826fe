package availability

import "errors"

var (
	// ErrInvalidConfiguration возвращается для структурно некорректных правил, исключений и параметров
	// (start >= end, время у исключения на весь день, шаг сетки <= 0)
	ErrInvalidConfiguration = errors.New("availability: invalid configuration")

	// ErrBarberUnavailable возвращается при проверке бронирования на дату без рабочего интервала
	ErrBarberUnavailable = errors.New("availability: barber is not available on this date")

	// ErrOutsideWorkingHours возвращается, когда услуга не помещается в рабочий интервал
	ErrOutsideWorkingHours = errors.New("availability: slot is outside working hours")

	// ErrSlotNotOnGrid возвращается, когда время начала не совпадает с сеткой слотов
	ErrSlotNotOnGrid = errors.New("availability: slot is not aligned to the slot grid")

	// ErrSlotAlreadyTaken возвращается, когда слот пересекается с существующим бронированием
	// Ошибка повторяемая: клиенту нужно перезапросить доступные слоты
	ErrSlotAlreadyTaken = errors.New("availability: slot already taken")
)
