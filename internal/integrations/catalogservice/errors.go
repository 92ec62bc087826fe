package catalogservice

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга отсутствует в каталоге
	ErrServiceNotFound = errors.New("catalogservice client: service not found")

	// ErrBarberNotFound возвращается, когда барбер отсутствует в каталоге
	ErrBarberNotFound = errors.New("catalogservice client: barber not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")
)
