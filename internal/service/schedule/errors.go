package schedule

import "errors"

var (
	// ErrBarberNotFound возвращается, когда барбер не найден в каталоге
	ErrBarberNotFound = errors.New("barber not found")

	// ErrRuleNotFound возвращается, когда правила на день недели нет
	ErrRuleNotFound = errors.New("weekly rule not found")

	// ErrExceptionNotFound возвращается, когда исключения на дату нет
	ErrExceptionNotFound = errors.New("exception not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на расписание барбера
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
