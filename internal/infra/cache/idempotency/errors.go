package idempotency

import "errors"

var (
	// ErrKeyNotFound возвращается, когда ключ идемпотентности ещё не использовался
	ErrKeyNotFound = errors.New("idempotency.store: key not found")

	// ErrStore возвращается при ошибках работы с Redis
	ErrStore = errors.New("idempotency.store: redis error")
)
