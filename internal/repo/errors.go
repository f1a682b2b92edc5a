package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFlight — рейс не прошёл валидацию перед вставкой.
	ErrInvalidFlight = errors.New("invalid flight")
)
