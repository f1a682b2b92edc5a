// Package api содержит HTTP API для просмотра и добавления рейсов.
//
// Структура:
//   - handler.go        — Handler с DI (хранилище, окна, logger)
//   - routes.go         — регистрация маршрутов
//   - middleware.go     — middleware (logging, recovery)
//   - response.go       — унифицированные JSON-ответы и обработка ошибок
//   - dto.go            — Data Transfer Objects (request/response)
//   - flight_handler.go — обработчики для /flights и /windows
//
// Захват через API не выполняется: рейсы захватывает только Poller.
package api
