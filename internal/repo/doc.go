// Package repo — хранилище рейсов (Claim Store).
//
// Реализации:
//   - FlightRepo       — PostgreSQL через pgx/v5 (production)
//   - SQLiteFlightRepo — SQLite через modernc.org/sqlite (локально и в тестах)
//
// Захват рейса — один условный UPDATE:
//
//	UPDATE scheduled_flights SET claimed = true ... WHERE id = $1 AND claimed = false
//
// Из нескольких конкурентных вызовов TryClaim для одного id строку
// изменит ровно один; остальные получат false без ошибки.
package repo
