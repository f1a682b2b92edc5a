// Package cli реализует инструмент командной строки IFS.
//
// CLI работает с хранилищем рейсов напрямую (без HTTP API):
// добавляет рейсы как внешний продюсер, заполняет пустую таблицу,
// показывает состояние захвата и выполняет единичный тик.
//
// Команды:
//   - migrate            — создать схему
//   - seed               — заполнить пустую таблицу демо-рейсами
//   - flight list|show|add
//   - tick               — один тик Poller'а с логирующим действием
//
// Каждая команда создаётся фабричной функцией, принимающей Env —
// набор замыканий для ленивого открытия хранилища и Output после
// парсинга PersistentFlags.
package cli
