package domain

import (
	"fmt"
	"time"
)

// Flight — запланированный рейс, единица работы для захвата (claim).
//
// Flight создаётся пакетно при bootstrap (seed) или внешним продюсером.
// Scheduler находит незахваченный рейс, вылет которого попадает в окно,
// атомарно помечает его claimed=true и передаёт в обработку.
type Flight struct {
	// ID — суррогатный ключ, назначается БД при вставке.
	ID int64 `json:"id"`

	// Claimed — флаг захвата.
	// Переход только false → true, обратно никогда не сбрасывается.
	Claimed bool `json:"claimed"`

	// ClaimedAt — время успешного захвата.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`

	// ClaimedBy — идентификатор инстанса, захватившего рейс.
	ClaimedBy string `json:"claimed_by,omitempty"`

	// Carrier — код перевозчика, например "DL".
	Carrier string `json:"carrier"`

	// FlightNumber — номер рейса.
	FlightNumber string `json:"flight_number"`

	// Origin — аэропорт вылета.
	Origin string `json:"origin,omitempty"`

	// Destination — аэропорт прилёта.
	Destination string `json:"destination,omitempty"`

	// DepartureAt — время вылета. По нему сопоставляется окно.
	DepartureAt time.Time `json:"departure_at"`

	// ArrivalAt — время прилёта.
	ArrivalAt *time.Time `json:"arrival_at,omitempty"`

	// CreatedAt — время вставки записи.
	CreatedAt time.Time `json:"created_at"`
}

// Designator возвращает обозначение рейса: "DL12".
func (f *Flight) Designator() string {
	return f.Carrier + f.FlightNumber
}

// Validate проверяет обязательные поля перед вставкой.
func (f *Flight) Validate() error {
	if f.Carrier == "" {
		return fmt.Errorf("flight carrier is required")
	}
	if f.FlightNumber == "" {
		return fmt.Errorf("flight number is required")
	}
	if f.DepartureAt.IsZero() {
		return fmt.Errorf("flight %s: departure time is required", f.Designator())
	}
	if f.ArrivalAt != nil && !f.ArrivalAt.After(f.DepartureAt) {
		return fmt.Errorf("flight %s: arrival must be after departure", f.Designator())
	}
	return nil
}

// MarkClaimed записывает информацию о захвате.
func (f *Flight) MarkClaimed(claimant string, at time.Time) {
	f.Claimed = true
	f.ClaimedAt = &at
	f.ClaimedBy = claimant
}
