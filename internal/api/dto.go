package api

import (
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

// Flight DTOs

// CreateFlightRequest — запрос на добавление рейса.
type CreateFlightRequest struct {
	Carrier      string     `json:"carrier"`
	FlightNumber string     `json:"flight_number"`
	Origin       string     `json:"origin,omitempty"`
	Destination  string     `json:"destination,omitempty"`
	DepartureAt  time.Time  `json:"departure_at"`
	ArrivalAt    *time.Time `json:"arrival_at,omitempty"`
}

// ToDomain конвертирует запрос в domain.Flight.
func (r CreateFlightRequest) ToDomain() *domain.Flight {
	return &domain.Flight{
		Carrier:      r.Carrier,
		FlightNumber: r.FlightNumber,
		Origin:       r.Origin,
		Destination:  r.Destination,
		DepartureAt:  r.DepartureAt.UTC(),
		ArrivalAt:    r.ArrivalAt,
	}
}

// FlightResponse — ответ с рейсом.
type FlightResponse struct {
	ID          int64      `json:"id"`
	Designator  string     `json:"designator"`
	Origin      string     `json:"origin,omitempty"`
	Destination string     `json:"destination,omitempty"`
	DepartureAt time.Time  `json:"departure_at"`
	ArrivalAt   *time.Time `json:"arrival_at,omitempty"`
	Claimed     bool       `json:"claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	ClaimedBy   string     `json:"claimed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FlightFromDomain конвертирует domain.Flight в FlightResponse.
func FlightFromDomain(f domain.Flight) FlightResponse {
	return FlightResponse{
		ID:          f.ID,
		Designator:  f.Designator(),
		Origin:      f.Origin,
		Destination: f.Destination,
		DepartureAt: f.DepartureAt,
		ArrivalAt:   f.ArrivalAt,
		Claimed:     f.Claimed,
		ClaimedAt:   f.ClaimedAt,
		ClaimedBy:   f.ClaimedBy,
		CreatedAt:   f.CreatedAt,
	}
}

// Window DTOs

// WindowResponse — окно упреждения с границами на момент запроса.
type WindowResponse struct {
	Name      string    `json:"name"`
	Offset    string    `json:"offset"`
	Tolerance string    `json:"tolerance"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// WindowFromDomain конвертирует domain.Window в WindowResponse.
func WindowFromDomain(w domain.Window, now time.Time) WindowResponse {
	start, end := w.Bounds(now)
	return WindowResponse{
		Name:      w.Name,
		Offset:    w.Offset.String(),
		Tolerance: w.Tolerance.String(),
		Start:     start,
		End:       end,
	}
}
