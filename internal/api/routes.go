package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Flights
	mux.Handle("GET /api/v1/flights", chain(http.HandlerFunc(h.ListFlights)))
	mux.Handle("POST /api/v1/flights", chain(http.HandlerFunc(h.CreateFlight)))
	mux.Handle("GET /api/v1/flights/{id}", chain(http.HandlerFunc(h.GetFlight)))

	// Windows
	mux.Handle("GET /api/v1/windows", chain(http.HandlerFunc(h.ListWindows)))
}
