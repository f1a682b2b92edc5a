package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shaiso/ifs/internal/repo"
)

// ListFlights возвращает рейсы в порядке вылета.
// GET /api/v1/flights?claimed=true|false&limit=N&offset=N
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter repo.FlightFilter

	if v := q.Get("claimed"); v != "" {
		claimed, err := strconv.ParseBool(v)
		if err != nil {
			BadRequest(w, "invalid claimed filter")
			return
		}
		filter.Claimed = &claimed
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "invalid offset")
			return
		}
		filter.Offset = n
	}

	flights, err := h.store.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}
	total, err := h.store.Count(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FlightResponse, len(flights))
	for i, f := range flights {
		result[i] = FlightFromDomain(f)
	}

	List(w, result, total)
}

// CreateFlight добавляет рейс. Рейс создаётся незахваченным.
// POST /api/v1/flights
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req CreateFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flight := req.ToDomain()
	if err := h.store.Create(r.Context(), flight); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, FlightFromDomain(*flight))
}

// GetFlight возвращает рейс по ID.
// GET /api/v1/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid flight id")
		return
	}

	flight, err := h.store.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "flight not found") {
		return
	}

	Success(w, FlightFromDomain(*flight))
}

// ListWindows возвращает окна упреждения с границами на текущий момент.
// GET /api/v1/windows
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	windows := h.windows()

	result := make([]WindowResponse, len(windows))
	for i, win := range windows {
		result[i] = WindowFromDomain(win, now)
	}

	List(w, result, len(result))
}
