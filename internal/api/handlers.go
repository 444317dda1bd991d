package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"couchage/internal/database"
	"couchage/internal/metrics"
	"couchage/internal/models"
	"couchage/internal/pricing"
)

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	bookings, err := s.svc.ListBookings(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Night string `json:"night"`
		Room  string `json:"room"`
		Slot  string `json:"slot"`
		Name  string `json:"name"`
	}

	var body request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	night, err := time.Parse(models.DateLayout, strings.TrimSpace(body.Night))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid night format; expected YYYY-MM-DD")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	booking, err := s.svc.Reserve(ctx, night, body.Room, body.Slot, body.Name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/bookings/"
	id := strings.TrimPrefix(r.URL.Path, prefix)
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.svc.Cancel(ctx, id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleNights(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("nights")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	prices, err := s.svc.NightPrices(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	nights := make([]map[string]any, 0, len(prices))
	for _, p := range prices {
		entry := map[string]any{
			"night":     p.Night.Format(models.DateLayout),
			"occupants": p.Occupants,
		}
		if p.Priced {
			entry["price_cents"] = p.PriceCents
			entry["price"] = pricing.FormatCents(p.PriceCents)
		}
		nights = append(nights, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{"nights": nights})
}

func (s *HTTPServer) handleTotals(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("totals")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	totals, err := s.svc.PersonTotals(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(totals))
	for _, t := range totals {
		out = append(out, map[string]any{
			"name":        t.Name,
			"nights":      t.Nights,
			"total_cents": t.TotalCents,
			"total":       pricing.FormatCents(t.TotalCents),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"totals": out})
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.svc.Rooms()})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.export == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	path, err := s.export.Export(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps store sentinels onto HTTP statuses. A deadline is
// 503 "try again"; a conflict is definitive and retrying will conflict
// again.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "name must not be empty")
	case errors.Is(err, database.ErrUnknownSlot):
		writeError(w, http.StatusBadRequest, "unknown room or slot")
	case errors.Is(err, database.ErrNightOutOfRange):
		writeError(w, http.StatusBadRequest, "night is outside the rented week")
	case errors.Is(err, database.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot is already taken; reload and pick another")
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "storage timeout; try again")
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
