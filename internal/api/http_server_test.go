package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"couchage/internal/config"
	"couchage/internal/database"
	"couchage/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Reserve(ctx context.Context, night time.Time, room, slot, name string) (*models.Booking, error) {
	args := m.Called(ctx, night, room, slot, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookingService) Occupant(ctx context.Context, night time.Time, room, slot string) (string, bool, error) {
	args := m.Called(ctx, night, room, slot)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBookingService) NightPrices(ctx context.Context) ([]models.NightPrice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NightPrice), args.Error(1)
}

func (m *mockBookingService) PersonTotals(ctx context.Context) ([]models.PersonTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PersonTotal), args.Error(1)
}

func (m *mockBookingService) Rooms() []models.Room {
	args := m.Called()
	return args.Get(0).([]models.Room)
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Port:           8080,
		RequestTimeout: 2,
	}
}

func newTestServer(t *testing.T, cfg config.APIConfig, svc *mockBookingService) *HTTPServer {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewHTTPServer(cfg, svc, nil, &logger)
}

func doRequest(srv *HTTPServer, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateBooking(t *testing.T) {
	night := time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		booking := &models.Booking{ID: "b-1", Night: night, Room: "Chambre bleue", Slot: "lit 1", Name: "Alice"}
		svc.On("Reserve", mock.Anything, night, "Chambre bleue", "lit 1", "Alice").Return(booking, nil).Once()

		body, _ := json.Marshal(map[string]string{
			"night": "2026-07-11", "room": "Chambre bleue", "slot": "lit 1", "name": "Alice",
		})
		rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", body, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var got models.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "b-1", got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", []byte("{nope"), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", []byte(`{"night":"2026-07-11","bed":"x"}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadNightFormat", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		body, _ := json.Marshal(map[string]string{"night": "11/07/2026", "room": "r", "slot": "s", "name": "n"})
		rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ErrorMapping", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{"EmptyName", database.ErrEmptyName, http.StatusBadRequest},
			{"UnknownSlot", database.ErrUnknownSlot, http.StatusBadRequest},
			{"NightOutOfRange", database.ErrNightOutOfRange, http.StatusBadRequest},
			{"Conflict", database.ErrSlotTaken, http.StatusConflict},
			{"Timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := new(mockBookingService)
				srv := newTestServer(t, testAPIConfig(), svc)

				svc.On("Reserve", mock.Anything, night, "r", "s", "n").Return(nil, tt.err).Once()

				body, _ := json.Marshal(map[string]string{"night": "2026-07-11", "room": "r", "slot": "s", "name": "n"})
				rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", body, nil)
				assert.Equal(t, tt.status, rec.Code)
			})
		}
	})
}

func TestListBookings(t *testing.T) {
	svc := new(mockBookingService)
	srv := newTestServer(t, testAPIConfig(), svc)

	svc.On("ListBookings", mock.Anything).Return([]*models.Booking{}, nil).Once()

	rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookings":[]}`, rec.Body.String())
}

func TestCancelBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		svc.On("Cancel", mock.Anything, "b-1").Return(nil).Once()

		rec := doRequest(srv, http.MethodDelete, "/api/v1/bookings/b-1", nil, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		svc.On("Cancel", mock.Anything, "missing").Return(database.ErrBookingNotFound).Once()

		rec := doRequest(srv, http.MethodDelete, "/api/v1/bookings/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MissingID", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodDelete, "/api/v1/bookings/", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodGet, "/api/v1/bookings/b-1", nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestNightsEndpoint(t *testing.T) {
	svc := new(mockBookingService)
	srv := newTestServer(t, testAPIConfig(), svc)

	night := time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC)
	svc.On("NightPrices", mock.Anything).Return([]models.NightPrice{
		{Night: night, Occupants: 2, PriceCents: 15386, Priced: true},
		{Night: night.AddDate(0, 0, 1), Occupants: 0, Priced: false},
	}, nil).Once()

	rec := doRequest(srv, http.MethodGet, "/api/v1/nights", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Nights []map[string]any `json:"nights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Nights, 2)

	assert.Equal(t, "2026-07-11", resp.Nights[0]["night"])
	assert.Equal(t, "153.86", resp.Nights[0]["price"])

	// unpriced nights carry no price fields
	_, hasPrice := resp.Nights[1]["price"]
	assert.False(t, hasPrice)
	_, hasCents := resp.Nights[1]["price_cents"]
	assert.False(t, hasCents)
}

func TestTotalsEndpoint(t *testing.T) {
	svc := new(mockBookingService)
	srv := newTestServer(t, testAPIConfig(), svc)

	svc.On("PersonTotals", mock.Anything).Return([]models.PersonTotal{
		{Name: "Alice", Nights: 2, TotalCents: 46157},
	}, nil).Once()

	rec := doRequest(srv, http.MethodGet, "/api/v1/totals", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Totals []map[string]any `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Totals, 1)
	assert.Equal(t, "Alice", resp.Totals[0]["name"])
	assert.Equal(t, "461.57", resp.Totals[0]["total"])
}

func TestRoomsEndpoint(t *testing.T) {
	svc := new(mockBookingService)
	srv := newTestServer(t, testAPIConfig(), svc)

	svc.On("Rooms").Return([]models.Room{
		{Name: "Chambre bleue", Slots: []string{"lit 1"}},
	}).Once()

	rec := doRequest(srv, http.MethodGet, "/api/v1/rooms", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chambre bleue")
}

func TestExportEndpoint(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodPost, "/api/v1/export", nil, nil)
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, testAPIConfig(), svc)

		rec := doRequest(srv, http.MethodGet, "/api/v1/export", nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	svc := new(mockBookingService)
	srv := newTestServer(t, testAPIConfig(), svc)

	rec := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
