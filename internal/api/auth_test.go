package api

import (
	"net/http"
	"testing"

	"couchage/internal/config"
	"couchage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func authConfig() config.APIConfig {
	return config.APIConfig{
		Port:           8080,
		RequestTimeout: 2,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "reader-key", Name: "reader", Permissions: []string{"read:bookings", "read:pricing"}},
				{Key: "writer-key", Name: "writer", Permissions: []string{"read:bookings", "write:bookings"}},
				{Key: "full-key", Name: "admin"},
			},
		},
	}
}

func TestAuth(t *testing.T) {
	t.Run("MissingKey", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", nil, map[string]string{"x-api-key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidKeyWithPermission", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		svc.On("ListBookings", mock.Anything).Return([]*models.Booking{}, nil).Once()

		rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", nil, map[string]string{"x-api-key": "reader-key"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		// reader may not write bookings
		rec := doRequest(srv, http.MethodPost, "/api/v1/bookings",
			[]byte(`{"night":"2026-07-11","room":"r","slot":"s","name":"n"}`),
			map[string]string{"x-api-key": "reader-key"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("EmptyPermissionsAllowsAll", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		svc.On("Rooms").Return([]models.Room{}).Once()

		rec := doRequest(srv, http.MethodGet, "/api/v1/rooms", nil, map[string]string{"x-api-key": "full-key"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("HealthBypassesAuth", func(t *testing.T) {
		svc := new(mockBookingService)
		srv := newTestServer(t, authConfig(), svc)

		rec := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testAPIConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}

	svc := new(mockBookingService)
	srv := newTestServer(t, cfg, svc)

	svc.On("Rooms").Return([]models.Room{})

	// burst of 2 passes, the third request is rejected
	for i := 0; i < 2; i++ {
		rec := doRequest(srv, http.MethodGet, "/api/v1/rooms", nil, map[string]string{"x-api-key": "k"})
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
	rec := doRequest(srv, http.MethodGet, "/api/v1/rooms", nil, map[string]string{"x-api-key": "k"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequiredPermission(t *testing.T) {
	get := func(path string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, path, nil)
		return r
	}
	post := func(path string) *http.Request {
		r, _ := http.NewRequest(http.MethodPost, path, nil)
		return r
	}

	assert.Equal(t, "read:bookings", requiredPermissionHTTP(get("/api/v1/bookings")))
	assert.Equal(t, "write:bookings", requiredPermissionHTTP(post("/api/v1/bookings")))
	del, _ := http.NewRequest(http.MethodDelete, "/api/v1/bookings/b-1", nil)
	assert.Equal(t, "write:bookings", requiredPermissionHTTP(del))
	assert.Equal(t, "read:pricing", requiredPermissionHTTP(get("/api/v1/nights")))
	assert.Equal(t, "read:pricing", requiredPermissionHTTP(get("/api/v1/totals")))
	assert.Equal(t, "read:rooms", requiredPermissionHTTP(get("/api/v1/rooms")))
	assert.Equal(t, "export", requiredPermissionHTTP(post("/api/v1/export")))
	assert.Equal(t, "", requiredPermissionHTTP(get("/healthz")))
}
