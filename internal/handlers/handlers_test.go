package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestHealth(t *testing.T) {
	h := NewHandlers(nil, service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodGet, "/health")

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "smartfold-composer", resp["service"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name    string
		storage Pinger
		status  string
		store   string
	}{
		{"no storage", nil, "ready", "none"},
		{"storage ok", stubPinger{}, "ready", "ok"},
		{"storage down", stubPinger{err: apperrors.ErrStorageUnavailable}, "degraded", "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(nil, service.DefaultRates(), tt.storage, nil)
			c, w := newTestContext(http.MethodGet, "/ready")

			h.Ready(c)

			assert.Equal(t, http.StatusOK, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.status, resp["status"])
			assert.Equal(t, tt.store, resp["storage"])
		})
	}
}

func TestLive(t *testing.T) {
	h := NewHandlers(nil, service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodGet, "/live")

	h.Live(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode(t, w)["status"])
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("session: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"not confirmed", apperrors.ErrNotConfirmed, http.StatusConflict},
		{"validation", apperrors.NewValidationError("pickup", "Pickup date & time is required."), http.StatusUnprocessableEntity},
		{"storage", apperrors.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	h := NewHandlers(nil, service.DefaultRates(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			h.handleError(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	h := NewHandlers(nil, service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodPost, "/")

	h.handleError(c, apperrors.NewFieldErrors("order cannot be submitted", map[string]string{
		"total": service.MsgTotalZero,
	}))

	resp := decode(t, w)
	assert.Equal(t, "order cannot be submitted", resp["error"])
	details, ok := resp["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, service.MsgTotalZero, details["total"])
}

func TestRates(t *testing.T) {
	h := NewHandlers(nil, service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/rates")

	h.Rates(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Services []serviceRates `json:"services"`
		Express  int            `json:"expressRatePercent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Services, 5)
	assert.Equal(t, 25, resp.Express)
	assert.Equal(t, int64(250), resp.Services[0].PerKg)
	assert.Equal(t, "Pressing", resp.Services[2].Label)
	assert.Equal(t, categoryRate{Name: "Casual Wear", Price: 50, Companion: 75}, resp.Services[2].Categories[0])
	assert.Equal(t, int64(400), resp.Services[4].PerItem)
}

func TestComposerRoutes_RequireSession(t *testing.T) {
	h := NewHandlers(service.NewRegistry(func(string) *service.Composer { return service.NewComposer() }, nil, nil),
		service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/composer")

	h.GetComposer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], SessionHeader)
}

func TestComposerRoutes_UnmountedSession(t *testing.T) {
	h := NewHandlers(service.NewRegistry(func(string) *service.Composer { return service.NewComposer() }, nil, nil),
		service.DefaultRates(), nil, nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/composer")
	c.Request.Header.Set(SessionHeader, "never-mounted")

	h.GetComposer(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
