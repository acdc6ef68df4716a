package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/service"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError bool
	}{
		{"bad request", &service.Error{Kind: service.KindBadRequest, Message: "x"}, http.StatusBadRequest, false},
		{"unauthenticated", service.Unauthenticated(), http.StatusUnauthorized, false},
		{"forbidden", service.Forbidden(), http.StatusForbidden, false},
		{"not found", &service.Error{Kind: service.KindNotFound, Message: "Parcel not found"}, http.StatusNotFound, false},
		{"internal", &service.Error{Kind: service.KindInternal, Message: "Payment failed", Err: errors.New("db down")}, http.StatusInternalServerError, true},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, respondError(c, tt.err))
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			_, hasErr := body["error"]
			assert.Equal(t, tt.wantError, hasErr)
		})
	}
}

func TestBindValid(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	newCtx := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return e.NewContext(req, httptest.NewRecorder())
	}

	var ok assignRequest
	require.NoError(t, bindValid(newCtx(`{"rider_id":"r1"}`), &ok))
	assert.Equal(t, "r1", ok.RiderID)

	var missing assignRequest
	err := bindValid(newCtx(`{}`), &missing)
	require.Error(t, err)
	assert.Equal(t, service.KindBadRequest, service.KindOf(err))
	assert.Contains(t, err.Error(), "rider_id is required")

	var status riderStatusRequest
	err = bindValid(newCtx(`{"status":"retired"}`), &status)
	assert.Equal(t, service.KindBadRequest, service.KindOf(err))

	var broken assignRequest
	err = bindValid(newCtx(`{"rider_id":`), &broken)
	assert.Equal(t, service.KindBadRequest, service.KindOf(err))
}
