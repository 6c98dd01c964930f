package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	e := echo.New()
	e.Use(CORS())
	e.GET("/v1/missions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"missions": []string{}})
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/missions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS())
	handlerRan := false
	e.POST("/v1/missions", func(c echo.Context) error {
		handlerRan = true
		return c.NoContent(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/missions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, handlerRan)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
