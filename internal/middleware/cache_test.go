package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magehall/mission-tracker/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Cache":      []string{"MISS"},
	}
	body := []byte(`{"missions":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)

	// A header length pointing past the buffer must not panic.
	payload, err := encodePayload(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)
	_, _, _, ok = decodePayload(payload[:6])
	assert.False(t, ok)
}

func TestCacheKeyStrategyDistinguishesQueries(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	e := echo.New()
	mk := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/missions")
		return c
	}

	pending := cacheKeyFrom(cfg, mk("/v1/missions?status=pending"))
	completed := cacheKeyFrom(cfg, mk("/v1/missions?status=completed"))
	assert.NotEqual(t, pending, completed)

	// The route strategy ignores the query string.
	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKeyFrom(cfg, mk("/v1/missions?status=pending")), cacheKeyFrom(cfg, mk("/v1/missions?status=completed")))
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	e := echo.New()
	mk := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		// Both requests resolve to the same route pattern; the key
		// must still tell the two missions apart.
		c.SetPath("/v1/missions/:id")
		return c
	}

	for _, strategy := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg.KeyStrategy = strategy
		assert.NotEqual(t,
			cacheKeyFrom(cfg, mk("/v1/missions/7")),
			cacheKeyFrom(cfg, mk("/v1/missions/8")),
			strategy)
	}
}

func TestCaptureWriterOverflow(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 8}

	_, err := cw.Write([]byte("12345"))
	require.NoError(t, err)
	assert.False(t, cw.overflowed())

	_, err = cw.Write([]byte("67890"))
	require.NoError(t, err)
	assert.True(t, cw.overflowed())
	// The buffer holds only a prefix once the limit is crossed, which
	// is why overflowed captures are never stored.
	assert.Equal(t, "12345678", cw.buf.String())

	unbounded := &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	_, err = unbounded.Write([]byte("12345"))
	require.NoError(t, err)
	assert.False(t, unbounded.overflowed())
}

func TestRedisCacheDisabledIsPassthrough(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: false}, nil))
	e.GET("/v1/missions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"missions": []string{}})
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/missions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
