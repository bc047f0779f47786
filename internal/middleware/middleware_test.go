package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/logging"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	id, _ := UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
}

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.IssueAccessToken(secret, id, role, time.Minute, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))
	e.GET("/admin", whoami, JWTAuth(secret), RequireRole("ADMIN"))

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "Bearer nope").Code)

	rec := serve(e, http.MethodGet, "/me", bearer(t, 7, "CUSTOMER"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"CUSTOMER"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", bearer(t, 7, "CUSTOMER")).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", bearer(t, 1, "ADMIN")).Code)
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/movies")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:GET /v1/movies", rateKey(cfg, c))

	c.Set(ctxUserID, uint64(42))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:42", rateKey(cfg, c))
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", rateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64(4.0))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	log := logging.Discard()
	e.GET("/x", whoami,
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil, log))

	rec := serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestCacheKeyDistinguishesPaths(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/movies/:id")
		return cacheKey(cfg, c)
	}
	assert.True(t, strings.HasPrefix(key("/v1/movies/1"), "cache:"))
	assert.NotEqual(t, key("/v1/movies/1"), key("/v1/movies/2"))
	assert.NotEqual(t, key("/v1/movies/1?page=1"), key("/v1/movies/1?page=2"))
	assert.Equal(t, key("/v1/movies/1"), key("/v1/movies/1"))
}

func TestPackResponse(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := packResponse(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := unpackResponse(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = unpackResponse([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = unpackResponse([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(&buf, "info", "json")
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/me", whoami, JWTAuth(secret))

	serve(e, http.MethodGet, "/me", bearer(t, 9, "CUSTOMER"))
	serve(e, http.MethodGet, "/me", "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"user_id":9`)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[1], `"status":401`)
	assert.Contains(t, lines[1], `"level":"`+logrus.WarnLevel.String()+`"`)
}
