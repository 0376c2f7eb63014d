package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/toolworks/catalog/common/config"
)

func newGatedEcho() *echo.Echo {
	e := echo.New()
	cfg := config.AdminConfig{User: "admin", Password: "secret"}
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, BasicAuth(cfg))
	return e
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	e := newGatedEcho()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuthRejectsBadCredentials(t *testing.T) {
	e := newGatedEcho()

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"wrong", "secret"},
		{"", ""},
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.SetBasicAuth(tc.user, tc.pass)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s:%s", tc.user, tc.pass)
	}
}

func TestBasicAuthChallengesMissingHeader(t *testing.T) {
	e := newGatedEcho()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	challenge := strings.ToLower(rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Contains(t, challenge, "basic")
}
