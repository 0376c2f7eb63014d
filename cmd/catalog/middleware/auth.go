package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/toolworks/catalog/common/config"
)

// BasicAuth gates write routes and the admin UI behind the operator
// credentials resolved at startup. Unauthorized requests receive the
// basic-auth challenge and never reach the catalog service.
func BasicAuth(cfg config.AdminConfig) echo.MiddlewareFunc {
	return echomw.BasicAuthWithConfig(echomw.BasicAuthConfig{
		Realm: "Admin",
		Validator: func(user, password string, c echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
			return userOK && passOK, nil
		},
	})
}
