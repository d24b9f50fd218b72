package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxToken extracts the session token injected by the route guards and
// performs a fast-fail check before any upstream call: a guarded route with
// no token in context means the guard did not run — reject rather than
// forward an unauthenticated request.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get("token").(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session context")
	}
	return token, nil
}
