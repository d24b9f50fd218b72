package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const loginRedirect = "/login"

// deniedResponse is the envelope returned when a guard blocks navigation.
// Redirect tells the console UI where to send the operator.
type deniedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// SessionGate permits a request iff the current session snapshot is
// authenticated. The decision is a single synchronous read: it can never
// block a request, and a container that has not been initialized yet reads
// as unauthenticated (fail closed).
func SessionGate(session ports.SessionReader, notifier ports.Notifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := session.Snapshot()
			if !state.IsAuthenticated() {
				metrics.GuardDecisionsTotal.WithLabelValues("session", "denied").Inc()
				notifier.ReportError("guard", "Please log in to continue")
				return c.JSON(http.StatusUnauthorized, deniedResponse{
					Error:    "authentication required",
					Redirect: loginRedirect,
				})
			}

			metrics.GuardDecisionsTotal.WithLabelValues("session", "allowed").Inc()
			c.Set("role", string(state.Role))
			c.Set("token", state.Token)
			return next(c)
		}
	}
}
