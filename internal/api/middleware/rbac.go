package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// RequireRole permits a request iff the session is authenticated AND its
// role is in the allowed set. The admin guard is RequireRole(session,
// notifier, domain.RoleAdmin). Denial is a control-flow result, not an
// error: the operator is redirected to login with a notice.
func RequireRole(session ports.SessionReader, notifier ports.Notifier, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	denyMessage := "Your role does not have access to this view"
	if len(allowedRoles) == 1 && allowedRoles[0] == domain.RoleAdmin {
		denyMessage = "Admin access required"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := session.Snapshot()
			if !state.IsAuthenticated() {
				metrics.GuardDecisionsTotal.WithLabelValues("role", "denied").Inc()
				notifier.ReportError("guard", "Please log in to continue")
				return c.JSON(http.StatusUnauthorized, deniedResponse{
					Error:    "authentication required",
					Redirect: loginRedirect,
				})
			}
			if _, ok := allowed[state.Role]; !ok {
				metrics.GuardDecisionsTotal.WithLabelValues("role", "denied").Inc()
				notifier.ReportError("guard", denyMessage)
				return c.JSON(http.StatusForbidden, deniedResponse{
					Error:    denyMessage,
					Redirect: loginRedirect,
				})
			}

			metrics.GuardDecisionsTotal.WithLabelValues("role", "allowed").Inc()
			c.Set("role", string(state.Role))
			c.Set("token", state.Token)
			return next(c)
		}
	}
}
