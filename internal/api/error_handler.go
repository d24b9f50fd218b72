package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/service"
	"github.com/realspark/console-gateway/internal/infrastructure/upstream"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes upstream rejection statuses through with their extracted message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Upstream rejections keep their status; the message is whatever the
	// backend put in the body.
	var ue *upstream.Error
	if errors.As(err, &ue) {
		return ue.Status, upstreamMessage(ue)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrRoleNotAllowed):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrAdminRequired):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrLoginInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrMalformedLoginPayload):
		return http.StatusBadGateway, "upstream sent an unusable login response"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// upstreamMessage mirrors the relay's extraction order for the HTTP reply;
// the full normalization (logging, notice fan-out) already happened where
// the error was reported.
func upstreamMessage(ue *upstream.Error) string {
	if msg := service.ExtractBodyMessage(ue.Body); msg != "" {
		return msg
	}
	return ue.Error()
}
