package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
	"github.com/realspark/console-gateway/internal/core/service"
	"github.com/realspark/console-gateway/internal/infrastructure/upstream"
)

// SessionHandler exposes the operator session lifecycle: login, logout, and
// the current session view.
type SessionHandler struct {
	login    *service.LoginService
	session  ports.SessionReader
	notifier ports.Notifier
}

func NewSessionHandler(login *service.LoginService, session ports.SessionReader, notifier ports.Notifier) *SessionHandler {
	return &SessionHandler{login: login, session: session, notifier: notifier}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,email"`
	Password   string `json:"password"   validate:"required,min=6"`
}

type sessionResponse struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *domain.User `json:"user,omitempty"`
	Role            string       `json:"role,omitempty"`
	IsAdmin         bool         `json:"is_admin"`
	IsWriter        bool         `json:"is_writer"`
}

type loginResponse struct {
	Message  string       `json:"message"`
	User     *domain.User `json:"user"`
	Role     string       `json:"role"`
	Redirect string       `json:"redirect"`
}

// Login exchanges operator credentials for a console session.
//
// @Summary      Log in to the console
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Operator credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.login.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		h.notifier.ReportError("login", err)
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	role := result.Role
	if role == "" && result.User != nil {
		role = result.User.Role
	}

	// Every recognized role lands on the dashboard; role-specific views are
	// gated per route, not at login.
	return c.JSON(http.StatusOK, loginResponse{
		Message:  "login successful",
		User:     result.User,
		Role:     role,
		Redirect: "/dashboard",
	})
}

// Logout drops the console session.
//
// @Summary      Log out of the console
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.login.Logout(c.Request().Context())
	h.notifier.ReportSuccess("session", "You have been logged out")
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Current returns the session state the console UI renders from. The token
// itself never leaves the gateway.
//
// @Summary      Current session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	state := h.session.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{
		IsAuthenticated: state.IsAuthenticated(),
		User:            state.User,
		Role:            string(state.Role),
		IsAdmin:         state.IsAdmin(),
		IsWriter:        state.IsWriter(),
	})
}

func loginOutcome(err error) string {
	var ue *upstream.Error
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRoleNotAllowed):
		return "role_rejected"
	case errors.Is(err, domain.ErrLoginInFlight):
		return "duplicate"
	case errors.Is(err, domain.ErrMalformedLoginPayload):
		return "malformed_payload"
	case errors.As(err, &ue):
		return "upstream_error"
	}
	return "upstream_error"
}
