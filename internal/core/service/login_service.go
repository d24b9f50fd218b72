package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// LoginService drives the credential exchange and hands a well-formed result
// to the session container. It owns no state of its own: failures propagate
// unchanged to the caller, and a rejected login never touches the session.
type LoginService struct {
	gateway    ports.IdentityGateway
	container  *SessionContainer
	defaultTTL time.Duration
	log        zerolog.Logger
}

func NewLoginService(gateway ports.IdentityGateway, container *SessionContainer, defaultTTL time.Duration, log zerolog.Logger) *LoginService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &LoginService{
		gateway:    gateway,
		container:  container,
		defaultTTL: defaultTTL,
		log:        log.With().Str("component", "login").Logger(),
	}
}

// Login exchanges credentials with the upstream API. On a well-formed
// success payload the session is applied atomically and the raw result is
// returned for the caller's own handling (role-based redirects and the
// like).
//
// An authenticated account whose role is not recognized by this console does
// NOT establish a session: the login is rejected with ErrRoleNotAllowed.
// A second call while one is outstanding is rejected with ErrLoginInFlight.
func (s *LoginService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.container.BeginLogin() {
		return nil, domain.ErrLoginInFlight
	}
	defer s.container.EndLogin()

	result, err := s.gateway.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	if result == nil || result.Token == "" || result.User == nil {
		return nil, domain.ErrMalformedLoginPayload
	}

	rawRole := result.Role
	if rawRole == "" {
		rawRole = result.User.Role
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		s.log.Warn().Str("role", rawRole).Str("email", result.User.Email).
			Msg("rejected login with unrecognized role")
		return nil, domain.ErrRoleNotAllowed
	}

	s.container.ApplyLogin(ctx, result.Token, result.User, role, s.sessionExpiry(result))

	s.log.Info().Str("email", result.User.Email).Str("role", string(role)).Msg("login applied")
	return result, nil
}

// Logout drops the session. Idempotent.
func (s *LoginService) Logout(ctx context.Context) {
	s.container.ApplyLogout(ctx)
}

// sessionExpiry bounds the persisted session lifetime. The upstream token is
// opaque to the console, but when it happens to parse as a JWT its exp claim
// is the authoritative bound; otherwise the payload's expires_at is used,
// falling back to the configured default.
func (s *LoginService) sessionExpiry(result *ports.LoginResult) time.Time {
	if exp, ok := tokenExpiry(result.Token); ok {
		return exp
	}
	if !result.ExpiresAt.IsZero() {
		return result.ExpiresAt
	}
	return time.Now().Add(s.defaultTTL)
}

// tokenExpiry peeks at the exp claim without verifying the signature. The
// console is not the token's issuer and never trusts any other claim.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
