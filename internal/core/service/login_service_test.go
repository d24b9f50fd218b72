package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// stubGateway is a canned IdentityGateway.
type stubGateway struct {
	result *ports.LoginResult
	err    error
	calls  int
}

func (g *stubGateway) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	g.calls++
	return g.result, g.err
}

func newLoginFixture(gw *stubGateway) (*LoginService, *SessionContainer, *memStore) {
	store := &memStore{}
	container := NewSessionContainer(store, nil, zerolog.Nop())
	container.Initialize(context.Background())
	return NewLoginService(gw, container, time.Hour, zerolog.Nop()), container, store
}

func TestLogin_AdminSuccess(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 7, Name: "Root", Email: "root@x.com", Role: "admin"},
		Role:  "admin",
	}}
	svc, container, store := newLoginFixture(gw)

	result, err := svc.Login(context.Background(), "root@x.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token != "tok" {
		t.Fatalf("expected raw result back, got %+v", result)
	}

	state := container.Snapshot()
	if !state.IsAuthenticated() || !state.IsAdmin() {
		t.Fatalf("expected authenticated admin session, got %+v", state)
	}

	creds, ok, _ := store.Read(context.Background())
	if !ok || creds.Token != "tok" || creds.Role != domain.RoleAdmin {
		t.Fatalf("expected persisted credentials, got %+v present=%v", creds, ok)
	}
}

func TestLogin_RoleFromUserWhenPayloadOmitsIt(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 2, Email: "w@x.com", Role: "writer"},
	}}
	svc, container, _ := newLoginFixture(gw)

	if _, err := svc.Login(context.Background(), "w@x.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := container.Snapshot().Role; got != domain.RoleWriter {
		t.Fatalf("expected writer role from user record, got %q", got)
	}
}

func TestLogin_RegularUserEstablishesSession(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 3, Email: "u@x.com", Role: "user"},
		Role:  "user",
	}}
	svc, container, _ := newLoginFixture(gw)

	if _, err := svc.Login(context.Background(), "u@x.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := container.Snapshot()
	if !state.IsAuthenticated() {
		t.Fatalf("a recognized non-admin role must still log in")
	}
	if state.IsAdmin() || state.IsWriter() {
		t.Fatalf("role %q must not grant elevated checks", state.Role)
	}
}

func TestLogin_UnrecognizedRoleRejected(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 4, Email: "s@x.com", Role: "superuser"},
		Role:  "superuser",
	}}
	svc, container, store := newLoginFixture(gw)

	_, err := svc.Login(context.Background(), "s@x.com", "secret1")
	if !errors.Is(err, domain.ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
	if container.Snapshot().IsAuthenticated() {
		t.Fatalf("rejected login must not establish a session")
	}
	if _, ok, _ := store.Read(context.Background()); ok {
		t.Fatalf("rejected login must not persist credentials")
	}
}

func TestLogin_GatewayErrorPropagatesUnchanged(t *testing.T) {
	upstreamErr := errors.New("upstream said no")
	gw := &stubGateway{err: upstreamErr}
	svc, container, _ := newLoginFixture(gw)

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected the gateway error verbatim, got %v", err)
	}
	if container.Snapshot().IsAuthenticated() {
		t.Fatalf("failed login must leave the session untouched")
	}
}

func TestLogin_MalformedPayload(t *testing.T) {
	cases := []struct {
		name   string
		result *ports.LoginResult
	}{
		{"nil result", nil},
		{"missing token", &ports.LoginResult{User: &domain.User{ID: 1, Role: "admin"}}},
		{"missing user", &ports.LoginResult{Token: "tok"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, container, _ := newLoginFixture(&stubGateway{result: tc.result})
			_, err := svc.Login(context.Background(), "a@x.com", "secret1")
			if !errors.Is(err, domain.ErrMalformedLoginPayload) {
				t.Fatalf("expected ErrMalformedLoginPayload, got %v", err)
			}
			if container.Snapshot().IsAuthenticated() {
				t.Fatalf("malformed payload must not establish a session")
			}
		})
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	gw := &stubGateway{}
	svc, _, _ := newLoginFixture(gw)

	if _, err := svc.Login(context.Background(), "", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@x.com", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("empty credentials must not reach the upstream")
	}
}

func TestLogin_RejectedWhileInFlight(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 1, Role: "admin"},
	}}
	svc, container, _ := newLoginFixture(gw)

	if !container.BeginLogin() {
		t.Fatalf("setup: latch should be free")
	}
	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if !errors.Is(err, domain.ErrLoginInFlight) {
		t.Fatalf("expected ErrLoginInFlight, got %v", err)
	}
	container.EndLogin()

	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login after latch release should succeed, got %v", err)
	}
}

func TestLogin_SessionExpiryFromTokenClaim(t *testing.T) {
	exp := time.Now().Add(90 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	gw := &stubGateway{result: &ports.LoginResult{
		Token: token,
		User:  &domain.User{ID: 7, Role: "admin"},
	}}
	svc, _, store := newLoginFixture(gw)

	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	creds, _, _ := store.Read(context.Background())
	if !creds.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v from token claim, got %v", exp, creds.ExpiresAt)
	}
}

func TestLogin_SessionExpiryFallsBackToDefault(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "opaque-token",
		User:  &domain.User{ID: 7, Role: "admin"},
	}}
	svc, _, store := newLoginFixture(gw)

	before := time.Now()
	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	creds, _, _ := store.Read(context.Background())
	if creds.ExpiresAt.Before(before.Add(59*time.Minute)) || creds.ExpiresAt.After(before.Add(61*time.Minute)) {
		t.Fatalf("expected expiry around the 1h default, got %v", creds.ExpiresAt)
	}
}

func TestLogout_DropsSession(t *testing.T) {
	gw := &stubGateway{result: &ports.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 1, Role: "admin"},
	}}
	svc, container, _ := newLoginFixture(gw)

	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Logout(context.Background())
	if container.Snapshot().IsAuthenticated() {
		t.Fatalf("expected empty session after logout")
	}
}
