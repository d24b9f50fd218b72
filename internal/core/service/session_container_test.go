package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// memStore is an in-memory CredentialStore for tests.
type memStore struct {
	mu      sync.Mutex
	creds   ports.Credentials
	present bool

	failWrite bool
	failRead  bool
	clears    int
}

func (m *memStore) Write(_ context.Context, creds ports.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errors.New("storage unavailable")
	}
	m.creds = creds
	m.present = true
	return nil
}

func (m *memStore) Read(_ context.Context) (ports.Credentials, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return ports.Credentials{}, false, errors.New("storage unavailable")
	}
	return m.creds, m.present, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = ports.Credentials{}
	m.present = false
	m.clears++
	return nil
}

// stubNotifier records reported notices.
type stubNotifier struct {
	mu        sync.Mutex
	errors    []any
	successes []any
}

func (n *stubNotifier) ReportError(_ string, v any) domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, v)
	return domain.Notice{Severity: domain.SeverityError}
}

func (n *stubNotifier) ReportSuccess(_ string, v any) domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, v)
	return domain.Notice{Severity: domain.SeveritySuccess}
}

func (n *stubNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func testUser() *domain.User {
	return &domain.User{ID: 1, Name: "Alice", Email: "a@x.com", Role: "admin"}
}

func TestSessionContainer_Initialize_EmptyStore(t *testing.T) {
	sc := NewSessionContainer(&memStore{}, nil, zerolog.Nop())
	sc.Initialize(context.Background())

	if sc.Snapshot().IsAuthenticated() {
		t.Fatalf("expected unauthenticated state from empty store")
	}
}

func TestSessionContainer_Login_Rehydration_RoundTrip(t *testing.T) {
	store := &memStore{}
	first := NewSessionContainer(store, nil, zerolog.Nop())
	first.Initialize(context.Background())
	first.ApplyLogin(context.Background(), "tok1", testUser(), domain.RoleAdmin, time.Time{})

	// Simulate a process restart: fresh container, same store.
	second := NewSessionContainer(store, nil, zerolog.Nop())
	second.Initialize(context.Background())

	state := second.Snapshot()
	if !state.IsAuthenticated() {
		t.Fatalf("expected rehydrated session to be authenticated")
	}
	if state.Token != "tok1" {
		t.Fatalf("expected token tok1, got %q", state.Token)
	}
	if state.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", state.Role)
	}
	if state.User == nil || state.User.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", state.User)
	}
}

func TestSessionContainer_Initialize_UnrecognizedRole_FailsClosed(t *testing.T) {
	store := &memStore{
		creds:   ports.Credentials{Token: "tok", User: testUser(), Role: domain.Role("superuser")},
		present: true,
	}
	sc := NewSessionContainer(store, nil, zerolog.Nop())
	sc.Initialize(context.Background())

	if sc.Snapshot().IsAuthenticated() {
		t.Fatalf("unrecognized role must not authenticate")
	}
	if store.clears == 0 {
		t.Fatalf("expected store to be cleared")
	}
	if _, ok, _ := store.Read(context.Background()); ok {
		t.Fatalf("expected store to be empty after cleanup")
	}
}

func TestSessionContainer_Initialize_ReadFailure_FailsClosed(t *testing.T) {
	store := &memStore{failRead: true}
	sc := NewSessionContainer(store, nil, zerolog.Nop())
	sc.Initialize(context.Background())

	if sc.Snapshot().IsAuthenticated() {
		t.Fatalf("read failure must resolve to empty state")
	}
}

func TestSessionContainer_Initialize_RunsOnce(t *testing.T) {
	store := &memStore{}
	sc := NewSessionContainer(store, nil, zerolog.Nop())
	sc.Initialize(context.Background())
	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleAdmin, time.Time{})

	// A second Initialize must not re-read or disturb the live session.
	sc.Initialize(context.Background())
	if !sc.Snapshot().IsAuthenticated() {
		t.Fatalf("repeated Initialize must be a no-op")
	}
}

func TestSessionContainer_Logout_Idempotent(t *testing.T) {
	store := &memStore{}
	sc := NewSessionContainer(store, nil, zerolog.Nop())
	sc.Initialize(context.Background())
	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleAdmin, time.Time{})

	sc.ApplyLogout(context.Background())
	once := sc.Snapshot()
	sc.ApplyLogout(context.Background())
	twice := sc.Snapshot()

	if once.IsAuthenticated() || twice.IsAuthenticated() {
		t.Fatalf("expected empty state after logout")
	}
	if once.Token != twice.Token || once.Role != twice.Role {
		t.Fatalf("logout must be idempotent")
	}
	if _, ok, _ := store.Read(context.Background()); ok {
		t.Fatalf("expected store cleared after logout")
	}
}

func TestSessionContainer_ApplyLogin_StoreFailure_StillPublishes(t *testing.T) {
	store := &memStore{failWrite: true}
	notifier := &stubNotifier{}
	sc := NewSessionContainer(store, notifier, zerolog.Nop())
	sc.Initialize(context.Background())

	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleAdmin, time.Time{})

	if !sc.Snapshot().IsAuthenticated() {
		t.Fatalf("in-memory session must apply even when persistence fails")
	}
	if notifier.errorCount() == 0 {
		t.Fatalf("expected a persistence warning via the notifier")
	}
}

func TestSessionContainer_Stream_CurrentThenUpdates(t *testing.T) {
	sc := NewSessionContainer(&memStore{}, nil, zerolog.Nop())
	sc.Initialize(context.Background())

	ch, cancel := sc.Stream()
	defer cancel()

	select {
	case state := <-ch:
		if state.IsAuthenticated() {
			t.Fatalf("initial broadcast should be the empty state")
		}
	case <-time.After(time.Second):
		t.Fatalf("no initial broadcast")
	}

	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleWriter, time.Time{})

	select {
	case state := <-ch:
		// Atomic publish: never a token without its user and role.
		if state.Token == "" || state.User == nil || state.Role == "" {
			t.Fatalf("observed partial state: %+v", state)
		}
		if state.Role != domain.RoleWriter {
			t.Fatalf("expected writer role, got %q", state.Role)
		}
	case <-time.After(time.Second):
		t.Fatalf("no broadcast after login")
	}
}

func TestSessionContainer_Stream_CancelClosesChannel(t *testing.T) {
	sc := NewSessionContainer(&memStore{}, nil, zerolog.Nop())
	sc.Initialize(context.Background())

	ch, cancel := sc.Stream()
	<-ch
	cancel()

	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after cancel")
	}
	// A publish after cancel must not panic.
	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleUser, time.Time{})
}

func TestSessionContainer_Snapshot_DoesNotAliasUser(t *testing.T) {
	sc := NewSessionContainer(&memStore{}, nil, zerolog.Nop())
	sc.Initialize(context.Background())
	sc.ApplyLogin(context.Background(), "tok", testUser(), domain.RoleAdmin, time.Time{})

	snap := sc.Snapshot()
	snap.User.Name = "mutated"

	if sc.Snapshot().User.Name != "Alice" {
		t.Fatalf("snapshot must not expose the container's user by reference")
	}
}

func TestSessionContainer_LoginLatch(t *testing.T) {
	sc := NewSessionContainer(&memStore{}, nil, zerolog.Nop())

	if !sc.BeginLogin() {
		t.Fatalf("first BeginLogin should succeed")
	}
	if sc.BeginLogin() {
		t.Fatalf("second BeginLogin should be rejected while in flight")
	}
	sc.EndLogin()
	if !sc.BeginLogin() {
		t.Fatalf("BeginLogin should succeed after EndLogin")
	}
}
