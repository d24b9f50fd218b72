package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// subscriber channels are buffered; a consumer that falls this far behind
// loses intermediate states but always receives the latest one eventually.
const streamBuffer = 8

// SessionContainer is the single authoritative holder of the operator's
// AuthState. It is constructed once in the composition root and handed by
// reference to every consumer; all mutation goes through ApplyLogin and
// ApplyLogout, and every published value is complete: subscribers never see
// a token without its user and role.
type SessionContainer struct {
	store    ports.CredentialStore
	notifier ports.Notifier
	log      zerolog.Logger

	mu      sync.RWMutex
	state   domain.AuthState
	subs    map[int]chan domain.AuthState
	nextSub int

	initOnce      sync.Once
	loginInFlight atomic.Bool
}

// NewSessionContainer creates an uninitialized container holding the empty
// state. The notifier is optional; when nil, storage warnings go to the log
// only.
func NewSessionContainer(store ports.CredentialStore, notifier ports.Notifier, log zerolog.Logger) *SessionContainer {
	return &SessionContainer{
		store:    store,
		notifier: notifier,
		log:      log.With().Str("component", "session").Logger(),
		state:    domain.EmptyAuthState(),
		subs:     make(map[int]chan domain.AuthState),
	}
}

// Initialize performs the one startup read of the credential store and
// publishes the rehydrated state. It must run before the router starts
// serving guarded routes; until it has run, Snapshot reads as
// unauthenticated. Repeated calls are no-ops.
//
// Any defect in the persisted data (read failure, incomplete triple,
// unrecognized role) resolves to the empty state, and the store is cleared
// so the next startup does not trip over the same data.
func (sc *SessionContainer) Initialize(ctx context.Context) {
	sc.initOnce.Do(func() {
		creds, ok, err := sc.store.Read(ctx)
		if err != nil {
			sc.log.Warn().Err(err).Msg("rehydration failed, clearing persisted session")
			sc.clearStore(ctx)
			sc.publish(domain.EmptyAuthState())
			return
		}
		if !ok {
			sc.publish(domain.EmptyAuthState())
			return
		}

		role, valid := domain.ParseRole(string(creds.Role))
		if !valid || creds.Token == "" || creds.User == nil {
			sc.log.Warn().Str("role", string(creds.Role)).Msg("persisted session incomplete, clearing")
			sc.clearStore(ctx)
			sc.publish(domain.EmptyAuthState())
			return
		}

		sc.log.Info().Str("email", creds.User.Email).Str("role", string(role)).Msg("session rehydrated")
		sc.publish(domain.AuthState{User: creds.User, Token: creds.Token, Role: role})
	})
}

// ApplyLogin persists the new session and publishes it as one atomic
// broadcast. A storage write failure is non-fatal: the in-memory session
// still takes effect, and a warning is surfaced through the notifier.
func (sc *SessionContainer) ApplyLogin(ctx context.Context, token string, user *domain.User, role domain.Role, expiresAt time.Time) {
	err := sc.store.Write(ctx, ports.Credentials{Token: token, User: user, Role: role, ExpiresAt: expiresAt})
	if err != nil {
		sc.log.Warn().Err(err).Msg("session persistence unavailable, continuing in-memory")
		if sc.notifier != nil {
			sc.notifier.ReportError("session", "Session will not survive a restart: persistence is unavailable")
		}
	}
	sc.publish(domain.AuthState{User: user, Token: token, Role: role})
}

// ApplyLogout clears the persisted session and publishes the empty state.
// Safe to call repeatedly.
func (sc *SessionContainer) ApplyLogout(ctx context.Context) {
	sc.clearStore(ctx)
	sc.publish(domain.EmptyAuthState())
}

// Snapshot returns the current state synchronously. Guards use this for
// their one-shot decision; it never blocks.
func (sc *SessionContainer) Snapshot() domain.AuthState {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state.Clone()
}

// Stream subscribes to state broadcasts. The channel immediately carries the
// current state, then every subsequent publish. The returned cancel func
// unsubscribes and closes the channel.
func (sc *SessionContainer) Stream() (<-chan domain.AuthState, func()) {
	ch := make(chan domain.AuthState, streamBuffer)

	sc.mu.Lock()
	id := sc.nextSub
	sc.nextSub++
	sc.subs[id] = ch
	ch <- sc.state.Clone()
	sc.mu.Unlock()

	cancel := func() {
		sc.mu.Lock()
		defer sc.mu.Unlock()
		if c, ok := sc.subs[id]; ok {
			delete(sc.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// BeginLogin marks a login attempt as in flight. It returns false when
// another attempt has started and not yet finished, so callers can reject
// duplicate submissions instead of racing two exchanges.
func (sc *SessionContainer) BeginLogin() bool {
	return sc.loginInFlight.CompareAndSwap(false, true)
}

// EndLogin releases the in-flight latch.
func (sc *SessionContainer) EndLogin() {
	sc.loginInFlight.Store(false)
}

func (sc *SessionContainer) clearStore(ctx context.Context) {
	if err := sc.store.Clear(ctx); err != nil {
		sc.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

// publish replaces the state and fans it out under one critical section, so
// no subscriber can interleave between the swap and the broadcast.
func (sc *SessionContainer) publish(next domain.AuthState) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.state = next
	for id, ch := range sc.subs {
		select {
		case ch <- next.Clone():
		default:
			// Drop the oldest value to make room for the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next.Clone():
			default:
				sc.log.Warn().Int("subscriber", id).Msg("dropping state broadcast for stalled subscriber")
			}
		}
	}
}
