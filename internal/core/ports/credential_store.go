package ports

import (
	"context"
	"time"

	"github.com/realspark/console-gateway/internal/core/domain"
)

// Credentials is the triple a credential store persists between runs.
// Absence of any field means "no session". ExpiresAt bounds how long the
// store keeps the session; zero means the store's default retention.
type Credentials struct {
	Token     string
	User      *domain.User
	Role      domain.Role
	ExpiresAt time.Time
}

// CredentialStore is the durable persistence capability for the operator
// session. Implementations must be safe to call from a single goroutine at a
// time (the session container is the only writer).
//
// Read returns ok == false when no complete session is persisted. A store
// that finds corrupted data must clear itself and report no session rather
// than fail the same way on every startup.
type CredentialStore interface {
	Write(ctx context.Context, creds Credentials) error
	Read(ctx context.Context) (Credentials, bool, error)
	// Clear removes all persisted session keys. Idempotent.
	Clear(ctx context.Context) error
}
