package ports

import "github.com/realspark/console-gateway/internal/core/domain"

// SessionReader is the read-only view of the session container that guards
// and handlers consume. Snapshot never blocks; before initialization it
// reads as the empty state (fail closed).
type SessionReader interface {
	Snapshot() domain.AuthState
	Stream() (<-chan domain.AuthState, func())
}
