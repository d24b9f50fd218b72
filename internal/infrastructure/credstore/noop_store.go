package credstore

import (
	"context"

	"github.com/realspark/console-gateway/internal/core/ports"
)

// NoopStore is the persistence capability for runtimes without a durable
// backend: writes and clears succeed silently, reads find no session. The
// console then runs with an in-memory session only.
type NoopStore struct{}

func NewNoopStore() NoopStore { return NoopStore{} }

func (NoopStore) Write(context.Context, ports.Credentials) error { return nil }

func (NoopStore) Read(context.Context) (ports.Credentials, bool, error) {
	return ports.Credentials{}, false, nil
}

func (NoopStore) Clear(context.Context) error { return nil }
