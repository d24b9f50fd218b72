// Package credstore provides the durable persistence implementations behind
// ports.CredentialStore. The real store keeps the operator session in Redis
// under three fixed keys; a no-op variant serves runtimes without a
// persistence backend.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

// Persisted key layout. Absence of any one key means "no session".
const (
	keyToken = "console:auth_token"
	keyUser  = "console:current_user"
	keyRole  = "console:role"
)

const defaultRetention = 24 * time.Hour

// RedisStore persists the session triple in Redis. When a sealing key is
// configured, token and user are encrypted at rest; the role stays plain (it
// is only an access-control hint and fails closed on its own).
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	sealer    *sealer
	log       zerolog.Logger
}

// NewRedisStore builds a RedisStore. sealKey must be empty or 32 bytes; a
// nil key disables sealing. retention bounds sessions with no explicit
// expiry.
func NewRedisStore(client *redis.Client, retention time.Duration, sealKey []byte, log zerolog.Logger) (*RedisStore, error) {
	if retention <= 0 {
		retention = defaultRetention
	}
	var s *sealer
	if len(sealKey) > 0 {
		var err error
		if s, err = newSealer(sealKey); err != nil {
			return nil, fmt.Errorf("credstore: %w", err)
		}
	}
	return &RedisStore{
		client:    client,
		retention: retention,
		sealer:    s,
		log:       log.With().Str("component", "credstore").Logger(),
	}, nil
}

// Write persists all three session keys with a shared TTL.
func (s *RedisStore) Write(ctx context.Context, creds ports.Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("serialize user: %w", err)
	}

	token := creds.Token
	user := string(userJSON)
	if s.sealer != nil {
		token = s.sealer.seal([]byte(creds.Token))
		user = s.sealer.seal(userJSON)
	}

	ttl := s.retention
	if !creds.ExpiresAt.IsZero() {
		if until := time.Until(creds.ExpiresAt); until > 0 {
			ttl = until
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyToken, token, ttl)
	pipe.Set(ctx, keyUser, user, ttl)
	pipe.Set(ctx, keyRole, string(creds.Role), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Read loads the persisted triple. A missing key reads as no session; data
// that cannot be opened or deserialized clears the store so the next startup
// does not fail the same way.
func (s *RedisStore) Read(ctx context.Context) (ports.Credentials, bool, error) {
	vals, err := s.client.MGet(ctx, keyToken, keyUser, keyRole).Result()
	if err != nil {
		return ports.Credentials{}, false, fmt.Errorf("read session: %w", err)
	}

	token, okT := vals[0].(string)
	user, okU := vals[1].(string)
	role, okR := vals[2].(string)
	if !okT || !okU || !okR || token == "" || user == "" || role == "" {
		if okT || okU || okR {
			// A partial triple is left over from an interrupted write.
			s.log.Warn().Msg("partial session found, clearing")
			_ = s.Clear(ctx)
		}
		return ports.Credentials{}, false, nil
	}

	userJSON := []byte(user)
	tokenPlain := token
	if s.sealer != nil {
		opened, err := s.sealer.open(token)
		if err != nil {
			return s.discardCorrupt(ctx, err)
		}
		tokenPlain = string(opened)
		if userJSON, err = s.sealer.open(user); err != nil {
			return s.discardCorrupt(ctx, err)
		}
	}

	var u domain.User
	if err := json.Unmarshal(userJSON, &u); err != nil {
		return s.discardCorrupt(ctx, err)
	}

	return ports.Credentials{Token: tokenPlain, User: &u, Role: domain.Role(role)}, true, nil
}

// Clear removes all session keys. Idempotent.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, keyToken, keyUser, keyRole).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) discardCorrupt(ctx context.Context, cause error) (ports.Credentials, bool, error) {
	s.log.Warn().Err(cause).Msg("corrupted session data, clearing store")
	_ = s.Clear(ctx)
	return ports.Credentials{}, false, nil
}
