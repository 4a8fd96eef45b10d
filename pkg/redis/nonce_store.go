package redis

import (
	"context"
	"time"

	domainerrors "go-payments.backend/internal/domain/errors"
)

// NonceStore burns one-time keys in Redis. Burning an already-burned key
// within its TTL fails, which is what makes login signatures single-use
// across all server instances.
type NonceStore struct{}

// NewNonceStore creates a nonce store on the shared Redis client.
func NewNonceStore() *NonceStore {
	return &NonceStore{}
}

// Burn consumes the key. Returns ErrSignatureReplayed when the key was
// already burned and is still within its TTL.
func (s *NonceStore) Burn(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := SetNX(ctx, key, 1, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrSignatureReplayed
	}
	return nil
}
