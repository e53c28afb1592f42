package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

// DefaultLockTTL bounds how long a crashed holder can block a token
const DefaultLockTTL = 10 * time.Second

// Lease is a held resolution lock
type Lease struct {
	Key   string
	Token string
}

// Locker is a non-blocking mutual exclusion lock over the shared KV
type Locker struct {
	kv         KV
	defaultTTL time.Duration
}

// NewLocker creates a locker
func NewLocker(kv KV, defaultTTL time.Duration) (*Locker, error) {
	if kv == nil {
		return nil, fmt.Errorf("%w: locker requires a key-value store", domain.ErrConfiguration)
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultLockTTL
	}
	return &Locker{kv: kv, defaultTTL: defaultTTL}, nil
}

// Acquire tries once to take the lock and never waits
// The returned lease is nil when another holder owns the key
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	token := uuid.NewString()
	ok, err := l.kv.SetIfNotExists(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &Lease{Key: key, Token: token}, nil
}

// Release deletes the lock only while it still carries the lease token
// so a holder whose lock expired cannot release the next holder's lock
func (l *Locker) Release(ctx context.Context, lease *Lease) (bool, error) {
	if lease == nil {
		return false, nil
	}
	released, err := l.kv.DeleteIfValue(ctx, lease.Key, lease.Token)
	if err != nil {
		return false, fmt.Errorf("failed to release lock: %w", err)
	}
	return released, nil
}
