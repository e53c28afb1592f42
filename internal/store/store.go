package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	metadataKeyPrefix = "nft:metadata"
	historyKeyPrefix  = "nft:metadata-cids"
	lockKeyPrefix     = "nft:metadata-lock"
)

// KV is the shared key-value store behind the metadata cache and the resolution lock
// adapter.RedisClient satisfies it in production, MemoryKV in tests and single-node runs
//
//go:generate mockgen -source=store.go -destination=../mocks/kv.go -package=mocks -mock_names=KV=MockKV
type KV interface {
	// HashGetAll returns every field of a hash, an empty map when the key does not exist
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	// HashSet sets fields on a hash without touching the others
	HashSet(ctx context.Context, key string, fields map[string]string) error
	// HashReplace atomically deletes the key, writes the fields and sets the TTL
	HashReplace(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	// Expire sets the TTL of a key
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// SetIfNotExists is SET key value NX PX ttl
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes a key
	Delete(ctx context.Context, key string) error
	// DeleteIfValue removes a string key only when it still holds value
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
	// DeleteIfHashField removes a hash only when field equals value
	DeleteIfHashField(ctx context.Context, key, field, value string) (bool, error)
}

// MetadataKey returns the cache key of a token
func MetadataKey(contract, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", metadataKeyPrefix, strings.ToLower(contract), tokenID)
}

// HistoryKey returns the key of the metadata CID history of a token
func HistoryKey(contract, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", historyKeyPrefix, strings.ToLower(contract), tokenID)
}

// LockKey returns the resolution lock key of a token
func LockKey(contract, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", lockKeyPrefix, strings.ToLower(contract), tokenID)
}
