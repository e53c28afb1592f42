package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndDeleteScript deletes KEYS[1] only when it still holds ARGV[1]
var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// deleteIfFieldScript deletes the hash KEYS[1] only when field ARGV[1] equals ARGV[2]
var deleteIfFieldScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient defines the interface for Redis operations to enable mocking
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisClient=MockRedisClient
type RedisClient interface {
	// Ping checks if Redis is reachable
	Ping(ctx context.Context) error

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

	// Close closes the Redis connection
	Close() error
}

// RealRedisClient wraps the actual Redis client
type RealRedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) RedisClient {
	return &RealRedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *RealRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RealRedisClient) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return r.client.HGetAll(ctx, key).Result()
}

func (r *RealRedisClient) HashSet(ctx context.Context, key string, fields map[string]string) error {
	return r.client.HSet(ctx, key, flattenFields(fields)...).Err()
}

func (r *RealRedisClient) HashReplace(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, flattenFields(fields)...)
		if ttl > 0 {
			pipe.PExpire(ctx, key, ttl)
		}
		return nil
	})
	return err
}

func (r *RealRedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.PExpire(ctx, key, ttl).Err()
}

func (r *RealRedisClient) SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

func (r *RealRedisClient) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RealRedisClient) DeleteIfValue(ctx context.Context, key, value string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, r.client, []string{key}, value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}

func (r *RealRedisClient) DeleteIfHashField(ctx context.Context, key, field, value string) (bool, error) {
	n, err := deleteIfFieldScript.Run(ctx, r.client, []string{key}, field, value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}

// Close closes the Redis connection
func (r *RealRedisClient) Close() error {
	return r.client.Close()
}

func flattenFields(fields map[string]string) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
