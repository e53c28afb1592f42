package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

const (
	fieldRecord      = "record"
	fieldSource      = "source"
	fieldCachedAt    = "cached_at"
	fieldPlaceholder = "placeholder"

	DefaultRealTTL        = 15 * time.Minute
	DefaultPlaceholderTTL = 30 * time.Second
	DefaultHistoryTTL     = 7 * 24 * time.Hour

	// timestampLayout is fixed width so stamps sort lexically
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// MetadataCacheConfig holds the TTLs of cached records
type MetadataCacheConfig struct {
	RealTTL        time.Duration
	PlaceholderTTL time.Duration
	HistoryTTL     time.Duration
}

// CachedRecord is a record read back from the cache
type CachedRecord struct {
	Record   *domain.NFTMetadataRecord
	Source   domain.Source
	CachedAt time.Time
}

// MetadataCache stores resolved metadata records in the shared KV
//
// Records are written wholesale as RFC 8785 canonical JSON, so a real record
// never inherits fields from a placeholder it replaces.
type MetadataCache struct {
	kv     KV
	json   adapter.JSON
	clock  adapter.Clock
	config MetadataCacheConfig
}

// NewMetadataCache creates a metadata cache on top of kv
func NewMetadataCache(kv KV, jsonAdapter adapter.JSON, clock adapter.Clock, cfg MetadataCacheConfig) (*MetadataCache, error) {
	if kv == nil {
		return nil, fmt.Errorf("%w: metadata cache requires a key-value store", domain.ErrConfiguration)
	}
	if cfg.RealTTL <= 0 {
		cfg.RealTTL = DefaultRealTTL
	}
	if cfg.PlaceholderTTL <= 0 {
		cfg.PlaceholderTTL = DefaultPlaceholderTTL
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = DefaultHistoryTTL
	}

	return &MetadataCache{
		kv:     kv,
		json:   jsonAdapter,
		clock:  clock,
		config: cfg,
	}, nil
}

// Config returns the effective TTLs
func (c *MetadataCache) Config() MetadataCacheConfig {
	return c.config
}

// Get returns the cached record of a token
// Entries that cannot be decoded or fail validation are deleted and reported as a miss
func (c *MetadataCache) Get(ctx context.Context, contract, tokenID string) (*CachedRecord, bool, error) {
	key := MetadataKey(contract, tokenID)
	fields, err := c.kv.HashGetAll(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	var record domain.NFTMetadataRecord
	if err := c.json.Unmarshal([]byte(fields[fieldRecord]), &record); err != nil || record.Name == "" || record.Image == "" {
		logger.WarnCtx(ctx, "Dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		if err := c.kv.Delete(ctx, key); err != nil {
			logger.WarnCtx(ctx, "failed to delete corrupt cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false, nil
	}

	cached := &CachedRecord{
		Record: &record,
		Source: domain.Source(fields[fieldSource]),
	}
	if t, err := time.Parse(time.RFC3339Nano, fields[fieldCachedAt]); err == nil {
		cached.CachedAt = t
	}
	return cached, true, nil
}

// Put replaces the cache entry of a token
// A zero ttl picks the real or placeholder TTL from the record
func (c *MetadataCache) Put(ctx context.Context, record *domain.NFTMetadataRecord, ttl time.Duration) error {
	if record == nil {
		return fmt.Errorf("nil record")
	}

	placeholder := record.IsPlaceholder()
	if ttl <= 0 {
		ttl = c.config.RealTTL
		if placeholder {
			ttl = c.config.PlaceholderTTL
		}
	}

	raw, err := c.json.MarshalCanonical(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	flag := "0"
	if placeholder {
		flag = "1"
	}

	key := MetadataKey(record.ContractAddress, record.TokenID)
	err = c.kv.HashReplace(ctx, key, map[string]string{
		fieldRecord:      string(raw),
		fieldSource:      string(record.Source),
		fieldCachedAt:    c.clock.Now().UTC().Format(timestampLayout),
		fieldPlaceholder: flag,
	}, ttl)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// PutPlaceholder caches a placeholder only when the key is empty or already holds a placeholder
func (c *MetadataCache) PutPlaceholder(ctx context.Context, record *domain.NFTMetadataRecord) (bool, error) {
	existing, ok, err := c.Get(ctx, record.ContractAddress, record.TokenID)
	if err != nil {
		return false, err
	}
	if ok && !existing.Record.IsPlaceholder() {
		return false, nil
	}
	if err := c.Put(ctx, record, c.config.PlaceholderTTL); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateIfPlaceholder deletes the entry of a token when it holds a placeholder
func (c *MetadataCache) InvalidateIfPlaceholder(ctx context.Context, contract, tokenID string) (bool, error) {
	key := MetadataKey(contract, tokenID)

	deleted, err := c.kv.DeleteIfHashField(ctx, key, fieldPlaceholder, "1")
	if err != nil {
		return false, fmt.Errorf("failed to invalidate placeholder: %w", err)
	}
	if deleted {
		return true, nil
	}

	// Entries written without the flag are recognised by the record markers
	existing, ok, err := c.Get(ctx, contract, tokenID)
	if err != nil || !ok || !existing.Record.IsPlaceholder() {
		return false, err
	}
	if err := c.kv.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("failed to invalidate placeholder: %w", err)
	}
	return true, nil
}

// RecordMetadataCID remembers a metadata CID that resolved for a token
func (c *MetadataCache) RecordMetadataCID(ctx context.Context, contract, tokenID, cidPath string) error {
	if cidPath == "" {
		return nil
	}

	key := HistoryKey(contract, tokenID)
	stamp := c.clock.Now().UTC().Format(timestampLayout)
	if err := c.kv.HashSet(ctx, key, map[string]string{cidPath: stamp}); err != nil {
		return fmt.Errorf("failed to record metadata CID: %w", err)
	}
	if err := c.kv.Expire(ctx, key, c.config.HistoryTTL); err != nil {
		return fmt.Errorf("failed to set history TTL: %w", err)
	}
	return nil
}

// MetadataCIDHistory returns the metadata CIDs that once resolved for a token, newest first
func (c *MetadataCache) MetadataCIDHistory(ctx context.Context, contract, tokenID string) ([]string, error) {
	fields, err := c.kv.HashGetAll(ctx, HistoryKey(contract, tokenID))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata CID history: %w", err)
	}

	cids := make([]string, 0, len(fields))
	for cidPath := range fields {
		cids = append(cids, cidPath)
	}
	sort.Slice(cids, func(i, j int) bool {
		if fields[cids[i]] == fields[cids[j]] {
			return strings.Compare(cids[i], cids[j]) < 0
		}
		return fields[cids[i]] > fields[cids[j]]
	})
	return cids, nil
}
