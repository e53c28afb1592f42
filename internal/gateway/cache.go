package gateway

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
)

const (
	DefaultCacheTTL  = 20 * time.Minute
	DefaultCacheSize = 1000
)

// CacheEntry remembers which gateway last served a CID path
type CacheEntry struct {
	CID         string
	URL         string
	GatewayName string
	CreatedAt   time.Time
}

// Cache is a size-bounded LRU of working gateways. An entry expires a fixed TTL
// after its CreatedAt, which every hit moves to the time of the hit
type Cache struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, CacheEntry]
	ttl   time.Duration
	clock adapter.Clock
}

// NewCache creates a gateway cache
func NewCache(size int, ttl time.Duration, clock adapter.Clock) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	l, err := lru.New[string, CacheEntry](size)
	if err != nil {
		return nil, err
	}

	return &Cache{
		lru:   l,
		ttl:   ttl,
		clock: clock,
	}, nil
}

// Get returns a live entry and refreshes its CreatedAt
// Expired entries are removed on read
func (c *Cache) Get(cidPath string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(cidPath)
	if !ok {
		return CacheEntry{}, false
	}

	now := c.clock.Now()
	if now.Sub(entry.CreatedAt) > c.ttl {
		c.lru.Remove(cidPath)
		return CacheEntry{}, false
	}

	entry.CreatedAt = now
	c.lru.Add(cidPath, entry)
	return entry, true
}

// Add stores a fresh entry for cidPath
func (c *Cache) Add(cidPath, url, gatewayName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.lru.Add(cidPath, CacheEntry{
		CID:         cidPath,
		URL:         url,
		GatewayName: gatewayName,
		CreatedAt:   now,
	})
}

// Len returns the number of entries, including expired ones not yet read
func (c *Cache) Len() int {
	return c.lru.Len()
}
