package gateway_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/mocks"
)

// controllableClock returns a mock clock whose Now follows *now
func controllableClock(ctrl *gomock.Controller, now *time.Time) *mocks.MockClock {
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration { return now.Sub(t) }).AnyTimes()
	return clock
}

func TestCache_TTLBoundary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ttl := 20 * time.Minute
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := createdAt
	cache, err := gateway.NewCache(10, ttl, controllableClock(ctrl, &now))
	require.NoError(t, err)

	cache.Add("bafy/1.json", "https://ipfs.io/ipfs/bafy/1.json", "ipfs.io")
	cache.Add("bafy/2.json", "https://ipfs.io/ipfs/bafy/2.json", "ipfs.io")

	now = createdAt.Add(ttl - time.Millisecond)
	entry, ok := cache.Get("bafy/1.json")
	require.True(t, ok)
	assert.Equal(t, "ipfs.io", entry.GatewayName)

	now = createdAt.Add(ttl + time.Millisecond)
	_, ok = cache.Get("bafy/2.json")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len(), "expired entry is removed on read")
}

func TestCache_HitRefreshesCreatedAt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ttl := time.Minute
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	cache, err := gateway.NewCache(10, ttl, controllableClock(ctrl, &now))
	require.NoError(t, err)

	cache.Add("bafy", "https://ipfs.io/ipfs/bafy", "ipfs.io")

	hit := start.Add(50 * time.Second)
	now = hit
	entry, ok := cache.Get("bafy")
	require.True(t, ok)
	assert.Equal(t, hit, entry.CreatedAt)

	// Past the original expiry, within the refreshed one
	now = start.Add(70 * time.Second)
	_, ok = cache.Get("bafy")
	require.True(t, ok)

	// Untouched for a full TTL after the last hit
	now = start.Add(70*time.Second + ttl + time.Millisecond)
	_, ok = cache.Get("bafy")
	assert.False(t, ok)
}

func TestCache_LRUEviction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache, err := gateway.NewCache(2, time.Hour, controllableClock(ctrl, &now))
	require.NoError(t, err)

	cache.Add("a", "https://ipfs.io/ipfs/a", "ipfs.io")
	cache.Add("b", "https://ipfs.io/ipfs/b", "ipfs.io")

	// Touch a so b becomes the oldest
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Add("c", "https://ipfs.io/ipfs/c", "ipfs.io")

	assert.Equal(t, 2, cache.Len())
	_, ok = cache.Get("b")
	assert.False(t, ok)
	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}
