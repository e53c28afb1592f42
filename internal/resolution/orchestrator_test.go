package resolution_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/chain"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
	"github.com/feral-file/nft-metadata-gateway/internal/mocks"
	"github.com/feral-file/nft-metadata-gateway/internal/resolution"
	"github.com/feral-file/nft-metadata-gateway/internal/store"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

const (
	testCID      = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
	testContract = "0x1234567890abcdef1234567890abcdef12345678"
	testTokenID  = "42"
	testBaseURL  = "https://nft.example.com"
)

type fixture struct {
	ctrl       *gomock.Controller
	kv         *store.MemoryKV
	cache      *store.MetadataCache
	locker     *store.Locker
	chain      *mocks.MockPointerReader
	prober     *mocks.MockProber
	httpClient *mocks.MockHTTPClient
	recoverer  *mocks.MockRecoverer
	publisher  *mocks.MockPublisher
	selector   *gateway.Selector
	fetcher    metadata.Fetcher
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	clock := adapter.NewClock()

	kv := store.NewMemoryKV(clock)
	cache, err := store.NewMetadataCache(kv, adapter.NewJSON(), clock, store.MetadataCacheConfig{})
	require.NoError(t, err)
	locker, err := store.NewLocker(kv, 0)
	require.NoError(t, err)

	registry, err := gateway.NewRegistry([]gateway.Candidate{
		{Name: "first", Template: "https://first.example"},
		{Name: "second", Template: "https://second.example"},
	})
	require.NoError(t, err)
	gatewayCache, err := gateway.NewCache(100, time.Minute, clock)
	require.NoError(t, err)

	prober := mocks.NewMockProber(ctrl)
	selector := gateway.NewSelector(registry, prober, gateway.NewPriorityScorer(registry), gatewayCache, clock, gateway.SelectorConfig{})

	httpClient := mocks.NewMockHTTPClient(ctrl)
	fetcher := metadata.NewFetcher(httpClient, adapter.NewJSON(), selector, uri.NewDataURIChecker(), clock, metadata.FetcherConfig{})

	return &fixture{
		ctrl:       ctrl,
		kv:         kv,
		cache:      cache,
		locker:     locker,
		chain:      mocks.NewMockPointerReader(ctrl),
		prober:     prober,
		httpClient: httpClient,
		recoverer:  mocks.NewMockRecoverer(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		selector:   selector,
		fetcher:    fetcher,
	}
}

func (f *fixture) orchestrator(t *testing.T, cfg resolution.Config) *resolution.Orchestrator {
	o, err := resolution.New(resolution.Dependencies{
		Cache:     f.cache,
		Locker:    f.locker,
		Chain:     f.chain,
		Selector:  f.selector,
		Fetcher:   f.fetcher,
		Recoverer: f.recoverer,
		Publisher: f.publisher,
	}, cfg)
	require.NoError(t, err)
	return o
}

// onlySecondGatewayServes makes every probe fail except on the second gateway
func (f *fixture) onlySecondGatewayServes() {
	f.prober.EXPECT().
		Probe(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, url string, _ bool) gateway.ProbeResult {
			if strings.HasPrefix(url, "https://second.example/") {
				return gateway.ProbeResult{OK: true, StatusCode: 200}
			}
			return gateway.ProbeResult{StatusCode: 504, Diagnostic: "HTTP 504"}
		}).
		AnyTimes()
}

func (f *fixture) ignoreEvents() {
	f.publisher.EXPECT().PublishResolution(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func metadataJSON(name, image string) []byte {
	return []byte(fmt.Sprintf(`{"name":%q,"description":"d","image":%q,"attributes":[{"trait_type":"Edition","value":1}]}`, name, image))
}

func TestResolve_IPFSOnSecondGateway(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.onlySecondGatewayServes()
	f.ignoreEvents()

	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		Return(&chain.Pointer{URI: "ipfs://" + testCID + "/42.json"}, nil)
	f.httpClient.EXPECT().
		GetBytes(gomock.Any(), "https://second.example/ipfs/"+testCID+"/42.json", gomock.Any()).
		Return(metadataJSON("Forty Two", "ipfs://"+testCID+"/42.png"), nil)

	o := f.orchestrator(t, resolution.Config{})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceIPFS, result.Source)
	assert.Equal(t, "second", result.GatewayUsed)
	assert.False(t, result.Cached)
	assert.Equal(t, "Forty Two", result.Metadata.Name)
	assert.Equal(t, "https://second.example/ipfs/"+testCID+"/42.png", result.Metadata.ImageURL)
	assert.Equal(t, testCID+"/42.json", result.Metadata.MetadataCID)
	assert.GreaterOrEqual(t, result.LatencyMs, int64(0))

	// Served from the cache afterwards without touching the chain
	again, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCache, again.Source)
	assert.True(t, again.Cached)
	assert.Equal(t, "Forty Two", again.Metadata.Name)

	history, err := f.cache.MetadataCIDHistory(context.Background(), testContract, testTokenID)
	require.NoError(t, err)
	assert.Equal(t, []string{testCID + "/42.json"}, history)
}

func TestResolve_ChainFailureWithoutRecovery(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	f.chain.EXPECT().ResolvePointer(gomock.Any(), testContract, testTokenID).Return(nil, errors.New("rpc unavailable"))

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: false})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePlaceholder, result.Source)
	assert.Contains(t, result.Metadata.Description, domain.PendingResolutionMarker)
	assert.True(t, result.Metadata.IsPlaceholder())

	cached, ok, err := f.cache.Get(context.Background(), testContract, testTokenID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cached.Record.IsPlaceholder())
}

func TestResolve_ChainOutageReachesRecovery(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.onlySecondGatewayServes()
	f.ignoreEvents()

	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		Return(nil, errors.New("ownership check failed: dial tcp 127.0.0.1:8545: connect: connection refused"))
	f.recoverer.EXPECT().
		Recover(gomock.Any(), testContract, testTokenID).
		Return(&resolution.Recovery{
			Document:    map[string]interface{}{"name": "Recovered", "image": "https://cdn.example/r.png"},
			MetadataCID: testCID + "/42.json",
			GatewayUsed: "first",
		}, nil)

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: true})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceRecovered, result.Source)
	assert.Equal(t, "Recovered", result.Metadata.Name)
}

func TestResolve_SelfReferenceIsNeverFetched(t *testing.T) {
	pointers := []string{
		"https://other-host.example/api/v1/metadata/" + testContract + "/" + testTokenID,
		"https://other-host.example/api/metadata/" + testContract + "/" + testTokenID,
		testBaseURL + "/tokens/" + testTokenID + ".json",
	}

	for _, pointer := range pointers {
		t.Run(pointer, func(t *testing.T) {
			f := newFixture(t)
			defer f.ctrl.Finish()
			f.ignoreEvents()

			f.chain.EXPECT().ResolvePointer(gomock.Any(), testContract, testTokenID).Return(&chain.Pointer{URI: pointer}, nil)
			f.httpClient.EXPECT().GetBytes(gomock.Any(), pointer, gomock.Any()).Times(0)

			o := f.orchestrator(t, resolution.Config{})
			result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
			require.NoError(t, err)
			assert.Equal(t, domain.SourcePlaceholder, result.Source)
		})
	}
}

func TestResolve_SelfReferenceGoesToRecovery(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.onlySecondGatewayServes()
	f.ignoreEvents()

	pointer := testBaseURL + "/api/v1/metadata/" + testContract + "/" + testTokenID
	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		Return(&chain.Pointer{URI: pointer, Owner: "0x00000000000000000000000000000000000000aa"}, nil)
	f.recoverer.EXPECT().
		Recover(gomock.Any(), testContract, testTokenID).
		Return(&resolution.Recovery{
			Document:    map[string]interface{}{"name": "Recovered", "image": "https://cdn.example/r.png"},
			MetadataCID: testCID + "/42.json",
			GatewayUsed: "second",
		}, nil)

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: true})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceRecovered, result.Source)
	assert.Equal(t, "second", result.GatewayUsed)
	assert.Equal(t, "Recovered", result.Metadata.Name)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", result.Metadata.Owner)
}

func TestResolve_ConcurrentCallsResolveOnce(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		DoAndReturn(func(ctx context.Context, _, _ string) (*chain.Pointer, error) {
			close(entered)
			select {
			case <-proceed:
			case <-ctx.Done():
			}
			return &chain.Pointer{URI: "https://cdn.example/42.json"}, nil
		}).
		Times(1)
	f.httpClient.EXPECT().
		GetBytes(gomock.Any(), "https://cdn.example/42.json", gomock.Any()).
		Return(metadataJSON("Forty Two", "https://cdn.example/42.png"), nil)

	o := f.orchestrator(t, resolution.Config{})

	var (
		wg    sync.WaitGroup
		first *domain.FallbackResult
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
		assert.NoError(t, err)
		first = result
	}()

	<-entered
	second, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, second.Source)
	assert.True(t, second.Metadata.IsPlaceholder())

	close(proceed)
	wg.Wait()

	require.NotNil(t, first)
	assert.Equal(t, domain.SourceOnChain, first.Source)

	// The contended placeholder was never written over the real record
	cached, ok, err := f.cache.Get(context.Background(), testContract, testTokenID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Forty Two", cached.Record.Name)

	// The lock was released
	lease, err := f.locker.Acquire(context.Background(), store.LockKey(testContract, testTokenID), time.Second)
	require.NoError(t, err)
	assert.NotNil(t, lease)
}

func TestResolve_TokenNotFoundSkipsRecovery(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		Return(nil, fmt.Errorf("token 42: %w", domain.ErrTokenNotFound))
	f.recoverer.EXPECT().Recover(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: true})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, result.Source)
}

func TestResolve_InvalidMetadataFallsBackToRecovery(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		Return(&chain.Pointer{URI: "https://cdn.example/42.json"}, nil)
	f.httpClient.EXPECT().
		GetBytes(gomock.Any(), "https://cdn.example/42.json", gomock.Any()).
		Return([]byte(`{"name":"No image"}`), nil)
	f.recoverer.EXPECT().Recover(gomock.Any(), testContract, testTokenID).Return(nil, nil)

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: true})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, result.Source)
}

func TestResolve_InlineAndArweavePointers(t *testing.T) {
	t.Run("inline json", func(t *testing.T) {
		f := newFixture(t)
		defer f.ctrl.Finish()
		f.ignoreEvents()

		f.chain.EXPECT().
			ResolvePointer(gomock.Any(), testContract, testTokenID).
			Return(&chain.Pointer{URI: `data:application/json;utf8,{"name":"Inline","image":"https://cdn.example/i.png"}`}, nil)

		o := f.orchestrator(t, resolution.Config{})
		result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceOnChain, result.Source)
		assert.Equal(t, "Inline", result.Metadata.Name)
	})

	t.Run("arweave", func(t *testing.T) {
		f := newFixture(t)
		defer f.ctrl.Finish()
		f.ignoreEvents()

		f.chain.EXPECT().
			ResolvePointer(gomock.Any(), testContract, testTokenID).
			Return(&chain.Pointer{URI: "ar://tx123"}, nil)
		f.httpClient.EXPECT().
			GetBytes(gomock.Any(), "https://ar.example/tx123", gomock.Any()).
			Return(metadataJSON("Permanent", "ar://img456"), nil)

		o := f.orchestrator(t, resolution.Config{ArweaveGateway: "https://ar.example/"})
		result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceOnChain, result.Source)
		assert.Equal(t, "Permanent", result.Metadata.Name)
	})
}

func TestResolve_DeadlineFallsBackToPlaceholder(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	f.chain.EXPECT().
		ResolvePointer(gomock.Any(), testContract, testTokenID).
		DoAndReturn(func(ctx context.Context, _, _ string) (*chain.Pointer, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	o := f.orchestrator(t, resolution.Config{EnableRecoveryStage: true})
	start := time.Now()
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 50*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePlaceholder, result.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_CachedPlaceholderIsServed(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()
	f.ignoreEvents()

	placeholder := metadata.GeneratePlaceholder(testContract, testTokenID, testBaseURL)
	written, err := f.cache.PutPlaceholder(context.Background(), placeholder)
	require.NoError(t, err)
	require.True(t, written)

	o := f.orchestrator(t, resolution.Config{})
	result, err := o.Resolve(context.Background(), testContract, testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, result.Source)
	assert.True(t, result.Cached)
}

func TestResolve_PublishesEvent(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()

	f.chain.EXPECT().ResolvePointer(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("rpc unavailable"))
	f.publisher.EXPECT().
		PublishResolution(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ResolutionEvent) error {
			assert.Equal(t, testContract, event.ContractAddress)
			assert.Equal(t, testTokenID, event.TokenID)
			assert.Equal(t, domain.SourcePlaceholder, event.Source)
			return errors.New("broker down")
		})

	o := f.orchestrator(t, resolution.Config{})
	result, err := o.Resolve(context.Background(), strings.ToUpper(testContract[:2])+testContract[2:], testTokenID, testBaseURL, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, result.Source)
}

func TestResolve_InvalidInput(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()

	o := f.orchestrator(t, resolution.Config{})

	tests := []struct {
		contract string
		tokenID  string
	}{
		{"not-an-address", "1"},
		{"0x1234", "1"},
		{testContract, ""},
		{testContract, "-1"},
		{testContract, "0x1f"},
		{testContract, "1" + strings.Repeat("0", 80)},
	}
	for _, tt := range tests {
		_, err := o.Resolve(context.Background(), tt.contract, tt.tokenID, testBaseURL, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidTokenReference, "%s/%s", tt.contract, tt.tokenID)
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	f := newFixture(t)
	defer f.ctrl.Finish()

	complete := resolution.Dependencies{
		Cache:    f.cache,
		Locker:   f.locker,
		Chain:    f.chain,
		Selector: f.selector,
		Fetcher:  f.fetcher,
	}

	tests := []struct {
		name   string
		mutate func(*resolution.Dependencies, *resolution.Config)
	}{
		{"missing cache", func(d *resolution.Dependencies, _ *resolution.Config) { d.Cache = nil }},
		{"missing locker", func(d *resolution.Dependencies, _ *resolution.Config) { d.Locker = nil }},
		{"missing chain", func(d *resolution.Dependencies, _ *resolution.Config) { d.Chain = nil }},
		{"missing selector", func(d *resolution.Dependencies, _ *resolution.Config) { d.Selector = nil }},
		{"missing fetcher", func(d *resolution.Dependencies, _ *resolution.Config) { d.Fetcher = nil }},
		{"negative timeout", func(_ *resolution.Dependencies, c *resolution.Config) { c.Timeout = -time.Second }},
		{"bad pattern", func(_ *resolution.Dependencies, c *resolution.Config) { c.SelfReferencePattern = "(" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := complete
			cfg := resolution.Config{}
			tt.mutate(&deps, &cfg)
			_, err := resolution.New(deps, cfg)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	o, err := resolution.New(complete, resolution.Config{})
	require.NoError(t, err)
	assert.Equal(t, resolution.DefaultConfig().Timeout, o.Config().Timeout)
}
