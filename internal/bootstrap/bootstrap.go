package bootstrap

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/chain"
	"github.com/feral-file/nft-metadata-gateway/internal/config"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/messaging"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
	"github.com/feral-file/nft-metadata-gateway/internal/providers/ethereum"
	"github.com/feral-file/nft-metadata-gateway/internal/resolution"
	"github.com/feral-file/nft-metadata-gateway/internal/store"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

// Dependencies are the external connections the components are built on
// Nil fields are replaced with the real adapters
type Dependencies struct {
	EthDialer  adapter.EthClientDialer
	HTTPClient adapter.HTTPClient
	Clock      adapter.Clock
	Redis      func(cfg config.RedisConfig) adapter.RedisClient
	Publisher  messaging.Publisher
}

// Components is the wired resolution pipeline
type Components struct {
	Orchestrator *resolution.Orchestrator
	Selector     *gateway.Selector
	Registry     *gateway.Registry
	Cache        *store.MetadataCache

	// Ping checks the shared store
	Ping func(ctx context.Context) error

	closers []func()
}

// Close releases every connection opened by Build, in reverse order
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (d Dependencies) withDefaults(cfg config.CoreConfig) Dependencies {
	if d.EthDialer == nil {
		d.EthDialer = adapter.NewEthClientDialer()
	}
	if d.Clock == nil {
		d.Clock = adapter.NewClock()
	}
	if d.HTTPClient == nil {
		d.HTTPClient = adapter.NewHTTPClient(cfg.HTTP.Timeout, adapter.RetryConfig{
			InitialInterval: cfg.HTTP.RetryInitialInterval,
			MaxInterval:     cfg.HTTP.RetryMaxInterval,
			MaxElapsedTime:  cfg.HTTP.RetryMaxElapsedTime,
		})
	}
	if d.Redis == nil {
		d.Redis = func(rc config.RedisConfig) adapter.RedisClient {
			return adapter.NewRedisClient(rc.Addr, rc.Password, rc.DB)
		}
	}
	if d.Publisher == nil {
		d.Publisher = messaging.NewNopPublisher()
	}
	return d
}

// Build wires the resolution pipeline from configuration
func Build(ctx context.Context, cfg config.CoreConfig, deps Dependencies) (*Components, error) {
	deps = deps.withDefaults(cfg)

	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	jsonAdapter := adapter.NewJSON()

	// Shared store
	kv, err := buildKV(ctx, cfg, deps, c)
	if err != nil {
		return nil, err
	}

	cache, err := store.NewMetadataCache(kv, jsonAdapter, deps.Clock, store.MetadataCacheConfig{
		RealTTL:        cfg.Store.RealTTL,
		PlaceholderTTL: cfg.Store.PlaceholderTTL,
		HistoryTTL:     cfg.Store.HistoryTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}
	c.Cache = cache

	locker, err := store.NewLocker(kv, cfg.Resolution.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create locker: %w", err)
	}

	// Chain
	ethClient, err := deps.EthDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum RPC: %w", err)
	}
	c.closers = append(c.closers, ethClient.Close)

	pointerReader, err := chain.NewResolver(ethereum.NewClient(ethClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create chain resolver: %w", err)
	}

	// Gateways
	selector, err := buildSelector(cfg.Gateway, deps)
	if err != nil {
		return nil, err
	}
	c.Selector = selector
	c.Registry = selector.Registry()

	fetcher := metadata.NewFetcher(deps.HTTPClient, jsonAdapter, selector, uri.NewDataURIChecker(), deps.Clock, metadata.FetcherConfig{
		MaxBytes:            domain.MAX_METADATA_BYTES,
		ImageGatewayTimeout: cfg.Resolution.ImageGatewayTimeout,
		ArweaveGateway:      cfg.Resolution.ArweaveGateway,
	})

	var recoverer resolution.Recoverer = resolution.NopRecoverer{}
	if cfg.Resolution.EnableRecoveryStage {
		recoverer = resolution.NewCIDHistoryRecoverer(cache, selector, fetcher, deps.Clock)
	}

	orchestrator, err := resolution.New(resolution.Dependencies{
		Cache:     cache,
		Locker:    locker,
		Chain:     pointerReader,
		Selector:  selector,
		Fetcher:   fetcher,
		Recoverer: recoverer,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
	}, resolution.Config{
		Timeout:              cfg.Resolution.Timeout,
		ChainTimeout:         cfg.Resolution.ChainTimeout,
		GatewayTimeout:       cfg.Resolution.GatewayTimeout,
		FetchTimeout:         cfg.Resolution.FetchTimeout,
		RecoveryTimeout:      cfg.Resolution.RecoveryTimeout,
		StoreTimeout:         cfg.Resolution.StoreTimeout,
		LockTTL:              cfg.Resolution.LockTTL,
		EnableRecoveryStage:  cfg.Resolution.EnableRecoveryStage,
		SelfReferencePattern: cfg.Resolution.SelfReferencePattern,
		ArweaveGateway:       cfg.Resolution.ArweaveGateway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	c.Orchestrator = orchestrator

	ok = true
	return c, nil
}

func buildKV(ctx context.Context, cfg config.CoreConfig, deps Dependencies, c *Components) (store.KV, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client := deps.Redis(cfg.Redis)
		c.closers = append(c.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		})
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Ping = client.Ping
		logger.InfoCtx(ctx, "Connected to redis", zap.String("addr", cfg.Redis.Addr))
		return client, nil
	case config.StoreDriverMemory, "":
		c.Ping = func(context.Context) error { return nil }
		logger.WarnCtx(ctx, "Using in-memory store, cache and locks are not shared across instances")
		return store.NewMemoryKV(deps.Clock), nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", domain.ErrConfiguration, cfg.Store.Driver)
	}
}

// BuildSelector wires the gateway selector alone, for callers that never touch the chain
func BuildSelector(cfg config.CoreConfig, deps Dependencies) (*gateway.Selector, error) {
	return buildSelector(cfg.Gateway, deps.withDefaults(cfg))
}

func buildSelector(cfg config.GatewayConfig, deps Dependencies) (*gateway.Selector, error) {
	candidates := make([]gateway.Candidate, 0, len(cfg.Gateways))
	for _, g := range cfg.Gateways {
		candidates = append(candidates, gateway.Candidate{
			Name:      g.Name,
			Template:  g.URL,
			RangeOnly: g.RangeOnly,
		})
	}

	registry, err := gateway.NewRegistry(candidates, cfg.DemotedGateways...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway registry: %w", err)
	}

	var scorer gateway.Scorer
	switch cfg.Scorer {
	case config.ScorerPriority, "":
		scorer = gateway.NewPriorityScorer(registry)
	case config.ScorerPerformance:
		scorer = gateway.NewPerformanceScorer(registry,
			gateway.WithWindow(cfg.PerformanceWindow),
			gateway.WithJitter(cfg.Jitter, rand.Float64))
	default:
		return nil, fmt.Errorf("%w: unknown gateway scorer %q", domain.ErrConfiguration, cfg.Scorer)
	}

	gatewayCache, err := gateway.NewCache(cfg.CacheSize, cfg.CacheTTL, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway cache: %w", err)
	}

	prober := gateway.NewProber(deps.HTTPClient, adapter.NewIO(), deps.Clock)

	return gateway.NewSelector(registry, prober, scorer, gatewayCache, deps.Clock, gateway.SelectorConfig{
		RetryBackoff:    cfg.RetryBackoff,
		RetryMaxBackoff: cfg.RetryMaxBackoff,
	}), nil
}
