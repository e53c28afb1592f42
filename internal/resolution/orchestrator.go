package resolution

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/chain"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/messaging"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
	"github.com/feral-file/nft-metadata-gateway/internal/metrics"
	"github.com/feral-file/nft-metadata-gateway/internal/store"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

// Dependencies are the collaborators of the orchestrator
// Recoverer, Publisher and Clock are optional
type Dependencies struct {
	Cache     *store.MetadataCache
	Locker    *store.Locker
	Chain     chain.PointerReader
	Selector  metadata.GatewaySelector
	Fetcher   metadata.Fetcher
	Recoverer Recoverer
	Publisher messaging.Publisher
	Clock     adapter.Clock
}

// Orchestrator runs the metadata fallback chain for a single token:
// cache, lock, on-chain pointer, fetch, recovery and finally placeholder
type Orchestrator struct {
	cache     *store.MetadataCache
	locker    *store.Locker
	chain     chain.PointerReader
	selector  metadata.GatewaySelector
	fetcher   metadata.Fetcher
	recoverer Recoverer
	publisher messaging.Publisher
	clock     adapter.Clock
	config    Config
	selfPath  *regexp.Regexp
}

// New creates an orchestrator. Missing collaborators are configuration errors.
func New(deps Dependencies, cfg Config) (*Orchestrator, error) {
	switch {
	case deps.Cache == nil:
		return nil, fmt.Errorf("%w: metadata cache store is required", domain.ErrConfiguration)
	case deps.Locker == nil:
		return nil, fmt.Errorf("%w: resolution locker is required", domain.ErrConfiguration)
	case deps.Chain == nil:
		return nil, fmt.Errorf("%w: on-chain resolver is required", domain.ErrConfiguration)
	case deps.Selector == nil:
		return nil, fmt.Errorf("%w: gateway selector is required", domain.ErrConfiguration)
	case deps.Fetcher == nil:
		return nil, fmt.Errorf("%w: metadata fetcher is required", domain.ErrConfiguration)
	}

	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	selfPath, err := regexp.Compile(cfg.SelfReferencePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid self reference pattern: %v", domain.ErrConfiguration, err)
	}

	if deps.Recoverer == nil {
		deps.Recoverer = NopRecoverer{}
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NewNopPublisher()
	}
	if deps.Clock == nil {
		deps.Clock = adapter.NewClock()
	}

	return &Orchestrator{
		cache:     deps.Cache,
		locker:    deps.Locker,
		chain:     deps.Chain,
		selector:  deps.Selector,
		fetcher:   deps.Fetcher,
		recoverer: deps.Recoverer,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		config:    cfg,
		selfPath:  selfPath,
	}, nil
}

// Config returns the effective configuration
func (o *Orchestrator) Config() Config {
	return o.config
}

// Resolve returns the metadata of a token. It only fails on invalid input; every
// other failure degrades to a placeholder document.
// A zero timeout uses the configured default.
func (o *Orchestrator) Resolve(ctx context.Context, contractAddress, tokenID, publicBaseURL string, timeout time.Duration) (*domain.FallbackResult, error) {
	if err := ValidateTokenReference(contractAddress, tokenID); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = o.config.Timeout
	}

	contract := strings.ToLower(contractAddress)
	start := o.clock.Now()
	ctx = logger.WithFields(ctx, zap.String("contract", contract), zap.String("token_id", tokenID))

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := o.resolve(deadlineCtx, contract, tokenID, publicBaseURL)

	elapsed := o.clock.Since(start)
	result.LatencyMs = elapsed.Milliseconds()
	o.report(ctx, contract, tokenID, result, elapsed)

	return result, nil
}

func (o *Orchestrator) resolve(ctx context.Context, contract, tokenID, publicBaseURL string) *domain.FallbackResult {
	cached, ok, err := o.cache.Get(ctx, contract, tokenID)
	if err != nil {
		logger.WarnCtx(ctx, "Metadata cache lookup failed", zap.Error(err))
	} else if ok {
		logger.DebugCtx(ctx, "Metadata cache hit", zap.String("source", string(cached.Source)))
		source := domain.SourceCache
		if cached.Record.IsPlaceholder() {
			source = domain.SourcePlaceholder
		}
		return &domain.FallbackResult{Metadata: cached.Record, Source: source, Cached: true}
	}

	lease, err := o.locker.Acquire(ctx, store.LockKey(contract, tokenID), o.config.LockTTL)
	switch {
	case err != nil:
		logger.WarnCtx(ctx, "Resolution lock unavailable, resolving unlocked", zap.Error(err))
	case lease == nil:
		metrics.ObserveLockContention()
		logger.InfoCtx(ctx, "Resolution already in progress, serving placeholder")
		return o.placeholder(ctx, contract, tokenID, publicBaseURL, false)
	default:
		defer o.release(ctx, lease)
	}

	if result := o.resolveFromChain(ctx, contract, tokenID, publicBaseURL); result != nil {
		return result
	}
	return o.placeholder(ctx, contract, tokenID, publicBaseURL, true)
}

// resolveFromChain returns nil when the chain gave no usable metadata
func (o *Orchestrator) resolveFromChain(ctx context.Context, contract, tokenID, publicBaseURL string) *domain.FallbackResult {
	chainCtx, cancel := context.WithTimeout(ctx, o.config.ChainTimeout)
	pointer, err := o.chain.ResolvePointer(chainCtx, contract, tokenID)
	cancel()

	if err != nil {
		if chain.IsNotFound(err) {
			logger.InfoCtx(ctx, "Token does not exist on chain, serving placeholder")
			return nil
		}
		logger.WarnCtx(ctx, "On-chain pointer read failed", zap.Error(err))
		return o.recover(ctx, contract, tokenID, publicBaseURL, "")
	}

	input := metadata.RecordInput{
		ContractAddress: contract,
		TokenID:         tokenID,
		PublicBaseURL:   publicBaseURL,
		Owner:           pointer.Owner,
		Source:          domain.SourceOnChain,
	}

	kind := classifyPointer(pointer.URI, o.selfPath, publicBaseURL)
	logger.DebugCtx(ctx, "Resolved on-chain pointer", zap.String("pointer", pointer.URI), zap.Stringer("kind", kind))

	var (
		doc         map[string]interface{}
		gatewayUsed string
	)
	switch kind {
	case pointerIPFS:
		input.Source = domain.SourceIPFS
		input.MetadataCID = uri.NormalizeCIDPath(pointer.URI)
		doc, gatewayUsed, err = o.fetchIPFS(ctx, pointer.URI)
	case pointerInline:
		doc, err = o.fetcher.ParseDataURI(pointer.URI)
	case pointerArweave:
		doc, err = o.fetchHTTP(ctx, strings.TrimRight(o.config.ArweaveGateway, "/")+"/"+pointer.URI[len("ar://"):])
	case pointerHTTP:
		doc, err = o.fetchHTTP(ctx, pointer.URI)
	case pointerSelfReference:
		logger.InfoCtx(ctx, "Pointer refers back to this service, skipping fetch", zap.String("pointer", pointer.URI))
		return o.recover(ctx, contract, tokenID, publicBaseURL, pointer.Owner)
	default:
		logger.WarnCtx(ctx, "Unsupported metadata pointer", zap.String("pointer", pointer.URI))
		return o.recover(ctx, contract, tokenID, publicBaseURL, pointer.Owner)
	}
	if err != nil {
		logger.WarnCtx(ctx, "Metadata fetch failed", zap.Stringer("kind", kind), zap.Error(err))
		return o.recover(ctx, contract, tokenID, publicBaseURL, pointer.Owner)
	}

	record, err := o.fetcher.BuildRecord(ctx, doc, input)
	if err != nil {
		logger.WarnCtx(ctx, "Fetched metadata is invalid", zap.Stringer("kind", kind), zap.Error(err))
		return o.recover(ctx, contract, tokenID, publicBaseURL, pointer.Owner)
	}

	o.commit(ctx, record)
	return &domain.FallbackResult{Metadata: record, Source: record.Source, GatewayUsed: gatewayUsed}
}

// fetchIPFS fetches from the best gateway and falls back to the highest priority one
func (o *Orchestrator) fetchIPFS(ctx context.Context, ref string) (map[string]interface{}, string, error) {
	gatewayCtx, cancel := context.WithTimeout(ctx, o.config.GatewayTimeout)
	best, ok := o.selector.BestGateway(gatewayCtx, ref, o.config.GatewayTimeout)
	cancel()

	candidates := make([]gateway.Match, 0, 2)
	if ok {
		candidates = append(candidates, best)
	}
	if fallback := o.selector.FallbackGateway(ref); !ok || fallback.URL != best.URL {
		candidates = append(candidates, fallback)
	}

	var lastErr error
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		doc, err := o.fetchHTTP(ctx, candidate.URL)
		if err == nil {
			return doc, candidate.GatewayName, nil
		}
		lastErr = err
		logger.DebugCtx(ctx, "Gateway failed to serve metadata",
			zap.String("gateway", candidate.GatewayName), zap.Error(err))
	}
	return nil, "", fmt.Errorf("no gateway served the metadata: %w", lastErr)
}

func (o *Orchestrator) fetchHTTP(ctx context.Context, url string) (map[string]interface{}, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.config.FetchTimeout)
	defer cancel()
	return o.fetcher.Fetch(fetchCtx, url)
}

// recover runs the optional recovery stage, nil means fall through to placeholder
func (o *Orchestrator) recover(ctx context.Context, contract, tokenID, publicBaseURL, owner string) *domain.FallbackResult {
	if !o.config.EnableRecoveryStage {
		return nil
	}
	if ctx.Err() != nil {
		logger.InfoCtx(ctx, "Resolution deadline reached before recovery")
		return nil
	}

	recoveryCtx, cancel := context.WithTimeout(ctx, o.config.RecoveryTimeout)
	defer cancel()

	recovered, err := o.recoverer.Recover(recoveryCtx, contract, tokenID)
	if err != nil {
		logger.WarnCtx(ctx, "Metadata recovery failed", zap.Error(err))
		return nil
	}
	if recovered == nil {
		return nil
	}

	record, err := o.fetcher.BuildRecord(recoveryCtx, recovered.Document, metadata.RecordInput{
		ContractAddress: contract,
		TokenID:         tokenID,
		PublicBaseURL:   publicBaseURL,
		MetadataCID:     recovered.MetadataCID,
		Owner:           owner,
		Source:          domain.SourceRecovered,
	})
	if err != nil {
		logger.WarnCtx(ctx, "Recovered metadata is invalid", zap.Error(err))
		return nil
	}

	o.commit(ctx, record)
	return &domain.FallbackResult{Metadata: record, Source: domain.SourceRecovered, GatewayUsed: recovered.GatewayUsed}
}

// commit replaces any cached placeholder with real data
func (o *Orchestrator) commit(ctx context.Context, record *domain.NFTMetadataRecord) {
	storeCtx, cancel := o.detached(ctx)
	defer cancel()

	if removed, err := o.cache.InvalidateIfPlaceholder(storeCtx, record.ContractAddress, record.TokenID); err != nil {
		logger.WarnCtx(ctx, "Failed to invalidate cached placeholder", zap.Error(err))
	} else if removed {
		logger.DebugCtx(ctx, "Invalidated cached placeholder")
	}

	if err := o.cache.Put(storeCtx, record, 0); err != nil {
		logger.WarnCtx(ctx, "Failed to cache metadata", zap.Error(err))
	}

	if record.MetadataCID != "" {
		if err := o.cache.RecordMetadataCID(storeCtx, record.ContractAddress, record.TokenID, record.MetadataCID); err != nil {
			logger.WarnCtx(ctx, "Failed to record metadata CID", zap.Error(err))
		}
	}
}

// placeholder builds the placeholder result, caching it only when asked to
func (o *Orchestrator) placeholder(ctx context.Context, contract, tokenID, publicBaseURL string, cache bool) *domain.FallbackResult {
	record := metadata.GeneratePlaceholder(contract, tokenID, publicBaseURL)
	record.CreatedAt = o.clock.Now().UTC()

	if cache {
		storeCtx, cancel := o.detached(ctx)
		defer cancel()
		if _, err := o.cache.PutPlaceholder(storeCtx, record); err != nil {
			logger.WarnCtx(ctx, "Failed to cache placeholder", zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "Serving placeholder metadata", zap.Bool("cached", cache))
	return &domain.FallbackResult{Metadata: record, Source: domain.SourcePlaceholder}
}

func (o *Orchestrator) release(ctx context.Context, lease *store.Lease) {
	releaseCtx, cancel := o.detached(ctx)
	defer cancel()

	released, err := o.locker.Release(releaseCtx, lease)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to release resolution lock", zap.Error(err))
		return
	}
	if !released {
		logger.WarnCtx(ctx, "Resolution lock expired before release", zap.String("key", lease.Key))
	}
}

func (o *Orchestrator) report(ctx context.Context, contract, tokenID string, result *domain.FallbackResult, elapsed time.Duration) {
	metrics.ObserveResolution(string(result.Source), result.Cached, elapsed)

	publishCtx, cancel := o.detached(ctx)
	defer cancel()

	err := o.publisher.PublishResolution(publishCtx, &domain.ResolutionEvent{
		ContractAddress: contract,
		TokenID:         tokenID,
		Source:          result.Source,
		Cached:          result.Cached,
		LatencyMs:       result.LatencyMs,
		GatewayUsed:     result.GatewayUsed,
		ResolvedAt:      o.clock.Now().UTC(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WarnCtx(ctx, "Failed to publish resolution event", zap.Error(err))
	}
}

// detached returns a short context that survives the request deadline
func (o *Orchestrator) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.config.StoreTimeout)
}

// remaining returns the time left before the deadline of ctx, or one second without one
func remaining(ctx context.Context, clock adapter.Clock) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return time.Second
	}
	if d := deadline.Sub(clock.Now()); d > 0 {
		return d
	}
	return 0
}
