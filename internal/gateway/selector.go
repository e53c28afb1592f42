package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/metrics"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

const (
	// maxValidationAttempts is the first attempt plus two retries
	maxValidationAttempts  = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

// Match is a gateway that served a CID path
type Match struct {
	URL         string `json:"url"`
	GatewayName string `json:"gateway"`
}

// ValidationResult is the outcome of a multi-gateway validation
type ValidationResult struct {
	Success         bool     `json:"success"`
	WorkingGateways []Match  `json:"working_gateways"`
	Errors          []string `json:"errors"`
	Attempts        int      `json:"attempts"`
}

// SelectorConfig holds the tunables of the selector
type SelectorConfig struct {
	// RetryBackoff is the initial sleep between validation attempts
	RetryBackoff time.Duration
	// RetryMaxBackoff caps the sleep between validation attempts
	RetryMaxBackoff time.Duration
}

// Selector picks working gateways for IPFS content
type Selector struct {
	registry *Registry
	prober   Prober
	scorer   Scorer
	cache    *Cache
	clock    adapter.Clock
	config   SelectorConfig
}

// NewSelector creates a selector
func NewSelector(registry *Registry, prober Prober, scorer Scorer, cache *Cache, clock adapter.Clock, cfg SelectorConfig) *Selector {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.RetryMaxBackoff <= 0 {
		cfg.RetryMaxBackoff = defaultRetryMaxBackoff
	}

	return &Selector{
		registry: registry,
		prober:   prober,
		scorer:   scorer,
		cache:    cache,
		clock:    clock,
		config:   cfg,
	}
}

// Registry returns the registry the selector draws candidates from
func (s *Selector) Registry() *Registry {
	return s.registry
}

// BestGateway returns a working gateway URL for ref
//
// A cached gateway is returned without any network call. Otherwise candidates are
// probed one at a time in scorer order and the first success is cached.
func (s *Selector) BestGateway(ctx context.Context, ref string, timeout time.Duration) (Match, bool) {
	cidPath := uri.NormalizeCIDPath(ref)
	if cidPath == "" {
		return Match{}, false
	}

	if entry, ok := s.cache.Get(cidPath); ok {
		logger.DebugCtx(ctx, "Gateway cache hit", zap.String("cid_path", cidPath), zap.String("gateway", entry.GatewayName))
		return Match{URL: entry.URL, GatewayName: entry.GatewayName}, true
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, c := range s.scorer.OrderedCandidates(cidPath) {
		if probeCtx.Err() != nil {
			break
		}

		url := c.URL(cidPath)
		result := s.prober.Probe(probeCtx, url, c.RangeOnly)
		if probeCtx.Err() != nil && !result.OK {
			// Deadline hit mid-probe, not a verdict on the gateway
			break
		}
		s.record(c.Name, result.OK)

		if result.OK {
			s.cache.Add(cidPath, url, c.Name)
			logger.DebugCtx(ctx, "Found working gateway",
				zap.String("cid_path", cidPath),
				zap.String("gateway", c.Name),
				zap.Duration("latency", result.Latency))
			return Match{URL: url, GatewayName: c.Name}, true
		}

		logger.DebugCtx(ctx, "Gateway probe failed",
			zap.String("gateway", c.Name),
			zap.String("diagnostic", result.Diagnostic))
	}

	logger.WarnCtx(ctx, "No gateway answered in time", zap.String("cid_path", cidPath), zap.Duration("timeout", timeout))
	return Match{}, false
}

// ValidateMultiGateway probes every gateway concurrently and succeeds once
// minGateways of them serve ref
//
// With allowRetry the validation is repeated up to two more times with the
// timeout doubled each time, sleeping with exponential backoff in between.
func (s *Selector) ValidateMultiGateway(ctx context.Context, ref string, minGateways int, timeout time.Duration, allowRetry bool) ValidationResult {
	cidPath := uri.NormalizeCIDPath(ref)
	if cidPath == "" {
		return ValidationResult{Errors: []string{"empty reference"}}
	}
	if minGateways <= 0 {
		minGateways = 1
	}

	attempts := 1
	if allowRetry {
		attempts = maxValidationAttempts
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.RetryBackoff
	b.MaxInterval = s.config.RetryMaxBackoff
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	var result ValidationResult
	attemptTimeout := timeout
	for attempt := 1; attempt <= attempts; attempt++ {
		matches, errs := s.validateOnce(ctx, cidPath, minGateways, attemptTimeout)
		result = ValidationResult{
			Success:         len(matches) >= minGateways,
			WorkingGateways: matches,
			Errors:          errs,
			Attempts:        attempt,
		}
		if result.Success || attempt == attempts {
			break
		}

		wait := b.NextBackOff()
		logger.InfoCtx(ctx, "Gateway validation short, retrying",
			zap.String("cid_path", cidPath),
			zap.Int("working", len(matches)),
			zap.Int("required", minGateways),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait))

		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, fmt.Sprintf("validation aborted: %v", ctx.Err()))
			return result
		case <-s.clock.After(wait):
		}
		attemptTimeout *= 2
	}

	return result
}

type probeOutcome struct {
	candidate Candidate
	url       string
	result    ProbeResult
}

func (s *Selector) validateOnce(ctx context.Context, cidPath string, minGateways int, timeout time.Duration) ([]Match, []string) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	candidates := s.scorer.OrderedCandidates(cidPath)
	if len(candidates) == 0 {
		return nil, []string{"no gateways configured"}
	}

	pool := pond.NewPool(len(candidates), pond.WithContext(attemptCtx))
	outcomes := make(chan probeOutcome, len(candidates))
	for _, c := range candidates {
		pool.Submit(func() {
			url := c.URL(cidPath)
			outcomes <- probeOutcome{
				candidate: c,
				url:       url,
				result:    s.prober.Probe(attemptCtx, url, c.RangeOnly),
			}
		})
	}
	go func() {
		pool.StopAndWait()
		close(outcomes)
	}()

	var matches []Match
	var errs []string
	for out := range outcomes {
		if out.result.OK {
			s.record(out.candidate.Name, true)
			matches = append(matches, Match{URL: out.url, GatewayName: out.candidate.Name})
			if len(matches) >= minGateways {
				// Remaining probes see a cancelled context and are not scored
				cancel()
				break
			}
			continue
		}

		if attemptCtx.Err() == nil {
			s.record(out.candidate.Name, false)
		}
		errs = append(errs, fmt.Sprintf("%s: %s", out.candidate.Name, out.result.Diagnostic))
	}

	return matches, errs
}

func (s *Selector) record(gateway string, ok bool) {
	s.scorer.RecordOutcome(gateway, ok)
	metrics.ObserveProbe(gateway, ok)
}

// FallbackGateway builds the URL of the highest priority registry gateway without probing
// so a document stays well-formed when no gateway answered in time
func (s *Selector) FallbackGateway(ref string) Match {
	first := s.registry.First()
	return Match{URL: first.URL(uri.NormalizeCIDPath(ref)), GatewayName: first.Name}
}
