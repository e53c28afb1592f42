package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

const (
	probeRange        = "bytes=0-1023"
	probeDiscardLimit = 1024
)

// ProbeResult is the outcome of one reachability check
type ProbeResult struct {
	OK         bool
	StatusCode int
	Diagnostic string
	Latency    time.Duration
}

// Prober checks whether a gateway URL is reachable
//
//go:generate mockgen -source=prober.go -destination=../mocks/prober.go -package=mocks -mock_names=Prober=MockProber
type Prober interface {
	// Probe never returns an error, failures are reported through ProbeResult
	Probe(ctx context.Context, url string, rangeOnly bool) ProbeResult
}

type prober struct {
	httpClient adapter.HTTPClient
	io         adapter.IO
	clock      adapter.Clock
}

// NewProber creates a prober that tries HEAD first and falls back to a ranged GET
func NewProber(httpClient adapter.HTTPClient, io adapter.IO, clock adapter.Clock) Prober {
	return &prober{
		httpClient: httpClient,
		io:         io,
		clock:      clock,
	}
}

func (p *prober) Probe(ctx context.Context, url string, rangeOnly bool) ProbeResult {
	start := p.clock.Now()
	result := p.probe(ctx, url, rangeOnly)
	result.Latency = p.clock.Since(start)
	return result
}

func (p *prober) probe(ctx context.Context, url string, rangeOnly bool) ProbeResult {
	if !rangeOnly {
		resp, err := p.httpClient.HeadNoRetry(ctx, url)
		if err == nil {
			p.drain(ctx, resp)
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return ProbeResult{OK: true, StatusCode: resp.StatusCode}
			}
		}
		if ctx.Err() != nil {
			return ProbeResult{Diagnostic: diagnose(ctx, err)}
		}
		logger.DebugCtx(ctx, "HEAD probe failed, trying ranged GET", zap.String("url", url), zap.Error(err))
	}

	resp, err := p.httpClient.GetResponseNoRetry(ctx, url, map[string]string{"Range": probeRange})
	if err != nil {
		return ProbeResult{Diagnostic: diagnose(ctx, err)}
	}
	p.drain(ctx, resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return ProbeResult{OK: true, StatusCode: resp.StatusCode}
	case http.StatusRequestedRangeNotSatisfiable:
		// Empty files cannot satisfy any range
		return p.probeWithoutRange(ctx, url)
	default:
		return ProbeResult{StatusCode: resp.StatusCode, Diagnostic: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
}

func (p *prober) probeWithoutRange(ctx context.Context, url string) ProbeResult {
	resp, err := p.httpClient.GetResponseNoRetry(ctx, url, nil)
	if err != nil {
		return ProbeResult{Diagnostic: diagnose(ctx, err)}
	}
	p.drain(ctx, resp)

	if resp.StatusCode == http.StatusOK {
		return ProbeResult{OK: true, StatusCode: resp.StatusCode}
	}
	return ProbeResult{StatusCode: resp.StatusCode, Diagnostic: fmt.Sprintf("HTTP %d", resp.StatusCode)}
}

func (p *prober) drain(ctx context.Context, resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	if err := p.io.Discard(resp.Body, probeDiscardLimit); err != nil {
		logger.DebugCtx(ctx, "failed to drain probe response", zap.Error(err))
	}
	if err := resp.Body.Close(); err != nil {
		logger.WarnCtx(ctx, "failed to close response body", zap.Error(err))
	}
}

func diagnose(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "timeout"
	case adapter.IsTimeoutError(err):
		return "timeout"
	case err != nil:
		return "network error: " + err.Error()
	default:
		return "unreachable"
	}
}
