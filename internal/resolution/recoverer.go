package resolution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
)

// Recovery is a metadata document found by a Recoverer
type Recovery struct {
	Document    map[string]interface{}
	MetadataCID string
	GatewayUsed string
}

// Recoverer looks for metadata after the on-chain pointer failed to produce any
//
//go:generate mockgen -source=recoverer.go -destination=../mocks/recoverer.go -package=mocks -mock_names=Recoverer=MockRecoverer,CIDHistory=MockCIDHistory
type Recoverer interface {
	// Recover returns nil without error when nothing could be recovered
	Recover(ctx context.Context, contract, tokenID string) (*Recovery, error)
}

// CIDHistory lists the metadata CIDs that once resolved for a token, newest first
type CIDHistory interface {
	MetadataCIDHistory(ctx context.Context, contract, tokenID string) ([]string, error)
}

// NopRecoverer never recovers anything
type NopRecoverer struct{}

func (NopRecoverer) Recover(context.Context, string, string) (*Recovery, error) {
	return nil, nil
}

type cidHistoryRecoverer struct {
	history  CIDHistory
	selector metadata.GatewaySelector
	fetcher  metadata.Fetcher
	clock    adapter.Clock
}

// NewCIDHistoryRecoverer creates a recoverer that retries metadata CIDs previously
// resolved for the same token
func NewCIDHistoryRecoverer(history CIDHistory, selector metadata.GatewaySelector, fetcher metadata.Fetcher, clock adapter.Clock) Recoverer {
	if clock == nil {
		clock = adapter.NewClock()
	}
	return &cidHistoryRecoverer{
		history:  history,
		selector: selector,
		fetcher:  fetcher,
		clock:    clock,
	}
}

func (r *cidHistoryRecoverer) Recover(ctx context.Context, contract, tokenID string) (*Recovery, error) {
	cids, err := r.history.MetadataCIDHistory(ctx, contract, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata CID history: %w", err)
	}

	for _, cidPath := range cids {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		match, ok := r.selector.BestGateway(ctx, cidPath, remaining(ctx, r.clock))
		if !ok {
			logger.DebugCtx(ctx, "No gateway serves historical metadata CID", zap.String("cid", cidPath))
			continue
		}

		doc, err := r.fetcher.Fetch(ctx, match.URL)
		if err != nil {
			logger.DebugCtx(ctx, "Historical metadata CID failed to fetch", zap.String("cid", cidPath), zap.Error(err))
			continue
		}

		return &Recovery{Document: doc, MetadataCID: cidPath, GatewayUsed: match.GatewayName}, nil
	}

	return nil, nil
}
