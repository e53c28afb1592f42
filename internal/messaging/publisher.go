package messaging

import (
	"context"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

// Publisher defines the interface for publishing resolution events to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishResolution publishes the outcome of a metadata resolution
	PublishResolution(ctx context.Context, event *domain.ResolutionEvent) error
	// Close closes the connection
	Close()
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishResolution(context.Context, *domain.ResolutionEvent) error {
	return nil
}

func (nopPublisher) Close() {}
