package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

// ErrInvalidMetadata is returned when a document fails schema validation
var ErrInvalidMetadata = errors.New("invalid metadata")

const (
	defaultImageGatewayTimeout = 1500 * time.Millisecond
	doubleEncodedSpace         = "%2520"
)

// GatewaySelector picks a fetchable gateway URL for IPFS images
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/metadata_fetcher.go -package=mocks -mock_names=GatewaySelector=MockGatewaySelector,Fetcher=MockMetadataFetcher
type GatewaySelector interface {
	BestGateway(ctx context.Context, ref string, timeout time.Duration) (gateway.Match, bool)
	FallbackGateway(ref string) gateway.Match
}

// Fetcher loads metadata documents and turns them into records
type Fetcher interface {
	// Fetch downloads and parses the JSON document at url
	Fetch(ctx context.Context, url string) (map[string]interface{}, error)
	// ParseDataURI parses an inline data:application/json pointer
	ParseDataURI(pointer string) (map[string]interface{}, error)
	// BuildRecord validates doc and resolves its image into a fetchable URL
	BuildRecord(ctx context.Context, doc map[string]interface{}, input RecordInput) (*domain.NFTMetadataRecord, error)
}

// RecordInput carries the token context of a document
type RecordInput struct {
	ContractAddress string
	TokenID         string
	PublicBaseURL   string
	MetadataCID     string
	Owner           string
	Source          domain.Source
}

// FetcherConfig holds the tunables of the fetcher
type FetcherConfig struct {
	MaxBytes            int64
	ImageGatewayTimeout time.Duration
	ArweaveGateway      string
}

type fetcher struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	selector   GatewaySelector
	dataURI    uri.DataURIChecker
	clock      adapter.Clock
	config     FetcherConfig
}

// NewFetcher creates a metadata fetcher
func NewFetcher(httpClient adapter.HTTPClient, jsonAdapter adapter.JSON, selector GatewaySelector, dataURIChecker uri.DataURIChecker, clock adapter.Clock, cfg FetcherConfig) Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = domain.MAX_METADATA_BYTES
	}
	if cfg.ImageGatewayTimeout <= 0 {
		cfg.ImageGatewayTimeout = defaultImageGatewayTimeout
	}
	if cfg.ArweaveGateway == "" {
		cfg.ArweaveGateway = domain.DEFAULT_ARWEAVE_GATEWAY
	}

	return &fetcher{
		httpClient: httpClient,
		json:       jsonAdapter,
		selector:   selector,
		dataURI:    dataURIChecker,
		clock:      clock,
		config:     cfg,
	}
}

func (f *fetcher) Fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	body, err := f.httpClient.GetBytes(ctx, url, f.config.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	return f.parse(body)
}

func (f *fetcher) ParseDataURI(pointer string) (map[string]interface{}, error) {
	parsed, err := uri.ParseDataURI(pointer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if !strings.Contains(parsed.MimeType, "json") && parsed.MimeType != "text/plain" {
		return nil, fmt.Errorf("%w: unexpected media type %s", ErrInvalidMetadata, parsed.MimeType)
	}
	return f.parse(parsed.DecodedData)
}

func (f *fetcher) parse(raw []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := f.json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidMetadata)
	}
	return doc, nil
}

// Validate checks the minimal schema of a metadata document
func Validate(doc map[string]interface{}) error {
	name, _ := doc["name"].(string)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}

	image, _ := doc["image"].(string)
	if strings.TrimSpace(image) == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidMetadata)
	}
	if strings.Contains(strings.ToLower(image), doubleEncodedSpace) {
		return fmt.Errorf("%w: image is double encoded", ErrInvalidMetadata)
	}

	if raw, ok := doc["attributes"]; ok && raw != nil {
		list, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("%w: attributes must be a list", ErrInvalidMetadata)
		}
		for i, item := range list {
			if _, ok := item.(map[string]interface{}); !ok {
				return fmt.Errorf("%w: attribute %d is not an object", ErrInvalidMetadata, i)
			}
		}
	}
	return nil
}

func (f *fetcher) BuildRecord(ctx context.Context, doc map[string]interface{}, input RecordInput) (*domain.NFTMetadataRecord, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	name, _ := doc["name"].(string)
	description, _ := doc["description"].(string)
	image, _ := doc["image"].(string)

	record := &domain.NFTMetadataRecord{
		ContractAddress: strings.ToLower(input.ContractAddress),
		TokenID:         input.TokenID,
		Name:            name,
		Description:     description,
		Attributes:      parseAttributes(doc["attributes"]),
		MetadataCID:     input.MetadataCID,
		Owner:           input.Owner,
		ExternalURL:     ExternalURL(input.PublicBaseURL, input.ContractAddress, input.TokenID),
		CreatedAt:       f.clock.Now().UTC(),
		Source:          input.Source,
	}
	f.resolveImage(ctx, record, strings.TrimSpace(image))

	return record, nil
}

// resolveImage fills Image, ImageURL and ImageCID from the raw image field
func (f *fetcher) resolveImage(ctx context.Context, record *domain.NFTMetadataRecord, image string) {
	switch {
	case hasPrefixFold(image, "data:"):
		if result := f.dataURI.Check(image); !result.Valid {
			logger.WarnCtx(ctx, "Inline image failed validation, serving as is",
				zap.String("contract", record.ContractAddress),
				zap.String("token_id", record.TokenID),
				zap.String("reason", result.Reason))
		}
		record.Image = image
		record.ImageURL = image

	case hasPrefixFold(image, "ar://"):
		record.Image = image
		record.ImageURL = strings.TrimRight(f.config.ArweaveGateway, "/") + "/" + image[len("ar://"):]

	case uri.IsIPFSReference(image):
		record.Image = uri.ToIPFSURI(image)
		record.ImageCID = uri.RootCID(image)
		match, ok := f.selector.BestGateway(ctx, image, f.config.ImageGatewayTimeout)
		if !ok {
			match = f.selector.FallbackGateway(image)
			logger.InfoCtx(ctx, "No gateway confirmed the image, using fallback gateway",
				zap.String("image", record.Image),
				zap.String("gateway", match.GatewayName))
		}
		record.ImageURL = match.URL

	default:
		record.Image = image
		record.ImageURL = image
	}
}

func parseAttributes(raw interface{}) []domain.Attribute {
	list, _ := raw.([]interface{})
	attributes := make([]domain.Attribute, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		traitType, _ := obj["trait_type"].(string)
		attributes = append(attributes, domain.Attribute{
			TraitType: traitType,
			Value:     obj["value"],
		})
	}
	return attributes
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
