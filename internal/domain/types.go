package domain

import (
	"encoding/base64"
	"strings"
	"time"
)

// Source identifies where a resolved metadata document came from
type Source string

const (
	SourceCache       Source = "cache"
	SourceOnChain     Source = "on-chain"
	SourceIPFS        Source = "ipfs"
	SourceRecovered   Source = "recovered"
	SourcePlaceholder Source = "placeholder"
)

// Valid reports whether s is one of the known sources
func (s Source) Valid() bool {
	switch s {
	case SourceCache, SourceOnChain, SourceIPFS, SourceRecovered, SourcePlaceholder:
		return true
	}
	return false
}

// Attribute is a single trait of an NFT
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// NFTMetadataRecord is the normalized metadata of a token as stored in the cache
type NFTMetadataRecord struct {
	ContractAddress string      `json:"contract_address"`
	TokenID         string      `json:"token_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	ImageURL        string      `json:"image_url"`
	ImageCID        string      `json:"image_cid,omitempty"`
	MetadataCID     string      `json:"metadata_cid,omitempty"`
	Attributes      []Attribute `json:"attributes"`
	Owner           string      `json:"owner,omitempty"`
	ExternalURL     string      `json:"external_url"`
	CreatedAt       time.Time   `json:"created_at"`
	Source          Source      `json:"source"`
}

// FallbackResult is the outcome of a single resolution
type FallbackResult struct {
	Metadata    *NFTMetadataRecord
	Source      Source
	Cached      bool
	LatencyMs   int64
	GatewayUsed string
}

const (
	// PendingResolutionMarker is embedded in the description of every placeholder
	PendingResolutionMarker = "Metadata resolution pending"
	// PlaceholderImageMarker is an attribute on the root element of every placeholder SVG
	PlaceholderImageMarker = `data-nft-placeholder="pending"`
)

// IsPlaceholder reports whether the record was produced by the placeholder generator
// The image is checked in both raw and base64 form. The description marker only
// counts for records without a source.
func (r *NFTMetadataRecord) IsPlaceholder() bool {
	if r == nil {
		return false
	}
	if r.Source == SourcePlaceholder {
		return true
	}
	if r.Source == "" && strings.Contains(r.Description, PendingResolutionMarker) {
		return true
	}
	if strings.Contains(r.Image, PlaceholderImageMarker) {
		return true
	}
	return strings.Contains(r.Image, placeholderImageMarkerBase64)
}

// placeholderImageMarkerBase64 is the marker as it appears inside a base64 data URI
// whose SVG starts with PlaceholderSVGPrefix
var placeholderImageMarkerBase64 = func() string {
	enc := base64.StdEncoding.EncodeToString([]byte(PlaceholderSVGPrefix))
	// Drop the last block, it depends on the bytes that follow the prefix
	return enc[:len(enc)-4]
}()

// PlaceholderSVGPrefix is the fixed start of every placeholder SVG
const PlaceholderSVGPrefix = `<svg xmlns="http://www.w3.org/2000/svg" ` + PlaceholderImageMarker + ` `
