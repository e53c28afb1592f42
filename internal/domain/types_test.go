package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNFTMetadataRecord_IsPlaceholder(t *testing.T) {
	svg := PlaceholderSVGPrefix + `width="512" height="512"></svg>`

	tests := []struct {
		name     string
		record   *NFTMetadataRecord
		expected bool
	}{
		{name: "nil", record: nil, expected: false},
		{name: "real record", record: &NFTMetadataRecord{Name: "Art", Image: "https://ipfs.io/ipfs/bafy", Source: SourceIPFS}, expected: false},
		{name: "placeholder source", record: &NFTMetadataRecord{Source: SourcePlaceholder}, expected: true},
		{name: "description marker", record: &NFTMetadataRecord{Description: "Token #1. " + PendingResolutionMarker + "."}, expected: true},
		{name: "real record quoting the marker", record: &NFTMetadataRecord{Description: "Art about " + PendingResolutionMarker, Image: "https://ipfs.io/ipfs/bafy", Source: SourceIPFS}, expected: false},
		{name: "raw svg marker", record: &NFTMetadataRecord{Image: "data:image/svg+xml;utf8," + svg}, expected: true},
		{name: "base64 svg marker", record: &NFTMetadataRecord{Image: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.IsPlaceholder())
		})
	}
}

func TestSource_Valid(t *testing.T) {
	assert.True(t, SourceRecovered.Valid())
	assert.False(t, Source("disk").Valid())
}
