package metadata_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
)

func TestGeneratePlaceholder(t *testing.T) {
	record := metadata.GeneratePlaceholder(testContract, "7", testBaseURL)

	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", record.ContractAddress)
	assert.Equal(t, "7", record.TokenID)
	assert.Equal(t, "Token #7", record.Name)
	assert.Contains(t, record.Description, domain.PendingResolutionMarker)
	assert.Equal(t, []domain.Attribute{{TraitType: "Status", Value: "Resolving"}}, record.Attributes)
	assert.Equal(t, domain.SourcePlaceholder, record.Source)
	assert.Equal(t, "https://nft.example.com/nft/0xabcdef0123456789abcdef0123456789abcdef01/7", record.ExternalURL)
	assert.Equal(t, record.Image, record.ImageURL)

	const prefix = "data:image/svg+xml;base64,"
	require.True(t, strings.HasPrefix(record.Image, prefix))
	svg, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(record.Image, prefix))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), domain.PlaceholderSVGPrefix))
	assert.Contains(t, string(svg), "#7")
}

func TestGeneratePlaceholder_Deterministic(t *testing.T) {
	a := metadata.GeneratePlaceholder(testContract, "99", testBaseURL)
	b := metadata.GeneratePlaceholder(testContract, "99", testBaseURL)
	assert.Equal(t, a, b)
}

func TestGeneratePlaceholder_LongTokenIDIsEscapedAndTruncated(t *testing.T) {
	tokenID := strings.Repeat("9", 78)
	record := metadata.GeneratePlaceholder(testContract, tokenID, testBaseURL)

	svg, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(record.Image, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.NotContains(t, string(svg), tokenID)
	assert.Contains(t, string(svg), "...")
	assert.Equal(t, "Token #"+tokenID, record.Name)
}

func TestIsPlaceholder(t *testing.T) {
	placeholder := metadata.GeneratePlaceholder(testContract, "1", testBaseURL)
	assert.True(t, metadata.IsPlaceholder(placeholder))

	// Detection must not depend on the source tag alone
	relabeled := *placeholder
	relabeled.Source = domain.SourceCache
	relabeled.Description = ""
	assert.True(t, metadata.IsPlaceholder(&relabeled))

	realRecord := &domain.NFTMetadataRecord{
		Name:   "Real",
		Image:  "ipfs://" + testCID,
		Source: domain.SourceOnChain,
	}
	assert.False(t, metadata.IsPlaceholder(realRecord))
	assert.False(t, metadata.IsPlaceholder(nil))
}
