package metadata

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

const maxDisplayedTokenID = 16

// GeneratePlaceholder builds the deterministic stand-in record served while
// the real metadata of a token is still being resolved
func GeneratePlaceholder(contractAddress, tokenID, publicBaseURL string) *domain.NFTMetadataRecord {
	contract := strings.ToLower(contractAddress)
	image := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(placeholderSVG(tokenID)))

	return &domain.NFTMetadataRecord{
		ContractAddress: contract,
		TokenID:         tokenID,
		Name:            fmt.Sprintf("Token #%s", tokenID),
		Description: fmt.Sprintf("Token #%s of %s. %s, refresh shortly to load the final artwork.",
			tokenID, contract, domain.PendingResolutionMarker),
		Image:    image,
		ImageURL: image,
		Attributes: []domain.Attribute{
			{TraitType: "Status", Value: "Resolving"},
		},
		ExternalURL: ExternalURL(publicBaseURL, contract, tokenID),
		Source:      domain.SourcePlaceholder,
	}
}

// IsPlaceholder reports whether record was produced by GeneratePlaceholder
func IsPlaceholder(record *domain.NFTMetadataRecord) bool {
	return record.IsPlaceholder()
}

func placeholderSVG(tokenID string) string {
	label := tokenID
	if len(label) > maxDisplayedTokenID {
		label = label[:maxDisplayedTokenID-3] + "..."
	}

	var b strings.Builder
	b.WriteString(domain.PlaceholderSVGPrefix)
	b.WriteString(`width="512" height="512" viewBox="0 0 512 512">`)
	b.WriteString(`<rect width="512" height="512" fill="#111111"/>`)
	b.WriteString(`<text x="256" y="240" fill="#f5f5f5" font-family="monospace" font-size="32" text-anchor="middle">#`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</text>`)
	b.WriteString(`<text x="256" y="290" fill="#8a8a8a" font-family="monospace" font-size="18" text-anchor="middle">Resolving metadata</text>`)
	b.WriteString(`</svg>`)
	return b.String()
}
