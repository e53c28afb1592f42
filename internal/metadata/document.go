package metadata

import (
	"strings"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

const ipfsScheme = "ipfs://"

// Document is the OpenSea compatible body returned to marketplaces
type Document struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	ImageIPFS   string             `json:"image_ipfs,omitempty"`
	ImageURL    string             `json:"image_url"`
	Attributes  []domain.Attribute `json:"attributes"`
	ExternalURL string             `json:"external_url"`
}

// ToDocument maps a record to its public document
// image carries the fetchable URL, the ipfs:// form moves to image_ipfs
func ToDocument(record *domain.NFTMetadataRecord) Document {
	imageURL := record.ImageURL
	if imageURL == "" {
		imageURL = record.Image
	}

	doc := Document{
		Name:        record.Name,
		Description: record.Description,
		Image:       imageURL,
		ImageURL:    imageURL,
		Attributes:  record.Attributes,
		ExternalURL: record.ExternalURL,
	}
	if strings.HasPrefix(record.Image, ipfsScheme) {
		doc.ImageIPFS = record.Image
	}
	if doc.Attributes == nil {
		doc.Attributes = []domain.Attribute{}
	}
	return doc
}

// ExternalURL returns the public page of a token
func ExternalURL(publicBaseURL, contractAddress, tokenID string) string {
	return strings.TrimRight(publicBaseURL, "/") + "/nft/" + strings.ToLower(contractAddress) + "/" + tokenID
}
