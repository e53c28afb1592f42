package metadata_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
)

func TestToDocument(t *testing.T) {
	record := &domain.NFTMetadataRecord{
		ContractAddress: "0xabc",
		TokenID:         "5",
		Name:            "Five",
		Description:     "desc",
		Image:           "ipfs://" + testCID + "/5.png",
		ImageURL:        "https://first.example/ipfs/" + testCID + "/5.png",
		ImageCID:        testCID,
		ExternalURL:     "https://nft.example.com/nft/0xabc/5",
		Source:          domain.SourceIPFS,
	}

	doc := metadata.ToDocument(record)
	assert.Equal(t, "Five", doc.Name)
	assert.Equal(t, record.ImageURL, doc.Image)
	assert.Equal(t, record.ImageURL, doc.ImageURL)
	assert.Equal(t, record.Image, doc.ImageIPFS)
	assert.Equal(t, record.ExternalURL, doc.ExternalURL)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Five",
		"description": "desc",
		"image": "https://first.example/ipfs/`+testCID+`/5.png",
		"image_ipfs": "ipfs://`+testCID+`/5.png",
		"image_url": "https://first.example/ipfs/`+testCID+`/5.png",
		"attributes": [],
		"external_url": "https://nft.example.com/nft/0xabc/5"
	}`, string(raw))
}

func TestToDocument_NonIPFSImage(t *testing.T) {
	placeholder := metadata.GeneratePlaceholder("0xabc", "1", "https://nft.example.com")

	doc := metadata.ToDocument(placeholder)
	assert.Empty(t, doc.ImageIPFS)
	assert.Equal(t, placeholder.Image, doc.Image)
	assert.Len(t, doc.Attributes, 1)
}

func TestExternalURL(t *testing.T) {
	assert.Equal(t, "https://a.b/nft/0xabc/1", metadata.ExternalURL("https://a.b/", "0xABC", "1"))
	assert.Equal(t, "https://a.b/nft/0xabc/1", metadata.ExternalURL("https://a.b", "0xabc", "1"))
}
