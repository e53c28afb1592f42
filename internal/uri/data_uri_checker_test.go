package uri_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

// 1x1 PNG
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x08, 0xD7, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D,
	0xB4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

const svgData = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestDataURIChecker_Check(t *testing.T) {
	checker := uri.NewDataURIChecker()
	pngBase64 := base64.StdEncoding.EncodeToString(pngData)
	svgBase64 := base64.StdEncoding.EncodeToString([]byte(svgData))

	tests := []struct {
		name             string
		dataURI          string
		expectValid      bool
		expectMimeType   string
		expectDeclared   string
		expectReasonPart string
	}{
		{
			name:           "valid PNG with base64",
			dataURI:        "data:image/png;base64," + pngBase64,
			expectValid:    true,
			expectMimeType: "image/png",
			expectDeclared: "image/png",
		},
		{
			name:           "valid SVG with base64",
			dataURI:        "data:image/svg+xml;base64," + svgBase64,
			expectValid:    true,
			expectMimeType: "image/svg+xml",
			expectDeclared: "image/svg+xml",
		},
		{
			name:             "declared jpeg but content is png",
			dataURI:          "data:image/jpeg;base64," + pngBase64,
			expectDeclared:   "image/jpeg",
			expectMimeType:   "image/png",
			expectReasonPart: "mime type mismatch",
		},
		{
			name:             "non image mime type",
			dataURI:          "data:application/json;base64,e30=",
			expectDeclared:   "application/json",
			expectReasonPart: "unsupported mime type",
		},
		{
			name:             "empty payload",
			dataURI:          "data:image/png;base64,",
			expectDeclared:   "image/png",
			expectReasonPart: "empty data",
		},
		{
			name:             "missing comma",
			dataURI:          "data:image/png;base64",
			expectReasonPart: "missing comma",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.dataURI)

			assert.Equal(t, tt.expectValid, result.Valid)
			assert.Equal(t, tt.expectDeclared, result.DeclaredMimeType)
			if tt.expectMimeType != "" {
				assert.Equal(t, tt.expectMimeType, result.MimeType)
			}
			if tt.expectReasonPart != "" {
				assert.Contains(t, result.Reason, tt.expectReasonPart)
			} else {
				assert.Empty(t, result.Reason)
			}
		})
	}
}

func TestParseDataURI(t *testing.T) {
	t.Run("url encoded json", func(t *testing.T) {
		parsed, err := uri.ParseDataURI(`data:application/json;charset=utf-8,%7B%22name%22%3A%22a%22%7D`)
		require.NoError(t, err)
		assert.Equal(t, "application/json", parsed.MimeType)
		assert.Equal(t, "utf-8", parsed.Params["charset"])
		assert.False(t, parsed.Base64)
		assert.Equal(t, `{"name":"a"}`, string(parsed.DecodedData))
	})

	t.Run("default media type", func(t *testing.T) {
		parsed, err := uri.ParseDataURI("data:,hello")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", parsed.MimeType)
		assert.Equal(t, "hello", string(parsed.DecodedData))
	})

	t.Run("unpadded base64", func(t *testing.T) {
		parsed, err := uri.ParseDataURI("data:application/json;base64,eyJhIjoxfQ")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(parsed.DecodedData))
	})

	t.Run("not a data uri", func(t *testing.T) {
		_, err := uri.ParseDataURI("ipfs://bafy")
		assert.ErrorIs(t, err, uri.ErrInvalidDataURI)
	})
}
