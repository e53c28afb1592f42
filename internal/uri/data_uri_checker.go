package uri

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DataURICheckResult represents the result of validating a data URI
type DataURICheckResult struct {
	Valid            bool
	Reason           string
	MimeType         string // detected from content
	DeclaredMimeType string // declared in the URI
}

// DataURIChecker validates inline data URIs used as NFT images
//
//go:generate mockgen -source=data_uri_checker.go -destination=../mocks/data_uri_checker.go -package=mocks -mock_names=DataURIChecker=MockDataURIChecker
type DataURIChecker interface {
	// Check reports whether dataURI is a well-formed image or video whose bytes
	// match the declared media type
	Check(dataURI string) DataURICheckResult
}

type dataURIChecker struct{}

// NewDataURIChecker creates a new data URI checker
func NewDataURIChecker() DataURIChecker {
	return &dataURIChecker{}
}

func (c *dataURIChecker) Check(dataURI string) DataURICheckResult {
	parsed, err := ParseDataURI(dataURI)
	if err != nil {
		return DataURICheckResult{Reason: err.Error()}
	}

	result := DataURICheckResult{DeclaredMimeType: parsed.MimeType}

	if !isImageOrVideoMimeType(parsed.MimeType) {
		result.Reason = fmt.Sprintf("unsupported mime type: %s", parsed.MimeType)
		return result
	}
	if len(parsed.DecodedData) == 0 {
		result.Reason = "empty data"
		return result
	}

	result.MimeType = mimetype.Detect(parsed.DecodedData).String()
	if !mimeTypesMatch(parsed.MimeType, result.MimeType) {
		result.Reason = fmt.Sprintf("mime type mismatch: declared %s but detected %s", parsed.MimeType, result.MimeType)
		return result
	}

	result.Valid = true
	return result
}

func isImageOrVideoMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/")
}

// mimeTypesMatch compares base types, treating image/svg and image/svg+xml as equal
func mimeTypesMatch(declared, detected string) bool {
	base := func(s string) string {
		s, _, _ = strings.Cut(strings.ToLower(s), ";")
		s = strings.TrimSpace(s)
		if s == "image/svg" {
			return "image/svg+xml"
		}
		return s
	}
	return base(declared) == base(detected)
}
