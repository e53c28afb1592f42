package uri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidDataURI is returned when a string is not a well-formed RFC 2397 data URI
var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI is a parsed RFC 2397 data URI
type DataURI struct {
	MimeType    string
	Params      map[string]string
	Base64      bool
	DecodedData []byte
}

// ParseDataURI parses `data:[<mediatype>][;base64],<data>`
// An omitted media type defaults to text/plain
func ParseDataURI(raw string) (*DataURI, error) {
	if !hasPrefixFold(raw, "data:") {
		return nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}

	rest := raw[len("data:"):]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return nil, fmt.Errorf("%w: missing comma separator", ErrInvalidDataURI)
	}
	header, payload := rest[:comma], rest[comma+1:]

	parsed := &DataURI{
		MimeType: "text/plain",
		Params:   map[string]string{},
	}

	parts := strings.Split(header, ";")
	if mt := strings.TrimSpace(parts[0]); mt != "" {
		if !strings.Contains(mt, "/") {
			return nil, fmt.Errorf("%w: malformed media type %q", ErrInvalidDataURI, mt)
		}
		parsed.MimeType = strings.ToLower(mt)
	}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.EqualFold(p, "base64") {
			parsed.Base64 = true
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok {
			parsed.Params[strings.ToLower(k)] = v
		}
	}

	if parsed.Base64 {
		data, err := decodeBase64Payload(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		parsed.DecodedData = data
		return parsed, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	parsed.DecodedData = []byte(decoded)
	return parsed, nil
}

// decodeBase64Payload accepts padded, unpadded and percent-encoded base64
func decodeBase64Payload(payload string) ([]byte, error) {
	if strings.Contains(payload, "%") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, err
		}
		payload = unescaped
	}
	payload = strings.TrimSpace(payload)

	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
