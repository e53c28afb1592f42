package uri

import (
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
)

const (
	ipfsScheme     = "ipfs://"
	ipfsPathPrefix = "ipfs/"
	gatewayMarker  = "/ipfs/"
)

// NormalizeCIDPath turns any IPFS reference into a canonical `CID[/path][?query][#fragment]`
// whose path segments are percent-encoded exactly once
//
// Accepted forms are a bare CID, ipfs://CID, legacy ipfs://ipfs/CID and gateway URLs
// containing /ipfs/CID. data: and ar: references are returned unchanged.
func NormalizeCIDPath(ref string) string {
	if ref == "" || isPassthrough(ref) {
		return ref
	}

	s := strings.TrimSpace(ref)
	if isHTTPURL(s) {
		idx := strings.Index(s, gatewayMarker)
		if idx < 0 {
			return ref
		}
		s = s[idx+len(gatewayMarker):]
	}

	if hasPrefixFold(s, ipfsScheme) {
		s = s[len(ipfsScheme):]
	}
	for {
		trimmed := strings.TrimLeft(s, "/")
		if !hasPrefixFold(trimmed, ipfsPathPrefix) {
			s = trimmed
			break
		}
		s = trimmed[len(ipfsPathPrefix):]
	}

	path, tail := splitTail(s)
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = encodeSegmentOnce(seg)
	}

	return strings.Join(segments, "/") + tail
}

// IsIPFSReference reports whether ref points at IPFS content
// A bare string only counts when its first segment decodes as a CID
func IsIPFSReference(ref string) bool {
	s := strings.TrimSpace(ref)
	if s == "" || isPassthrough(s) {
		return false
	}
	if hasPrefixFold(s, ipfsScheme) {
		return true
	}
	if isHTTPURL(s) {
		return strings.Contains(s, gatewayMarker)
	}
	return RootCID(s) != ""
}

// RootCID returns the CID at the root of an IPFS reference, or an empty string
// when the reference does not start with a valid CID
func RootCID(ref string) string {
	if isPassthrough(ref) {
		return ""
	}
	normalized := NormalizeCIDPath(ref)
	if isHTTPURL(normalized) {
		return ""
	}
	path, _ := splitTail(normalized)
	root := path
	if idx := strings.Index(path, "/"); idx >= 0 {
		root = path[:idx]
	}
	if root == "" {
		return ""
	}

	c, err := cid.Decode(root)
	if err != nil {
		return ""
	}
	return c.String()
}

// ToIPFSURI renders the canonical ipfs:// form of a reference
func ToIPFSURI(ref string) string {
	normalized := NormalizeCIDPath(ref)
	if normalized == "" || isPassthrough(normalized) || isHTTPURL(normalized) {
		return normalized
	}
	return ipfsScheme + normalized
}

// encodeSegmentOnce repairs orphaned percent signs, then decodes and re-encodes the segment
func encodeSegmentOnce(seg string) string {
	repaired := repairOrphanedPercent(seg)
	decoded, err := url.PathUnescape(repaired)
	if err != nil {
		return url.PathEscape(repaired)
	}
	return url.PathEscape(decoded)
}

// repairOrphanedPercent escapes every % that is not followed by two hex digits
func repairOrphanedPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func splitTail(s string) (string, string) {
	idx := strings.IndexAny(s, "?#")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

func isPassthrough(s string) bool {
	return hasPrefixFold(s, "data:") || hasPrefixFold(s, "ar:")
}

func isHTTPURL(s string) bool {
	return hasPrefixFold(s, "http://") || hasPrefixFold(s, "https://")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
