package resolution

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

type pointerKind int

const (
	pointerUnsupported pointerKind = iota
	pointerIPFS
	pointerHTTP
	pointerArweave
	pointerInline
	pointerSelfReference
)

func (k pointerKind) String() string {
	switch k {
	case pointerIPFS:
		return "ipfs"
	case pointerHTTP:
		return "http"
	case pointerArweave:
		return "arweave"
	case pointerInline:
		return "inline"
	case pointerSelfReference:
		return "self-reference"
	default:
		return "unsupported"
	}
}

// classifyPointer decides which stage handles an on-chain metadata pointer
// Pointers back into this service are never fetched
func classifyPointer(pointer string, selfPath *regexp.Regexp, publicBaseURL string) pointerKind {
	p := strings.TrimSpace(pointer)
	lower := strings.ToLower(p)

	switch {
	case p == "":
		return pointerUnsupported
	case strings.HasPrefix(lower, "data:"):
		return pointerInline
	case strings.HasPrefix(lower, "ar://"):
		return pointerArweave
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		if isSelfReference(p, selfPath, publicBaseURL) {
			return pointerSelfReference
		}
		if uri.IsIPFSReference(p) {
			return pointerIPFS
		}
		return pointerHTTP
	case uri.IsIPFSReference(p):
		return pointerIPFS
	default:
		return pointerUnsupported
	}
}

func isSelfReference(pointer string, selfPath *regexp.Regexp, publicBaseURL string) bool {
	u, err := url.Parse(pointer)
	if err != nil {
		return false
	}
	if selfPath != nil && selfPath.MatchString(u.Path) {
		return true
	}

	base, err := url.Parse(publicBaseURL)
	if err != nil || base.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}
