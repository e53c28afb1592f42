package gateway

import (
	"fmt"
	"strings"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

const (
	cidPlaceholder  = "{cid}"
	pathPlaceholder = "{path}"
)

// Candidate is a named IPFS gateway able to build a fetchable URL for a CID path
type Candidate struct {
	Name string
	// Template is either a base URL (https://ipfs.io) or a subdomain template
	// such as https://{cid}.ipfs.dweb.link{path}
	Template string
	// RangeOnly skips the HEAD probe for gateways that answer HEAD unreliably
	RangeOnly bool
}

// URL builds the gateway URL for a canonical CID path
func (c Candidate) URL(cidPath string) string {
	if strings.Contains(c.Template, cidPlaceholder) || strings.Contains(c.Template, pathPlaceholder) {
		root, rest := cidPath, ""
		if idx := strings.IndexAny(cidPath, "/?#"); idx >= 0 {
			root, rest = cidPath[:idx], cidPath[idx:]
		}
		u := strings.ReplaceAll(c.Template, cidPlaceholder, root)
		return strings.ReplaceAll(u, pathPlaceholder, rest)
	}
	return strings.TrimRight(c.Template, "/") + "/ipfs/" + cidPath
}

// Registry is the immutable, ordered set of gateways
type Registry struct {
	candidates []Candidate
	byName     map[string]Candidate
}

// NewRegistry builds a registry in priority order
// Demoted gateways keep their relative order but move behind every other gateway
func NewRegistry(candidates []Candidate, demoted ...string) (*Registry, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: at least one gateway is required", domain.ErrConfiguration)
	}

	demotedSet := make(map[string]struct{}, len(demoted))
	for _, name := range demoted {
		demotedSet[name] = struct{}{}
	}

	byName := make(map[string]Candidate, len(candidates))
	preferred := make([]Candidate, 0, len(candidates))
	var last []Candidate
	for _, c := range candidates {
		if c.Name == "" || c.Template == "" {
			return nil, fmt.Errorf("%w: gateway name and url are required", domain.ErrConfiguration)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate gateway %q", domain.ErrConfiguration, c.Name)
		}
		byName[c.Name] = c

		if _, ok := demotedSet[c.Name]; ok {
			last = append(last, c)
			continue
		}
		preferred = append(preferred, c)
	}

	return &Registry{
		candidates: append(preferred, last...),
		byName:     byName,
	}, nil
}

// Candidates returns a copy of the gateways in priority order
func (r *Registry) Candidates() []Candidate {
	out := make([]Candidate, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Lookup returns the gateway with the given name
func (r *Registry) Lookup(name string) (Candidate, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// First returns the highest priority gateway
func (r *Registry) First() Candidate {
	return r.candidates[0]
}
