package domain

import "time"

// ResolutionEvent is published after every completed resolution
type ResolutionEvent struct {
	ContractAddress string    `json:"contract"`
	TokenID         string    `json:"token_id"`
	Source          Source    `json:"source"`
	Cached          bool      `json:"cached"`
	LatencyMs       int64     `json:"latency_ms"`
	GatewayUsed     string    `json:"gateway,omitempty"`
	ResolvedAt      time.Time `json:"resolved_at"`
}
