package resolution

import (
	"fmt"
	"time"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

// DefaultSelfReferencePattern matches the metadata endpoints served by this service
const DefaultSelfReferencePattern = `^/api/(v1/)?metadata/`

// Config holds the deadlines and switches of the orchestrator
type Config struct {
	// Timeout is the overall deadline of a resolution when the caller passes none
	Timeout         time.Duration
	ChainTimeout    time.Duration
	GatewayTimeout  time.Duration
	FetchTimeout    time.Duration
	RecoveryTimeout time.Duration
	// StoreTimeout bounds cache writes and lock release, which run detached from the request
	StoreTimeout time.Duration
	LockTTL      time.Duration

	EnableRecoveryStage  bool
	SelfReferencePattern string
	ArweaveGateway       string
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Timeout:              4500 * time.Millisecond,
		ChainTimeout:         1500 * time.Millisecond,
		GatewayTimeout:       1500 * time.Millisecond,
		FetchTimeout:         2 * time.Second,
		RecoveryTimeout:      time.Second,
		StoreTimeout:         time.Second,
		LockTTL:              10 * time.Second,
		SelfReferencePattern: DefaultSelfReferencePattern,
		ArweaveGateway:       domain.DEFAULT_ARWEAVE_GATEWAY,
	}
}

// withDefaults fills zero values from DefaultConfig and rejects negative durations
func (c Config) withDefaults() (Config, error) {
	def := DefaultConfig()
	durations := []struct {
		name  string
		value *time.Duration
		def   time.Duration
	}{
		{"timeout", &c.Timeout, def.Timeout},
		{"chain_timeout", &c.ChainTimeout, def.ChainTimeout},
		{"gateway_timeout", &c.GatewayTimeout, def.GatewayTimeout},
		{"fetch_timeout", &c.FetchTimeout, def.FetchTimeout},
		{"recovery_timeout", &c.RecoveryTimeout, def.RecoveryTimeout},
		{"store_timeout", &c.StoreTimeout, def.StoreTimeout},
		{"lock_ttl", &c.LockTTL, def.LockTTL},
	}
	for _, d := range durations {
		if *d.value < 0 {
			return c, fmt.Errorf("%w: %s must not be negative", domain.ErrConfiguration, d.name)
		}
		if *d.value == 0 {
			*d.value = d.def
		}
	}

	if c.SelfReferencePattern == "" {
		c.SelfReferencePattern = def.SelfReferencePattern
	}
	if c.ArweaveGateway == "" {
		c.ArweaveGateway = def.ArweaveGateway
	}
	return c, nil
}
