package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
public_base_url: "https://nft.example.com"
server:
  host: 127.0.0.1
  port: 9090
  cors_origins: ["https://app.example.com"]
redis:
  addr: "localhost:6379"
  db: 2
ethereum:
  rpc_url: "http://localhost:8545"
gateway:
  gateways:
    - name: local
      url: "http://localhost:8081"
    - name: subdomain
      url: "https://{cid}.ipfs.example{path}"
      range_only: true
  demoted_gateways: ["local"]
  scorer: performance
  jitter: 0.1
resolution:
  timeout: 3s
  enable_recovery_stage: true
nats:
  enabled: true
  url: "nats://localhost:4222"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "https://nft.example.com", cfg.PublicBaseURL)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, 2, cfg.Redis.DB)
				assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
				require.Len(t, cfg.Gateway.Gateways, 2)
				assert.Equal(t, GatewayEntry{Name: "subdomain", URL: "https://{cid}.ipfs.example{path}", RangeOnly: true}, cfg.Gateway.Gateways[1])
				assert.Equal(t, []string{"local"}, cfg.Gateway.DemotedGateways)
				assert.Equal(t, ScorerPerformance, cfg.Gateway.Scorer)
				assert.InDelta(t, 0.1, cfg.Gateway.Jitter, 1e-9)
				assert.Equal(t, 3*time.Second, cfg.Resolution.Timeout)
				assert.True(t, cfg.Resolution.EnableRecoveryStage)
				assert.True(t, cfg.NATS.Enabled)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "config with defaults",
			configFile: `
redis:
  addr: "localhost:6379"
ethereum:
  rpc_url: "http://localhost:8545"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
				assert.Equal(t, 15*time.Minute, cfg.Store.RealTTL)
				assert.Equal(t, 30*time.Second, cfg.Store.PlaceholderTTL)
				assert.Equal(t, 7*24*time.Hour, cfg.Store.HistoryTTL)
				assert.Len(t, cfg.Gateway.Gateways, 4)
				assert.Equal(t, "ipfs.io", cfg.Gateway.Gateways[0].Name)
				assert.True(t, cfg.Gateway.Gateways[3].RangeOnly)
				assert.Equal(t, 20*time.Minute, cfg.Gateway.CacheTTL)
				assert.Equal(t, 1000, cfg.Gateway.CacheSize)
				assert.Equal(t, ScorerPriority, cfg.Gateway.Scorer)
				assert.Equal(t, 4500*time.Millisecond, cfg.Resolution.Timeout)
				assert.Equal(t, 1500*time.Millisecond, cfg.Resolution.ChainTimeout)
				assert.Equal(t, 2*time.Second, cfg.Resolution.FetchTimeout)
				assert.Equal(t, 10*time.Second, cfg.Resolution.LockTTL)
				assert.Equal(t, time.Second, cfg.Resolution.StoreTimeout)
				assert.False(t, cfg.Resolution.EnableRecoveryStage)
				assert.Equal(t, "metadata.resolved", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name:       "missing config file",
			configFile: "",
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, 8080, cfg.Server.Port)
			},
		},
		{
			name: "invalid value",
			configFile: `
server:
  port: invalid
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var configFile string

			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
				require.NoError(t, err)
			} else {
				configFile = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := LoadAPIConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadCLIConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(`
ethereum:
  rpc_url: "http://localhost:8545"
`), 0600)
	require.NoError(t, err)

	cfg, err := LoadCLIConfig(configFile, tmpDir)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
	assert.NoError(t, cfg.Validate())
}

func TestCoreConfig_Validate(t *testing.T) {
	valid := func() CoreConfig {
		return CoreConfig{
			PublicBaseURL: "https://nft.example.com",
			Ethereum:      EthereumConfig{RPCURL: "http://localhost:8545"},
			Redis:         RedisConfig{Addr: "localhost:6379"},
			Store:         StoreConfig{Driver: StoreDriverRedis},
			Gateway: GatewayConfig{
				Gateways: []GatewayEntry{{Name: "ipfs.io", URL: "https://ipfs.io"}},
				Scorer:   ScorerPriority,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*CoreConfig)
	}{
		{"missing rpc url", func(c *CoreConfig) { c.Ethereum.RPCURL = "" }},
		{"missing redis addr", func(c *CoreConfig) { c.Redis.Addr = "" }},
		{"unknown driver", func(c *CoreConfig) { c.Store.Driver = "postgres" }},
		{"no gateways", func(c *CoreConfig) { c.Gateway.Gateways = nil }},
		{"unknown scorer", func(c *CoreConfig) { c.Gateway.Scorer = "random" }},
		{"missing base url", func(c *CoreConfig) { c.PublicBaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrConfiguration)
		})
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = StoreDriverMemory
	cfg.Redis.Addr = ""
	assert.NoError(t, cfg.Validate())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	// Registered so the variables set by the .env file are restored afterwards
	for _, key := range []string{
		"NFT_METADATA_DEBUG",
		"NFT_METADATA_REDIS_ADDR",
		"NFT_METADATA_ETHEREUM_RPC_URL",
		"NFT_METADATA_RESOLUTION_TIMEOUT",
		"NFT_METADATA_GATEWAY_DEMOTED_GATEWAYS",
	} {
		t.Setenv(key, "")
	}

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	envContent := `NFT_METADATA_DEBUG=true
NFT_METADATA_REDIS_ADDR=env-redis:6379
NFT_METADATA_ETHEREUM_RPC_URL=http://env-node:8545
NFT_METADATA_RESOLUTION_TIMEOUT=2s
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.api.local"), []byte("NFT_METADATA_REDIS_ADDR=local-redis:6379\n"), 0600))

	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
redis:
  addr: file-redis:6379
ethereum:
  rpc_url: http://file-node:8545
`
	require.NoError(t, os.WriteFile(configPath, []byte(configFile), 0600))

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Environment variables from the .env files override config file values
	assert.True(t, cfg.Debug)
	assert.Equal(t, "local-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://env-node:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, 2*time.Second, cfg.Resolution.Timeout)
}
