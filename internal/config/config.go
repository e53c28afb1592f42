package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

const (
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"

	ScorerPriority    = "priority"
	ScorerPerformance = "performance"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int      `mapstructure:"idle_timeout"`  // in seconds
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// RedisConfig holds the shared key-value store connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig selects the KV driver and the metadata cache TTLs
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"` // redis or memory
	RealTTL        time.Duration `mapstructure:"real_ttl"`
	PlaceholderTTL time.Duration `mapstructure:"placeholder_ttl"`
	HistoryTTL     time.Duration `mapstructure:"history_ttl"`
}

// EthereumConfig holds Ethereum RPC configuration
type EthereumConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
}

// GatewayEntry is one configured IPFS gateway
type GatewayEntry struct {
	Name string `mapstructure:"name"`
	// URL is either a base URL or a template with {cid} and {path}
	URL       string `mapstructure:"url"`
	RangeOnly bool   `mapstructure:"range_only"`
}

// GatewayConfig holds the gateway registry and selection configuration
type GatewayConfig struct {
	Gateways          []GatewayEntry `mapstructure:"gateways"`
	DemotedGateways   []string       `mapstructure:"demoted_gateways"`
	CacheTTL          time.Duration  `mapstructure:"cache_ttl"`
	CacheSize         int            `mapstructure:"cache_size"`
	ProbeTimeout      time.Duration  `mapstructure:"probe_timeout"`
	Scorer            string         `mapstructure:"scorer"` // priority or performance
	PerformanceWindow int            `mapstructure:"performance_window"`
	Jitter            float64        `mapstructure:"jitter"`
	RetryBackoff      time.Duration  `mapstructure:"retry_backoff"`
	RetryMaxBackoff   time.Duration  `mapstructure:"retry_max_backoff"`
}

// ResolutionConfig holds the orchestrator deadlines and switches
type ResolutionConfig struct {
	Timeout              time.Duration `mapstructure:"timeout"`
	ChainTimeout         time.Duration `mapstructure:"chain_timeout"`
	GatewayTimeout       time.Duration `mapstructure:"gateway_timeout"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	RecoveryTimeout      time.Duration `mapstructure:"recovery_timeout"`
	ImageGatewayTimeout  time.Duration `mapstructure:"image_gateway_timeout"`
	LockTTL              time.Duration `mapstructure:"lock_ttl"`
	StoreTimeout         time.Duration `mapstructure:"store_timeout"`
	EnableRecoveryStage  bool          `mapstructure:"enable_recovery_stage"`
	SelfReferencePattern string        `mapstructure:"self_reference_pattern"`
	ArweaveGateway       string        `mapstructure:"arweave_gateway"`
}

// HTTPConfig holds the outbound HTTP client configuration
type HTTPConfig struct {
	Timeout              time.Duration `mapstructure:"timeout"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	RetryMaxElapsedTime  time.Duration `mapstructure:"retry_max_elapsed_time"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// CoreConfig holds everything needed to resolve metadata
type CoreConfig struct {
	PublicBaseURL string           `mapstructure:"public_base_url"`
	Ethereum      EthereumConfig   `mapstructure:"ethereum"`
	Redis         RedisConfig      `mapstructure:"redis"`
	Store         StoreConfig      `mapstructure:"store"`
	Gateway       GatewayConfig    `mapstructure:"gateway"`
	Resolution    ResolutionConfig `mapstructure:"resolution"`
	HTTP          HTTPConfig       `mapstructure:"http"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	CoreConfig `mapstructure:",squash"`
	Server     ServerConfig `mapstructure:"server"`
	NATS       NATSConfig   `mapstructure:"nats"`
}

// CLIConfig holds configuration for metadata-cli
type CLIConfig struct {
	BaseConfig `mapstructure:",squash"`
	CoreConfig `mapstructure:",squash"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	setCoreDefaults(v, StoreDriverRedis)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.subject_prefix", "metadata.resolved")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "nft-metadata-gateway")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadCLIConfig loads configuration for metadata-cli
// The CLI defaults to the in-memory store so it runs without Redis
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("metadata-cli", configFile, envPath)

	// Set defaults
	setCoreDefaults(v, StoreDriverMemory)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config CLIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate reports configuration that would make every resolution degrade silently
func (c *CoreConfig) Validate() error {
	var problems []string

	if c.Ethereum.RPCURL == "" {
		problems = append(problems, "ethereum.rpc_url is required")
	}
	switch c.Store.Driver {
	case StoreDriverRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required with the redis store driver")
		}
	case StoreDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown store.driver %q", c.Store.Driver))
	}
	if len(c.Gateway.Gateways) == 0 {
		problems = append(problems, "gateway.gateways must list at least one gateway")
	}
	switch c.Gateway.Scorer {
	case ScorerPriority, ScorerPerformance:
	default:
		problems = append(problems, fmt.Sprintf("unknown gateway.scorer %q", c.Gateway.Scorer))
	}
	if c.PublicBaseURL == "" {
		problems = append(problems, "public_base_url is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func setCoreDefaults(v *viper.Viper, storeDriver string) {
	v.SetDefault("debug", false)
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.driver", storeDriver)
	v.SetDefault("store.real_ttl", "15m")
	v.SetDefault("store.placeholder_ttl", "30s")
	v.SetDefault("store.history_ttl", "168h")
	v.SetDefault("gateway.gateways", []map[string]interface{}{
		{"name": "ipfs.io", "url": "https://ipfs.io"},
		{"name": "dweb.link", "url": "https://{cid}.ipfs.dweb.link{path}"},
		{"name": "pinata", "url": "https://gateway.pinata.cloud"},
		{"name": "cloudflare", "url": "https://cloudflare-ipfs.com", "range_only": true},
	})
	v.SetDefault("gateway.cache_ttl", "20m")
	v.SetDefault("gateway.cache_size", 1000)
	v.SetDefault("gateway.probe_timeout", "3s")
	v.SetDefault("gateway.scorer", ScorerPriority)
	v.SetDefault("gateway.performance_window", 20)
	v.SetDefault("gateway.jitter", 0.05)
	v.SetDefault("gateway.retry_backoff", "500ms")
	v.SetDefault("gateway.retry_max_backoff", "4s")
	v.SetDefault("resolution.timeout", "4500ms")
	v.SetDefault("resolution.chain_timeout", "1500ms")
	v.SetDefault("resolution.gateway_timeout", "1500ms")
	v.SetDefault("resolution.fetch_timeout", "2s")
	v.SetDefault("resolution.recovery_timeout", "1s")
	v.SetDefault("resolution.image_gateway_timeout", "1500ms")
	v.SetDefault("resolution.lock_ttl", "10s")
	v.SetDefault("resolution.store_timeout", "1s")
	v.SetDefault("resolution.enable_recovery_stage", false)
	v.SetDefault("resolution.self_reference_pattern", `^/api/(v1/)?metadata/`)
	v.SetDefault("resolution.arweave_gateway", domain.DEFAULT_ARWEAVE_GATEWAY)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.retry_initial_interval", "200ms")
	v.SetDefault("http.retry_max_interval", "2s")
	v.SetDefault("http.retry_max_elapsed_time", "10s")
}

// readConfig reads the config file, falling back to environment variables when there is none
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("NFT_METADATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all scalar keys to environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
// gateway.gateways is a list of objects and can only be set from a config file
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		// Base
		"debug",
		"sentry_dsn",
		"public_base_url",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Store
		"store.driver",
		"store.real_ttl",
		"store.placeholder_ttl",
		"store.history_ttl",
		// Ethereum
		"ethereum.rpc_url",
		// Gateway
		"gateway.demoted_gateways",
		"gateway.cache_ttl",
		"gateway.cache_size",
		"gateway.probe_timeout",
		"gateway.scorer",
		"gateway.performance_window",
		"gateway.jitter",
		"gateway.retry_backoff",
		"gateway.retry_max_backoff",
		// Resolution
		"resolution.timeout",
		"resolution.chain_timeout",
		"resolution.gateway_timeout",
		"resolution.fetch_timeout",
		"resolution.recovery_timeout",
		"resolution.image_gateway_timeout",
		"resolution.lock_ttl",
		"resolution.store_timeout",
		"resolution.enable_recovery_stage",
		"resolution.self_reference_pattern",
		"resolution.arweave_gateway",
		// HTTP
		"http.timeout",
		"http.retry_initial_interval",
		"http.retry_max_interval",
		"http.retry_max_elapsed_time",
		// NATS
		"nats.enabled",
		"nats.url",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
