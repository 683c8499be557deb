// Package config loads and validates the aggregator's runtime configuration:
// environment variables (highest precedence), an optional .env file, an
// optional YAML file, falling back to hard-coded defaults — the same
// three-tier layering this codebase's other services use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
)

// Mode selects which listeners are active.
type Mode string

const (
	ModeInternal Mode = "internal"
	ModeExternal Mode = "external"
	ModeDual     Mode = "dual"
)

// ListenerConfig describes one HTTP listener.
type ListenerConfig struct {
	Enabled bool   `json:"enabled" env:"ENABLED"`
	Host    string `json:"host" env:"HOST"`
	Port    int    `json:"port" env:"PORT"`
}

// ExternalConfig extends ListenerConfig with the ingress toggles.
type ExternalConfig struct {
	ListenerConfig
	CORSOrigins          []string `json:"cors_origins"`
	EnableRateLimit      bool     `json:"enable_rate_limit" env:"EXTERNAL_ENABLE_RATE_LIMIT"`
	EnableCircuitBreaker bool     `json:"enable_circuit_breaker" env:"EXTERNAL_ENABLE_CIRCUIT_BREAKER"`
	EnableIPFilter       bool     `json:"enable_ip_filter" env:"EXTERNAL_ENABLE_IP_FILTER"`
	IPFilterMode         string   `json:"ip_filter_mode" env:"EXTERNAL_IP_FILTER_MODE"` // "allow" | "deny"
	IPFilterList         []string `json:"ip_filter_list"`
	EnableJWTAuth        bool     `json:"enable_jwt_auth" env:"EXTERNAL_ENABLE_JWT_AUTH"`
	EnableMagicLink      bool     `json:"enable_magic_link" env:"EXTERNAL_ENABLE_MAGIC_LINK"`
}

// NetworkConfig is the top-level listener configuration validated at startup.
type NetworkConfig struct {
	Mode     Mode           `json:"mode" env:"NETWORK_MODE"`
	Internal ListenerConfig `json:"internal"`
	External ExternalConfig `json:"external"`
}

// AuthConfig configures Bearer/API-key auth and magic-link minting.
type AuthConfig struct {
	JWTSecret          string        `json:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTExpiry          int           `json:"jwt_expiry_seconds" env:"AUTH_JWT_EXPIRY_SECONDS"`
	APIKeyHashes       []string      `json:"api_key_hashes"`
	MagicLinkSecret    string        `json:"magic_link_secret" env:"AUTH_MAGICLINK_SECRET"`
	MagicLinkTTLSecond int           `json:"magic_link_ttl_seconds" env:"AUTH_MAGICLINK_TTL_SECONDS"`
}

// LoggingConfig controls the service logger.
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// EngineConfig controls registry defaults.
type EngineConfig struct {
	DefaultTimeoutSeconds        int      `json:"default_timeout_seconds" env:"ENGINE_DEFAULT_TIMEOUT_SECONDS"`
	FailureThreshold             int      `json:"failure_threshold" env:"ENGINE_FAILURE_THRESHOLD"`
	TemporaryDisableSeconds      int      `json:"temporary_disable_seconds" env:"ENGINE_TEMP_DISABLE_SECONDS"`
	GlobalOrder                  []string `json:"global_order"`
	Disabled                     []string `json:"disabled"`
}

// StateBackendConfig selects the health-store/magic-link backing store.
type StateBackendConfig struct {
	Backend   string `json:"backend" env:"STATE_BACKEND"` // "memory" | "redis"
	RedisAddr string `json:"redis_addr" env:"STATE_REDIS_ADDR"`
}

// RateLimitConfig configures the global token bucket; per-IP derives from it.
type RateLimitConfig struct {
	GlobalRatePerSecond float64 `json:"global_rate_per_second" env:"RATE_LIMIT_GLOBAL_RPS"`
	GlobalBurst         int     `json:"global_burst" env:"RATE_LIMIT_GLOBAL_BURST"`
}

// Config is the fully decoded runtime configuration.
type Config struct {
	Network   NetworkConfig      `json:"network"`
	Auth      AuthConfig         `json:"auth"`
	Logging   LoggingConfig      `json:"logging"`
	Engine    EngineConfig       `json:"engine"`
	State     StateBackendConfig `json:"state"`
	RateLimit RateLimitConfig    `json:"rate_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Network: NetworkConfig{
			Mode: ModeDual,
			Internal: ListenerConfig{
				Enabled: true,
				Host:    "127.0.0.1",
				Port:    8888,
			},
			External: ExternalConfig{
				ListenerConfig: ListenerConfig{
					Enabled: true,
					Host:    "0.0.0.0",
					Port:    8080,
				},
				CORSOrigins:          []string{"*"},
				EnableRateLimit:      true,
				EnableCircuitBreaker: true,
				EnableIPFilter:       false,
				IPFilterMode:         "deny",
				EnableJWTAuth:        true,
				EnableMagicLink:      true,
			},
		},
		Auth: AuthConfig{
			JWTExpiry:          3600,
			MagicLinkTTLSecond: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			DefaultTimeoutSeconds:   8,
			FailureThreshold:        3,
			TemporaryDisableSeconds: 300,
		},
		State: StateBackendConfig{
			Backend: "memory",
		},
		RateLimit: RateLimitConfig{
			GlobalRatePerSecond: 100,
			GlobalBurst:         200,
		},
	}
}

// Load starts from the defaults, applies an optional YAML file, then applies
// environment variables (including any loaded from .env, which never
// override variables already set); later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile("configs/config.yaml", cfg)
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors when no tagged field is set in the environment;
		// treat that as "no overrides" so local runs work unconfigured.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate enforces the network-mode rules: internal mode requires a loopback
// listen host, external mode requires the external listener to be enabled,
// and dual mode requires at least one of the two.
func (c *Config) Validate() error {
	n := c.Network
	switch n.Mode {
	case ModeInternal:
		if !n.Internal.Enabled {
			return apierrors.ConfigInvalid("mode=internal requires internal.enabled")
		}
		if !isLoopbackHost(n.Internal.Host) {
			return apierrors.ConfigInvalid("mode=internal requires internal.host in {127.0.0.1, localhost}")
		}
	case ModeExternal:
		if !n.External.Enabled {
			return apierrors.ConfigInvalid("mode=external requires external.enabled")
		}
	case ModeDual:
		if !n.Internal.Enabled && !n.External.Enabled {
			return apierrors.ConfigInvalid("mode=dual requires at least one side enabled")
		}
		if n.Internal.Enabled && !isLoopbackHost(n.Internal.Host) {
			return apierrors.ConfigInvalid("internal listener must bind to 127.0.0.1 or localhost")
		}
	default:
		return apierrors.ConfigInvalid(fmt.Sprintf("unknown network mode %q", n.Mode))
	}
	return nil
}

func isLoopbackHost(host string) bool {
	return host == "127.0.0.1" || host == "localhost"
}
