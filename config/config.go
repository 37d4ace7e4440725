package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BroadcastScope controls which connections receive task events.
type BroadcastScope string

const (
	// ScopeOwner delivers events only to the owning user's connections.
	ScopeOwner BroadcastScope = "owner"
	// ScopeGlobal additionally delivers every event to all connections.
	// Only meaningful once shared boards exist; off by default because it
	// exposes task contents across account boundaries.
	ScopeGlobal BroadcastScope = "global"
)

// ServerConfig holds HTTP and WebSocket server settings.
type ServerConfig struct {
	Port              int            `mapstructure:"port"`
	BroadcastScope    BroadcastScope `mapstructure:"broadcast_scope"`
	HeartbeatInterval time.Duration  `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration  `mapstructure:"heartbeat_timeout"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
}

// Load reads configuration from an optional config file plus TASKBOARD_*
// environment overrides, falling back to defaults suitable for local use.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.broadcast_scope", string(ScopeOwner))
	v.SetDefault("server.heartbeat_interval", 25*time.Second)
	v.SetDefault("server.heartbeat_timeout", 60*time.Second)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "taskboard")
	v.SetDefault("storage.sqlite_path", "taskboard.db")

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taskboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, a present-but-broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.BroadcastScope != ScopeOwner && cfg.Server.BroadcastScope != ScopeGlobal {
		return nil, fmt.Errorf("invalid broadcast scope: %q", cfg.Server.BroadcastScope)
	}

	return &cfg, nil
}
