package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// PathsConfig holds filesystem layout settings
type PathsConfig struct {
	ConfigDir    string `mapstructure:"config_dir"`
	ResolversDir string `mapstructure:"resolvers_dir"`
	DomainsFile  string `mapstructure:"domains_file"`
}

// PlaylistsDir returns the directory holding converted playlist files
func (p PathsConfig) PlaylistsDir() string {
	return filepath.Join(p.ConfigDir, "playlists")
}

// ResolverConfig holds external resolver subprocess settings
type ResolverConfig struct {
	Command        string `mapstructure:"command"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	ProxyURL       string `mapstructure:"proxy_url"`
}

// CacheConfig holds player API cache settings
type CacheConfig struct {
	PlayerAPITTLSeconds int `mapstructure:"player_api_ttl_seconds"`
	MaxEntries          int `mapstructure:"max_entries"`
}

// RefreshConfig holds playlist refresh settings
type RefreshConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	Workers           int  `mapstructure:"workers"`
	FetchesPerSecond  int  `mapstructure:"fetches_per_second"`
	TimeoutSeconds    int  `mapstructure:"timeout_seconds"`
	CheckEverySeconds int  `mapstructure:"check_every_seconds"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	App   LogLevelConfig `mapstructure:"app"`
	Store LogLevelConfig `mapstructure:"store"`
}

// LogLevelConfig represents log level configuration for a specific component
type LogLevelConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

var cfg *Config

// bindEnvWithAlternatives binds a viper key to environment variables with alternative names
// This allows supporting both STREAMGATE_SERVER_PORT and PORT for the same config key
func bindEnvWithAlternatives(key string, alternatives ...string) {
	viper.BindEnv(key)
	for _, alt := range alternatives {
		if value := os.Getenv(alt); value != "" {
			viper.Set(key, value)
			break
		}
	}
}

// Load reads configuration from file and environment variables
func Load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/streamgate")

	// Set defaults
	setDefaults()

	// Enable environment variable overrides
	viper.SetEnvPrefix("STREAMGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind environment variables explicitly for nested config
	// Support both STREAMGATE_ prefix and the original container-style names
	bindEnvWithAlternatives("server.port", "PORT")

	bindEnvWithAlternatives("paths.config_dir", "CONFIG_DIR")
	bindEnvWithAlternatives("paths.resolvers_dir", "RESOLVERS_DIR")
	bindEnvWithAlternatives("paths.domains_file", "DOMAINS_JSON")

	bindEnvWithAlternatives("resolver.command", "RESOLVER_COMMAND")
	bindEnvWithAlternatives("resolver.proxy_url", "MEDIAFLOW_PROXY")
	viper.BindEnv("resolver.timeout_seconds")

	viper.BindEnv("cache.player_api_ttl_seconds")
	viper.BindEnv("cache.max_entries")

	viper.BindEnv("refresh.enabled")
	viper.BindEnv("refresh.workers")
	viper.BindEnv("refresh.fetches_per_second")
	viper.BindEnv("refresh.timeout_seconds")
	viper.BindEnv("refresh.check_every_seconds")

	bindEnvWithAlternatives("logging.app.level", "LOG_LEVEL")
	viper.BindEnv("logging.store.level")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &Config{}
	}
	return cfg
}

// Set replaces the current configuration (primarily for testing)
func Set(c *Config) {
	cfg = c
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)

	viper.SetDefault("paths.config_dir", "./config")
	viper.SetDefault("paths.resolvers_dir", "/opt/external-resolvers")
	viper.SetDefault("paths.domains_file", "/opt/external-resolvers/config/domains.json")

	viper.SetDefault("resolver.command", "python3")
	viper.SetDefault("resolver.timeout_seconds", 30)

	viper.SetDefault("cache.player_api_ttl_seconds", 60)
	viper.SetDefault("cache.max_entries", 1024)

	viper.SetDefault("refresh.enabled", true)
	viper.SetDefault("refresh.workers", 4)
	viper.SetDefault("refresh.fetches_per_second", 2)
	viper.SetDefault("refresh.timeout_seconds", 40)
	viper.SetDefault("refresh.check_every_seconds", 300)

	viper.SetDefault("logging.app.level", "info")
	viper.SetDefault("logging.store.level", "info")
}

func validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Paths.ConfigDir == "" {
		return fmt.Errorf("paths.config_dir must not be empty")
	}
	if cfg.Resolver.TimeoutSeconds <= 0 {
		return fmt.Errorf("resolver.timeout_seconds must be positive, got %d", cfg.Resolver.TimeoutSeconds)
	}
	if cfg.Refresh.Workers <= 0 {
		return fmt.Errorf("refresh.workers must be positive, got %d", cfg.Refresh.Workers)
	}
	return nil
}
