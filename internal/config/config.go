// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Cardano   CardanoConfig   `mapstructure:"cardano"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP gateway server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CardanoConfig holds per-network chain settings, keyed by network name
// (mainnet, preprod, preview).
type CardanoConfig struct {
	DefaultNetwork string                   `mapstructure:"default_network"`
	Networks       map[string]NetworkConfig `mapstructure:"networks"`
}

// NetworkConfig holds the data-provider settings for one Cardano network.
type NetworkConfig struct {
	ProviderURL       string        `mapstructure:"provider_url"`
	ProjectID         string        `mapstructure:"project_id"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	TTLSeconds        uint64        `mapstructure:"ttl_seconds"`
}

// Network returns the settings for the named network.
func (c *CardanoConfig) Network(name string) (NetworkConfig, bool) {
	nc, ok := c.Networks[name]
	return nc, ok
}

// VenuesConfig holds per-venue settings.
type VenuesConfig struct {
	Minswap    VenueConfig `mapstructure:"minswap"`
	Sundaeswap VenueConfig `mapstructure:"sundaeswap"`
}

// VenueConfig holds the settings common to every DEX venue. Pool ids are
// keyed by network so one process can serve mainnet and preprod side by
// side.
type VenueConfig struct {
	Enabled            bool              `mapstructure:"enabled"`
	AllowedSlippagePct uint64            `mapstructure:"allowed_slippage_pct"`
	DefaultPoolIDs     map[string]string `mapstructure:"default_pool_ids"`
}

// DefaultPoolID returns the configured default pool for a network, if any.
func (c *VenueConfig) DefaultPoolID(network string) (string, bool) {
	id, ok := c.DefaultPoolIDs[network]
	return id, ok && id != ""
}

// WalletConfig holds the encrypted wallet store settings.
type WalletConfig struct {
	StoreDir       string `mapstructure:"store_dir"`
	DefaultAddress string `mapstructure:"default_address"`
	Passphrase     string `mapstructure:"passphrase"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"` // otlp, zipkin, stdout, none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ZipkinURL      string `mapstructure:"zipkin_url"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("GW")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "GW_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "GW_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "GW_LOG_LEVEL", "LOG_LEVEL")

	// Server
	v.BindEnv("server.port", "GW_SERVER_PORT", "PORT")

	// Cardano
	v.BindEnv("cardano.default_network", "GW_CARDANO_NETWORK", "CARDANO_NETWORK")
	v.BindEnv("cardano.networks.mainnet.provider_url", "GW_MAINNET_PROVIDER_URL")
	v.BindEnv("cardano.networks.mainnet.project_id", "GW_MAINNET_PROJECT_ID", "BLOCKFROST_PROJECT_ID")
	v.BindEnv("cardano.networks.preprod.provider_url", "GW_PREPROD_PROVIDER_URL")
	v.BindEnv("cardano.networks.preprod.project_id", "GW_PREPROD_PROJECT_ID")

	// Wallet
	v.BindEnv("wallet.store_dir", "GW_WALLET_STORE_DIR")
	v.BindEnv("wallet.default_address", "GW_WALLET_ADDRESS")
	v.BindEnv("wallet.passphrase", "GW_WALLET_PASSPHRASE")

	// Telemetry
	v.BindEnv("telemetry.enabled", "GW_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "GW_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "GW_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.zipkin_url", "GW_ZIPKIN_URL")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "cardex-gateway")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.port", 15888)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Cardano defaults
	v.SetDefault("cardano.default_network", "mainnet")
	v.SetDefault("cardano.networks.mainnet.provider_url", "https://cardano-mainnet.blockfrost.io/api/v0")
	v.SetDefault("cardano.networks.mainnet.request_timeout", "10s")
	v.SetDefault("cardano.networks.mainnet.requests_per_minute", 500)
	v.SetDefault("cardano.networks.mainnet.ttl_seconds", 600)
	v.SetDefault("cardano.networks.preprod.provider_url", "https://cardano-preprod.blockfrost.io/api/v0")
	v.SetDefault("cardano.networks.preprod.request_timeout", "10s")
	v.SetDefault("cardano.networks.preprod.requests_per_minute", 500)
	v.SetDefault("cardano.networks.preprod.ttl_seconds", 600)

	// Venue defaults
	v.SetDefault("venues.minswap.enabled", true)
	v.SetDefault("venues.minswap.allowed_slippage_pct", 1)
	v.SetDefault("venues.sundaeswap.enabled", true)
	v.SetDefault("venues.sundaeswap.allowed_slippage_pct", 1)

	// Wallet defaults
	v.SetDefault("wallet.store_dir", "./wallets")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "cardex-gateway")
	v.SetDefault("telemetry.trace_exporter", "none")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Cardano.DefaultNetwork == "" {
		return fmt.Errorf("cardano.default_network is required")
	}
	if _, ok := c.Cardano.Networks[c.Cardano.DefaultNetwork]; !ok {
		return fmt.Errorf("cardano.default_network %q has no networks entry", c.Cardano.DefaultNetwork)
	}
	for name, nc := range c.Cardano.Networks {
		if nc.ProviderURL == "" {
			return fmt.Errorf("cardano.networks.%s.provider_url is required", name)
		}
		if nc.RequestsPerMinute <= 0 {
			return fmt.Errorf("cardano.networks.%s.requests_per_minute must be positive", name)
		}
	}
	for _, vc := range []struct {
		name string
		cfg  VenueConfig
	}{
		{"minswap", c.Venues.Minswap},
		{"sundaeswap", c.Venues.Sundaeswap},
	} {
		if vc.cfg.AllowedSlippagePct >= 100 {
			return fmt.Errorf("venues.%s.allowed_slippage_pct must be below 100", vc.name)
		}
	}
	return nil
}
