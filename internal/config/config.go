// Package config loads the DAO client configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full client configuration.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Contracts ContractsConfig `yaml:"contracts"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	// RefreshSchedule is a cron "@every" spec driving the background
	// proposal refresher. Empty disables it.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// NodeConfig locates the ledger node and the wallet provider.
type NodeConfig struct {
	RPCURL       string   `yaml:"rpc_url"`
	WalletRPCURL string   `yaml:"wallet_rpc_url"`
	Timeout      Duration `yaml:"timeout"`
	// WaitTimeout bounds the local wait for transaction confirmation. The
	// transaction may still land after the wait is abandoned.
	WaitTimeout  Duration `yaml:"wait_timeout"`
	PollInterval Duration `yaml:"poll_interval"`
}

// ContractsConfig holds the deployed contract addresses.
type ContractsConfig struct {
	Governance string `yaml:"governance"`
	Token      string `yaml:"token"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// MetadataConfig configures off-chain metadata access.
type MetadataConfig struct {
	ContentGateway  string `yaml:"content_gateway"`
	PublishEndpoint string `yaml:"publish_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			RPCURL:       "http://localhost:8545",
			WalletRPCURL: "http://localhost:8560",
		},
		HTTP: HTTPConfig{
			Listen: ":8080",
		},
		RefreshSchedule: "@every 30s",
	}
}

// Load reads the configuration from config/daoclient.yaml.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "daoclient.yaml"))
}

// LoadFromPath reads the configuration from a specific path and applies
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config or returns the default (with env overrides) if
// no file is found.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
		cfg.LoadFromEnv()
	}
	return cfg
}

// LoadFromEnv applies environment variable overrides.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("DAO_NODE_RPC_URL"); v != "" {
		c.Node.RPCURL = v
	}
	if v := os.Getenv("DAO_WALLET_RPC_URL"); v != "" {
		c.Node.WalletRPCURL = v
	}
	if v := os.Getenv("DAO_GOVERNANCE_ADDRESS"); v != "" {
		c.Contracts.Governance = v
	}
	if v := os.Getenv("DAO_TOKEN_ADDRESS"); v != "" {
		c.Contracts.Token = v
	}
	if v := os.Getenv("DAO_HTTP_LISTEN"); v != "" {
		c.HTTP.Listen = v
	}
	if v := os.Getenv("DAO_CONTENT_GATEWAY"); v != "" {
		c.Metadata.ContentGateway = v
	}
	if v := os.Getenv("DAO_PUBLISH_ENDPOINT"); v != "" {
		c.Metadata.PublishEndpoint = v
	}
	if v := os.Getenv("DAO_REFRESH_SCHEDULE"); v != "" {
		c.RefreshSchedule = v
	}
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Node.RPCURL == "" {
		return fmt.Errorf("node.rpc_url is required")
	}
	if c.Contracts.Governance == "" {
		return fmt.Errorf("contracts.governance is required")
	}
	if c.Contracts.Token == "" {
		return fmt.Errorf("contracts.token is required")
	}
	return nil
}
