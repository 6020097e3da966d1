// Package config loads walletkit settings from a YAML file with WALLETKIT_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/chains/evm"
	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/session"
	"github.com/sigweihq/walletkit/pkg/utils"
	"github.com/sigweihq/walletkit/pkg/wallet"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "WALLETKIT_"

// Config is the on-disk configuration
type Config struct {
	LogLevel     string             `yaml:"log_level"`
	Solana       SolanaConfig       `yaml:"solana"`
	Polygon      PolygonConfig      `yaml:"polygon"`
	Confirmation ConfirmationConfig `yaml:"confirmation"`
}

// SolanaConfig configures the Solana adapter
type SolanaConfig struct {
	RPCURL     string `yaml:"rpc_url"`
	PrivateKey string `yaml:"private_key"` // hex or base58; empty for watch-only use
}

// PolygonConfig configures the Polygon adapter
type PolygonConfig struct {
	RPCURL            string `yaml:"rpc_url"`
	ExplorerAPIURL    string `yaml:"explorer_api_url"`
	ExplorerAPIKey    string `yaml:"explorer_api_key"`
	PrivateKey        string `yaml:"private_key"`
	DiscoverEndpoints bool   `yaml:"discover_endpoints"`
}

// ConfirmationConfig bounds how long a send waits for the network
type ConfirmationConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the built-in configuration
func Default() *Config {
	solanaCfg, _ := chains.GetConfig(chains.ChainSolana)
	polygonCfg, _ := chains.GetConfig(chains.ChainPolygon)
	return &Config{
		LogLevel: "info",
		Solana: SolanaConfig{
			RPCURL: solanaCfg.RPCURL,
		},
		Polygon: PolygonConfig{
			RPCURL:         polygonCfg.RPCURL,
			ExplorerAPIURL: polygonCfg.ExplorerAPIURL,
		},
		Confirmation: ConfirmationConfig{
			Timeout:      constants.ConfirmationTimeout,
			PollInterval: constants.ConfirmationPollInterval,
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":                &c.LogLevel,
		"SOLANA_RPC_URL":           &c.Solana.RPCURL,
		"SOLANA_PRIVATE_KEY":       &c.Solana.PrivateKey,
		"POLYGON_RPC_URL":          &c.Polygon.RPCURL,
		"POLYGON_EXPLORER_API_URL": &c.Polygon.ExplorerAPIURL,
		"POLYGON_EXPLORER_API_KEY": &c.Polygon.ExplorerAPIKey,
		"POLYGON_PRIVATE_KEY":      &c.Polygon.PrivateKey,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvPrefix + "POLYGON_DISCOVER_ENDPOINTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPOLYGON_DISCOVER_ENDPOINTS: %w", EnvPrefix, err)
		}
		c.Polygon.DiscoverEndpoints = b
	}

	durations := map[string]*time.Duration{
		"CONFIRMATION_TIMEOUT":       &c.Confirmation.Timeout,
		"CONFIRMATION_POLL_INTERVAL": &c.Confirmation.PollInterval,
	}
	for name, dst := range durations {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks endpoints and durations
func (c *Config) Validate() error {
	var errs []error
	if err := utils.ValidateEndpointURL(c.Solana.RPCURL); err != nil {
		errs = append(errs, fmt.Errorf("solana.rpc_url: %w", err))
	}
	if err := utils.ValidateEndpointURL(c.Polygon.RPCURL); err != nil {
		errs = append(errs, fmt.Errorf("polygon.rpc_url: %w", err))
	}
	if c.Polygon.ExplorerAPIURL != "" {
		if err := utils.ValidateEndpointURL(c.Polygon.ExplorerAPIURL); err != nil {
			errs = append(errs, fmt.Errorf("polygon.explorer_api_url: %w", err))
		}
	}
	if c.Confirmation.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("confirmation.timeout must be positive"))
	}
	if c.Confirmation.PollInterval <= 0 || c.Confirmation.PollInterval > c.Confirmation.Timeout {
		errs = append(errs, fmt.Errorf("confirmation.poll_interval must be positive and below the timeout"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger builds a text logger at the configured level
func (c *Config) Logger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Session builds the signer supply from the configured private keys. Chains
// without a key get no signer; reads still work.
func (c *Config) Session() (*session.Session, error) {
	var opts []session.Option
	if c.Solana.PrivateKey != "" {
		w, err := session.LocalSolanaWalletFromString(c.Solana.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("solana.private_key: %w", err)
		}
		opts = append(opts, session.WithSolanaWallet(w))
	}
	if c.Polygon.PrivateKey != "" {
		p, err := session.LocalEVMProviderFromString(c.Polygon.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("polygon.private_key: %w", err)
		}
		opts = append(opts, session.WithEVMProvider(p))
	}
	return session.New(opts...), nil
}

// RegistryOptions translates the configuration into registry options
func (c *Config) RegistryOptions(logger *slog.Logger) ([]wallet.Option, error) {
	solanaCfg, err := chains.GetConfig(chains.ChainSolana)
	if err != nil {
		return nil, err
	}
	polygonCfg, err := chains.GetConfig(chains.ChainPolygon)
	if err != nil {
		return nil, err
	}

	opts := []wallet.Option{
		wallet.WithLogger(logger),
		wallet.WithChainConfig(solanaCfg.WithRPCURL(c.Solana.RPCURL)),
		wallet.WithChainConfig(polygonCfg.
			WithRPCURL(c.Polygon.RPCURL).
			WithExplorerAPIURL(c.Polygon.ExplorerAPIURL)),
		wallet.WithExplorerAPIKey(c.Polygon.ExplorerAPIKey),
		wallet.WithConfirmation(c.Confirmation.Timeout, c.Confirmation.PollInterval),
	}
	if c.Polygon.DiscoverEndpoints {
		opts = append(opts, wallet.WithEndpointDiscovery(evm.NewChainListEndpointProvider(logger, "")))
	}
	return opts, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
