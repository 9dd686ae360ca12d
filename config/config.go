// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package config holds the client configuration, loaded from a TOML
// file, SUBCLIENT_ environment variables and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/naoina/toml"
	"github.com/spf13/viper"

	"github.com/ChainSafe/subclient/internal/log"
)

// EnvPrefix prefixes the environment variables overriding the configuration,
// for example SUBCLIENT_RPC_URL.
const EnvPrefix = "SUBCLIENT"

// AutoSS58Format reads the SS58 format from the chain properties.
const AutoSS58Format = -1

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the client configuration.
type Config struct {
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	RPC     RPCConfig     `toml:"rpc" mapstructure:"rpc"`
	Chain   ChainConfig   `toml:"chain" mapstructure:"chain"`
	Author  AuthorConfig  `toml:"author" mapstructure:"author"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

// LogConfig is the logging configuration.
type LogConfig struct {
	// Level is a level name such as info or debug.
	Level string `toml:"level" mapstructure:"level" validate:"required,loglevel"`
	// Format is console or json.
	Format string `toml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// RPCConfig is the node connection configuration.
type RPCConfig struct {
	// URL is the node endpoint, ws://, wss://, http:// or https://.
	URL string `toml:"url" mapstructure:"url" validate:"required,url,endpoint"`
	// Timeout bounds each call without a context deadline.
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// ReadLimit is the maximum websocket message size in bytes, zero for no limit.
	ReadLimit int64 `toml:"read_limit" mapstructure:"read_limit" validate:"gte=0"`
}

// ChainConfig holds chain related settings.
type ChainConfig struct {
	// SS58Format is the address format of 32-byte accounts,
	// AutoSS58Format to read it from the chain properties.
	SS58Format int `toml:"ss58_format" mapstructure:"ss58_format" validate:"gte=-1,lte=16383"`
	// Cache is the metadata cache directory, empty for an in memory cache.
	Cache string `toml:"cache" mapstructure:"cache"`
	// Tip is added to every signed extrinsic, in the smallest unit.
	Tip uint64 `toml:"tip" mapstructure:"tip"`
	// EraPeriod is the mortality period of signed extrinsics, zero for immortal ones.
	EraPeriod uint64 `toml:"era_period" mapstructure:"era_period" validate:"omitempty,min=4,max=65536"`
}

// AuthorConfig configures extrinsic submission.
type AuthorConfig struct {
	WaitForInclusion    bool `toml:"wait_for_inclusion" mapstructure:"wait_for_inclusion"`
	WaitForFinalization bool `toml:"wait_for_finalization" mapstructure:"wait_for_finalization"`
	// FinalizationTimeout bounds the wait for finalization, zero for no bound.
	FinalizationTimeout time.Duration `toml:"finalization_timeout" mapstructure:"finalization_timeout" validate:"gte=0"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Address string `toml:"address" mapstructure:"address" validate:"omitempty,hostname_port"`
}

// Default returns the default configuration, connecting to a local node.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		RPC: RPCConfig{
			URL:       "ws://127.0.0.1:9944",
			Timeout:   30 * time.Second,
			ReadLimit: 32 << 20,
		},
		Chain: ChainConfig{
			SS58Format: AutoSS58Format,
			EraPeriod:  64,
		},
		Author: AuthorConfig{
			WaitForInclusion:    true,
			FinalizationTimeout: 2 * time.Minute,
		},
		Metrics: MetricsConfig{
			Address: "localhost:9876",
		},
	}
}

// Load reads the configuration file at path, when not empty, over the
// defaults. Environment variables take precedence over the file, and the
// overrides, keyed by dotted names such as rpc.url, over both.
func Load(path string, overrides map[string]any) (cfg Config, err error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		err = v.ReadInConfig()
		if err != nil {
			return cfg, fmt.Errorf("reading configuration file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("rpc.url", cfg.RPC.URL)
	v.SetDefault("rpc.timeout", cfg.RPC.Timeout)
	v.SetDefault("rpc.read_limit", cfg.RPC.ReadLimit)
	v.SetDefault("chain.ss58_format", cfg.Chain.SS58Format)
	v.SetDefault("chain.cache", cfg.Chain.Cache)
	v.SetDefault("chain.tip", cfg.Chain.Tip)
	v.SetDefault("chain.era_period", cfg.Chain.EraPeriod)
	v.SetDefault("author.wait_for_inclusion", cfg.Author.WaitForInclusion)
	v.SetDefault("author.wait_for_finalization", cfg.Author.WaitForFinalization)
	v.SetDefault("author.finalization_timeout", cfg.Author.FinalizationTimeout)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.address", cfg.Metrics.Address)
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	validate := validator.New()
	mustRegister(validate, "loglevel", func(fl validator.FieldLevel) bool {
		_, err := log.ParseLevel(fl.Field().String())
		return err == nil
	})
	mustRegister(validate, "endpoint", func(fl validator.FieldLevel) bool {
		scheme, _, found := strings.Cut(fl.Field().String(), "://")
		if !found {
			return false
		}
		switch scheme {
		case "ws", "wss", "http", "https":
			return true
		}
		return false
	})

	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	err := validate.RegisterValidation(tag, fn)
	if err != nil {
		panic(err)
	}
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.Info
	}
	return level
}

// LogFormat returns the parsed log format.
func (c Config) LogFormat() log.Format {
	format, err := log.ParseFormat(c.Log.Format)
	if err != nil {
		return log.FormatConsole
	}
	return format
}

// Export writes the configuration as a TOML file at path.
func Export(cfg Config, path string) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	err = os.WriteFile(path, raw, 0600)
	if err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}
