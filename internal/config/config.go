// Package config loads backend and logging settings from an optional file,
// NATIVEKEYS_* environment variables and defaults, in increasing order of
// precedence: defaults, file, environment, bound flags.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/internal/log"
)

// EnvPrefix is prepended to every environment variable, e.g. NATIVEKEYS_CURVE
// or NATIVEKEYS_LOG_LEVEL.
const EnvPrefix = "NATIVEKEYS"

// Config selects the crypto backends and the logger.
type Config struct {
	Curve string     `mapstructure:"curve" validate:"required,curvebackend"`
	Hash  string     `mapstructure:"hash" validate:"required,hashbackend"`
	Log   log.Config `mapstructure:"log"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("curvebackend", func(fl validator.FieldLevel) bool {
		_, err := curves.Lookup(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hashbackend", func(fl validator.FieldLevel) bool {
		_, err := hashes.Lookup(fl.Field().String())
		return err == nil
	})
	return v
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Curve: curves.DefaultBackend,
		Hash:  hashes.DefaultBackend,
		Log:   log.DefaultConfig(),
	}
}

// Validate checks backend names against the registries and the log settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// New returns a viper instance carrying the defaults and environment
// binding. Callers may bind command line flags to it before Read.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("curve", d.Curve)
	v.SetDefault("hash", d.Hash)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read merges the optional config file at path into v and decodes the
// result. An empty path skips the file.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads path, the environment and the defaults.
func Load(path string) (*Config, error) {
	return Read(New(), path)
}
