package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Option is a functional viper initializer.
type Option func(*viper.Viper) error

// New builds a fresh viper instance from opts and loads a validated Config.
func New(opts ...Option) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	cfg, err := Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithDefaults overrides built-in defaults by dotted key.
func WithDefaults(defaults map[string]any) Option {
	return func(v *viper.Viper) error {
		for k, val := range defaults {
			v.SetDefault(strings.ToLower(k), val)
		}
		return nil
	}
}

// FromFile reads a yaml, json or toml config file. ${VAR} references are
// expanded before parsing.
func FromFile(path string) Option {
	return func(v *viper.Viper) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			ext = "yaml"
		}
		v.SetConfigType(ext)
		if err := v.ReadConfig(bytes.NewReader(ReplaceEnvVars(data))); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
}

// FromEnv enables SHOP_* and INPUT_FILE overrides.
func FromEnv() Option {
	return func(v *viper.Viper) error {
		BindEnv(v)
		return nil
	}
}

// ReplaceEnvVars replaces ${ENV_VAR} in raw config text.
func ReplaceEnvVars(data []byte) []byte {
	return []byte(os.Expand(string(data), os.Getenv))
}
