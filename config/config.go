// Package config loads shopbot settings from defaults, a config file and
// SHOP_* environment variables through viper.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/zggff/shopbot/pkg/x_log"
)

const EnvPrefix = "SHOP"

var ErrConfigValidation = errors.New("invalid config")

// Config holds all runtime settings of the shop service and CLI.
type Config struct {
	Catalogue CatalogueConfig `json:"catalogue" mapstructure:"catalogue"`
	Bot       BotConfig       `json:"bot" mapstructure:"bot"`
	HTTP      HTTPConfig      `json:"http" mapstructure:"http"`
	NATS      NATSConfig      `json:"nats" mapstructure:"nats"`
	Log       x_log.Config    `json:"log" mapstructure:"log"`
}

type CatalogueConfig struct {
	File   string `json:"file" mapstructure:"file"`
	Format string `json:"format" mapstructure:"format"` // empty: guessed from the extension
	Watch  bool   `json:"watch" mapstructure:"watch"`
}

type BotConfig struct {
	Name     string `json:"name" mapstructure:"name"`
	PageSize int    `json:"page_size" mapstructure:"page_size"`
}

type HTTPConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

type NATSConfig struct {
	URL           string `json:"url" mapstructure:"url"`
	Embedded      bool   `json:"embedded" mapstructure:"embedded"`
	Host          string `json:"host" mapstructure:"host"`
	Port          int    `json:"port" mapstructure:"port"`
	SubjectPrefix string `json:"subject_prefix" mapstructure:"subject_prefix"`
	QueueGroup    string `json:"queue_group" mapstructure:"queue_group"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Catalogue: CatalogueConfig{
			File: "catalogue.json",
		},
		Bot: BotConfig{
			Name:     "zggff bot",
			PageSize: 3,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			Host:          "127.0.0.1",
			Port:          4222,
			SubjectPrefix: "shop",
			QueueGroup:    "shop",
		},
		Log: x_log.DefaultConfig(),
	}
}

// SetDefaults registers every key of Default on v so that AutomaticEnv and
// Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("catalogue.file", d.Catalogue.File)
	v.SetDefault("catalogue.format", d.Catalogue.Format)
	v.SetDefault("catalogue.watch", d.Catalogue.Watch)

	v.SetDefault("bot.name", d.Bot.Name)
	v.SetDefault("bot.page_size", d.Bot.PageSize)

	v.SetDefault("http.enabled", d.HTTP.Enabled)
	v.SetDefault("http.addr", d.HTTP.Addr)

	v.SetDefault("nats.url", d.NATS.URL)
	v.SetDefault("nats.embedded", d.NATS.Embedded)
	v.SetDefault("nats.host", d.NATS.Host)
	v.SetDefault("nats.port", d.NATS.Port)
	v.SetDefault("nats.subject_prefix", d.NATS.SubjectPrefix)
	v.SetDefault("nats.queue_group", d.NATS.QueueGroup)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.log_file", d.Log.LogFile)
	v.SetDefault("log.to_console", d.Log.ToConsole)
	v.SetDefault("log.to_file", d.Log.ToFile)
	v.SetDefault("log.colored_file", d.Log.ColoredFile)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.style", d.Log.Style)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)
}

// BindEnv enables SHOP_<SECTION>_<KEY> variables and the legacy INPUT_FILE
// variable for the catalogue path.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("catalogue.file", EnvPrefix+"_CATALOGUE_FILE", "INPUT_FILE")
}

// Load unmarshals v into a Config. Defaults already registered on v are
// kept; a nil v means the global viper instance with the built-in defaults.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
		SetDefaults(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks config for required values and reports all problems at once.
func (cfg *Config) Validate() error {
	var missing []string
	if cfg.Catalogue.File == "" {
		missing = append(missing, "catalogue.file")
	}
	if cfg.Bot.PageSize <= 0 {
		missing = append(missing, fmt.Sprintf("bot.page_size(%d)", cfg.Bot.PageSize))
	}
	if cfg.HTTP.Enabled && cfg.HTTP.Addr == "" {
		missing = append(missing, "http.addr")
	}
	if cfg.NATS.Embedded {
		if cfg.NATS.Port <= 0 || cfg.NATS.Port > 65535 {
			missing = append(missing, fmt.Sprintf("nats.port(%d)", cfg.NATS.Port))
		}
	} else if cfg.NATS.URL == "" {
		missing = append(missing, "nats.url")
	}
	if cfg.NATS.SubjectPrefix == "" {
		missing = append(missing, "nats.subject_prefix")
	}
	if _, err := x_log.ParseLevel(cfg.Log.Level); err != nil {
		missing = append(missing, fmt.Sprintf("log.level(%s)", cfg.Log.Level))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigValidation, strings.Join(missing, ", "))
	}
	return nil
}

func (cfg *Config) String() string {
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}

func (cfg *Config) Dump(w io.Writer) {
	data, _ := json.MarshalIndent(cfg, "", "  ")
	_, _ = w.Write(data)
}
