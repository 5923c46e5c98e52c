package x_log

import "strings"

// Config is the "log" section of the shop configuration.
type Config struct {
	Level       string `json:"level" mapstructure:"level"`
	LogFile     string `json:"log_file" mapstructure:"log_file"`
	ToConsole   bool   `json:"to_console" mapstructure:"to_console"`
	ToFile      bool   `json:"to_file" mapstructure:"to_file"`
	ColoredFile bool   `json:"colored_file" mapstructure:"colored_file"`
	JSON        bool   `json:"json" mapstructure:"json"` // plain JSON on the console even on a TTY
	Style       string `json:"style" mapstructure:"style"`
	MaxSize     int    `json:"max_size" mapstructure:"max_size"`       // MB
	MaxBackups  int    `json:"max_backups" mapstructure:"max_backups"` // rotated files
	MaxAge      int    `json:"max_age" mapstructure:"max_age"`         // days
	Compress    bool   `json:"compress" mapstructure:"compress"`
}

var defaultConfig = Config{
	Level:      "info",
	LogFile:    "logs/shopbot.log",
	ToConsole:  true,
	Style:      "dark",
	MaxSize:    10,
	MaxBackups: 5,
	MaxAge:     7,
	Compress:   true,
}

// DefaultConfig returns a copy of the built-in configuration.
func DefaultConfig() Config {
	return defaultConfig
}

// Complete returns c with empty or non-positive fields taken from the
// defaults. Booleans are left alone; an unknown style falls back to dark.
func (c Config) Complete() Config {
	if c.Level == "" {
		c.Level = defaultConfig.Level
	}
	if c.LogFile == "" {
		c.LogFile = defaultConfig.LogFile
	}
	switch strings.ToLower(c.Style) {
	case "dark", "light":
	default:
		c.Style = defaultConfig.Style
	}
	if c.MaxSize <= 0 {
		c.MaxSize = defaultConfig.MaxSize
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = defaultConfig.MaxBackups
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultConfig.MaxAge
	}
	return c
}
