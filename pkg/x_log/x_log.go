// Package x_log wraps zerolog with styled console output and rotated log files.
package x_log

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

var ErrInvalidLevelValue = errors.New("invalid_level_value")

var (
	mu      sync.Mutex
	logFile io.Closer
)

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return InfoLevel, nil
	case "trace", "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, ErrInvalidLevelValue
	}
}

//
// ---------- Init ----------

// InitWithConfig replaces the global logger. module, when set, is attached
// to every entry.
func InitWithConfig(cfg *Config, module string) {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.Complete()
	}
	cfg = &c

	level, err := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	w := buildWriter(cfg)
	mu.Unlock()

	ctx := zerolog.New(w).With().Timestamp()
	if module != "" {
		ctx = ctx.Str("module", module)
	}
	log.Logger = ctx.Logger()

	if err != nil {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
	}
}

func buildWriter(cfg *Config) io.Writer {
	var writers []io.Writer

	if cfg.ToConsole {
		if !cfg.JSON && isTerminal(os.Stdout) {
			styles := DefaultStylesByName(cfg.Style)
			styles.Out = os.Stdout
			writers = append(writers, ConsoleWriterWithStyles(styles))
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	if cfg.ToFile {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		logFile = rotator
		if cfg.ColoredFile {
			styles := DefaultStylesByName(cfg.Style)
			styles.Out = rotator
			writers = append(writers, ConsoleWriterWithStyles(styles))
		} else {
			writers = append(writers, rotator)
		}
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return zerolog.MultiLevelWriter(writers...)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

//
// ---------- Scoped loggers ----------

// New returns a child of the global logger tagged with module.
func New(module string) zerolog.Logger {
	return log.Logger.With().Str("module", module).Logger()
}

func Debug() *zerolog.Event { return log.Logger.Debug() }
func Info() *zerolog.Event  { return log.Logger.Info() }
func Warn() *zerolog.Event  { return log.Logger.Warn() }
func Error() *zerolog.Event { return log.Logger.Error() }
