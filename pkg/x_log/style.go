package x_log

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

//
// ---------- Palette ----------

const (
	ColorTeal    = "#3ddbd9"
	ColorBlue    = "#4589ff"
	ColorSky     = "#78a9ff"
	ColorNavy    = "#0043ce"
	ColorRed     = "#da1e28"
	ColorScarlet = "#ff0000"
	ColorOrange  = "#ff832b"
	ColorGray    = "#8d8d8d"
	ColorPaper   = "#f4f4f4"
	ColorInk     = "#262626"
)

// Styles is a console theme for log lines.
type Styles struct {
	Out             io.Writer
	Timestamp       lipgloss.Style
	Message         lipgloss.Style
	Levels          map[Level]lipgloss.Style
	Keys            map[string]lipgloss.Style
	DefaultKeyStyle lipgloss.Style
}

// DefaultStylesByName returns the "light" theme or, for anything else, "dark".
func DefaultStylesByName(name string) *Styles {
	if strings.EqualFold(name, "light") {
		return DefaultStylesLight()
	}
	return DefaultStylesDark()
}

func DefaultStylesDark() *Styles {
	key := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSky))
	return &Styles{
		Timestamp:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Message:         lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPaper)),
		DefaultKeyStyle: key,
		Levels:          levelBadges(),
		Keys: map[string]lipgloss.Style{
			"address": key.Bold(true),
			"chat":    key,
			"subject": key,
			"module":  key,
			"err":     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		},
	}
}

func DefaultStylesLight() *Styles {
	key := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorNavy))
	return &Styles{
		Timestamp:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Message:         lipgloss.NewStyle().Foreground(lipgloss.Color(ColorInk)),
		DefaultKeyStyle: key,
		Levels:          levelBadges(),
		Keys: map[string]lipgloss.Style{
			"address": key.Bold(true),
			"chat":    key,
			"subject": key,
			"module":  key,
			"err":     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		},
	}
}

func levelBadges() map[Level]lipgloss.Style {
	badge := func(bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color(bg)).
			Padding(0, 1)
	}
	return map[Level]lipgloss.Style{
		DebugLevel: badge(ColorTeal),
		InfoLevel:  badge(ColorBlue),
		WarnLevel:  badge(ColorOrange),
		ErrorLevel: badge(ColorRed),
		FatalLevel: badge(ColorScarlet),
	}
}

//
// ---------- Console writer ----------

// ConsoleWriterWithStyles builds a zerolog.ConsoleWriter painted with styles.
// Missing styles fall back to unstyled output.
func ConsoleWriterWithStyles(styles *Styles) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        styles.Out,
		TimeFormat: "01-02 15:04:05",

		FormatLevel: func(i any) string {
			if i == nil {
				return "???"
			}
			name := strings.ToLower(fmt.Sprint(i))
			lvl, err := zerolog.ParseLevel(name)
			short := strings.ToUpper(name)
			if len(short) > 3 {
				short = short[:3]
			}
			if style, ok := styles.Levels[lvl]; ok && err == nil {
				return style.Render(short)
			}
			return short
		},

		FormatTimestamp: func(i any) string {
			return styles.Timestamp.Render(fmt.Sprintf("[%s]", i))
		},

		FormatFieldName: func(i any) string {
			key := fmt.Sprint(i)
			style, ok := styles.Keys[key]
			if !ok {
				style = styles.DefaultKeyStyle
			}
			return style.Render(key) + "="
		},

		FormatMessage: func(i any) string {
			if i == nil {
				return ""
			}
			return styles.Message.Render(fmt.Sprint(i))
		},
	}
}
