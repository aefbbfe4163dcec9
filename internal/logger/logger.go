package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

const (
	// EnvRuntime selects console ("dev", "development" or empty) or JSON output
	EnvRuntime = "NM_RUNTIME_ENV"
	// EnvLevel overrides the global log level (trace, debug, info, warn, error)
	EnvLevel = "NM_LOG_LEVEL"
)

func colorize(s interface{}, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// New creates a logger based on NM_RUNTIME_ENV and applies NM_LOG_LEVEL
func New() zerolog.Logger {
	applyLevel(os.Getenv(EnvLevel))

	if IsDevelopment(os.Getenv(EnvRuntime)) {
		return NewDevelopment(os.Stderr)
	}
	return NewProduction(os.Stderr)
}

// IsDevelopment reports whether a runtime env name means console logging
func IsDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development":
		return true
	}
	return false
}

func applyLevel(level string) {
	if level == "" {
		return
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
		zerolog.SetGlobalLevel(l)
	}
}

// NewDevelopment creates a console logger with coloured levels
func NewDevelopment(out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		FormatLevel: func(i interface{}) string {
			ll, ok := i.(string)
			if !ok {
				return strings.ToUpper(fmt.Sprintf("%s", i))
			}
			switch ll {
			case "trace":
				return colorize("TRC", colorMagenta)
			case "debug":
				return colorize("DBG", colorYellow)
			case "info":
				return colorize("INF", colorGreen)
			case "warn":
				return colorize("WRN", colorRed)
			case "error", "fatal", "panic":
				return colorize(strings.ToUpper(ll)[0:3], colorRed)
			}
			if len(ll) >= 3 {
				return colorize(strings.ToUpper(ll)[0:3], colorBold)
			}
			return colorize(strings.ToUpper(ll), colorBold)
		},
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// NewProduction creates a JSON logger with UNIX timestamps
func NewProduction(out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(out).With().Timestamp().Logger()
}

// Mask hides all but the first four characters of a secret.
// Short secrets are replaced entirely.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "***"
	}
	return secret[:4] + "***"
}
