package ulogger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
)

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold = 1
)

// Logger is the leveled logger contract every service in this node depends
// on, never zerolog or gocore directly, so the backend stays swappable the
// way the teacher's ulogger.Logger does.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

type ZLoggerWrapper struct {
	zerolog.Logger
	service string
}

// New returns a Logger for service, backed by zerolog unless the
// "logger" config key says otherwise, mirroring the teacher's
// util.NewLogger dispatch.
func New(service string, logLevel ...string) Logger {
	useLogger, _ := gocore.Config().Get("logger", "zerolog")
	switch useLogger {
	case "gocore":
		if len(logLevel) > 0 {
			return gocore.Log(service, gocore.NewLogLevelFromString(logLevel[0]))
		}
		return gocore.Log(service)
	default:
		return NewZeroLogger(service, logLevel...)
	}
}

func NewZeroLogger(service string, logLevel ...string) *ZLoggerWrapper {
	if service == "" {
		service = "gophercoin"
	}

	var z *ZLoggerWrapper
	if gocore.Config().GetBool("pretty_logs", true) {
		z = prettyZeroLogger(service)
	} else {
		z = &ZLoggerWrapper{
			zerolog.New(os.Stdout).With().
				CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2).
				Timestamp().
				Logger(),
			service,
		}
	}

	if len(logLevel) > 0 {
		setZerologLogLevel(logLevel[0], z)
	}

	return z
}

func setZerologLogLevel(logLevel string, z *ZLoggerWrapper) {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		z.Logger = z.Logger.Level(zerolog.DebugLevel)
	case "WARN":
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	case "ERROR":
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	case "FATAL":
		z.Logger = z.Logger.Level(zerolog.FatalLevel)
	default:
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	}
}

func prettyZeroLogger(service string) *ZLoggerWrapper {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	output.FormatTimestamp = func(i interface{}) string {
		parsed, _ := time.Parse(time.RFC3339, i.(string))
		return parsed.Format("15:04:05.000")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-6s", i))
		switch i {
		case "debug":
			l = colorize(l, colorBlue)
		case "info":
			l = colorize(l, colorGreen)
		case "warn":
			l = colorize(l, colorYellow)
		case "error", "fatal", "panic":
			l = colorize(l, colorRed)
		default:
			l = colorize(l, colorWhite)
		}
		return fmt.Sprintf("| %s|", l)
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-10s| %s", service, i)
	}

	output.FormatCaller = func(i interface{}) string {
		c, _ := i.(string)
		if c == "" {
			return c
		}
		if cwd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(cwd, c); err == nil {
				c = rel
			}
		}
		return colorize(c, colorBold)
	}

	return &ZLoggerWrapper{
		zerolog.New(output).With().
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
			Timestamp().
			Logger(),
		service,
	}
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) { z.Logger.Debug().Msgf(format, args...) }
func (z *ZLoggerWrapper) Infof(format string, args ...interface{})  { z.Logger.Info().Msgf(format, args...) }
func (z *ZLoggerWrapper) Warnf(format string, args ...interface{})  { z.Logger.Warn().Msgf(format, args...) }
func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) { z.Logger.Error().Msgf(format, args...) }
func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) { z.Logger.Fatal().Msgf(format, args...) }

func colorize(s string, c int) string {
	if os.Getenv("NO_COLOR") != "" || c == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}

// TestLogger returns a Logger that writes nothing, for use in unit tests
// that need to satisfy the Logger dependency without cluttering output.
func TestLogger() Logger {
	return &ZLoggerWrapper{zerolog.Nop(), "test"}
}
