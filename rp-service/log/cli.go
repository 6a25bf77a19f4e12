package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
)

const (
	LevelFlagName  = "log.level"
	FormatFlagName = "log.format"
	ColorFlagName  = "log.color"
)

type FormatType string

const (
	FormatText     FormatType = "text"
	FormatTerminal FormatType = "terminal"
	FormatLogFmt   FormatType = "logfmt"
	FormatJSON     FormatType = "json"
)

var formatTypes = []FormatType{FormatText, FormatTerminal, FormatLogFmt, FormatJSON}

func (ft FormatType) String() string {
	return string(ft)
}

func parseFormat(s string) (FormatType, error) {
	for _, ft := range formatTypes {
		if string(ft) == s {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unrecognized log-format: %q, expected one of %v", s, formatTypes)
}

// ParseLevel accepts the go-ethereum level names, case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit", "critical":
		return log.LevelCrit, nil
	}
	return 0, fmt.Errorf("unknown log level: %q", s)
}

func CLIFlags(envPrefix string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     LevelFlagName,
			Category: "Logging",
			Usage:    "The lowest log level that will be output",
			Value:    "info",
			EnvVars:  rpservice.PrefixEnvVar(envPrefix, "LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:     FormatFlagName,
			Category: "Logging",
			Usage:    fmt.Sprintf("Format the log output. Supported formats: %v", formatTypes),
			Value:    string(FormatText),
			EnvVars:  rpservice.PrefixEnvVar(envPrefix, "LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:     ColorFlagName,
			Category: "Logging",
			Usage:    "Color the log output if in terminal mode",
			EnvVars:  rpservice.PrefixEnvVar(envPrefix, "LOG_COLOR"),
		},
	}
}

type CLIConfig struct {
	Level  slog.Level
	Color  bool
	Format FormatType
}

func (cfg CLIConfig) Check() error {
	if _, err := parseFormat(string(cfg.Format)); err != nil {
		return err
	}
	return nil
}

// DefaultCLIConfig colors terminal output only when stdout is a terminal.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Level:  log.LevelInfo,
		Format: FormatText,
		Color:  isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb",
	}
}

func ReadCLIConfig(ctx *cli.Context) (CLIConfig, error) {
	cfg := DefaultCLIConfig()
	level, err := ParseLevel(ctx.String(LevelFlagName))
	if err != nil {
		return cfg, err
	}
	format, err := parseFormat(ctx.String(FormatFlagName))
	if err != nil {
		return cfg, err
	}
	cfg.Level = level
	cfg.Format = format
	if ctx.IsSet(ColorFlagName) {
		cfg.Color = ctx.Bool(ColorFlagName)
	}
	return cfg, nil
}

func NewLogHandler(wr io.Writer, cfg CLIConfig) slog.Handler {
	switch cfg.Format {
	case FormatJSON:
		return JSONMsHandlerWithLevel(wr, cfg.Level)
	case FormatLogFmt:
		return LogfmtMsHandlerWithLevel(wr, cfg.Level)
	case FormatTerminal:
		return log.NewTerminalHandlerWithLevel(wr, cfg.Level, cfg.Color)
	default:
		return log.NewTerminalHandlerWithLevel(wr, cfg.Level, false)
	}
}

func NewLogger(wr io.Writer, cfg CLIConfig) log.Logger {
	return log.NewLogger(NewLogHandler(wr, cfg))
}

// SetGlobalLogHandler routes the go-ethereum root logger, and with it every
// package-level log call, through h.
func SetGlobalLogHandler(h slog.Handler) {
	log.SetDefault(log.NewLogger(h))
}

// SetupDefaults installs a default handler until the CLI flags have been read.
func SetupDefaults() {
	SetGlobalLogHandler(NewLogHandler(os.Stdout, DefaultCLIConfig()))
}
