package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the command configuration. Environment variables set the
// defaults; flags override them.
type Config struct {
	ContentDir string `env:"DUELCORE_CONTENT" envDefault:"content/duel"`
	SetupFile  string `env:"DUELCORE_SETUP"` // default: <content>/setup.yaml
	SaveDir    string `env:"DUELCORE_SAVE_DIR"`
	Seed       int64  `env:"DUELCORE_SEED"` // 0 keeps the setup's seed
	Plain      bool   `env:"DUELCORE_PLAIN"`
	Trace      bool   `env:"DUELCORE_TRACE"`
	LogLevel   string `env:"DUELCORE_LOG_LEVEL" envDefault:"warn"`
	LogFile    string `env:"DUELCORE_LOG_FILE"`

	Script  string
	Version bool
}

// parseConfig loads environment defaults into a Config and then parses
// args. A positional argument names the content directory.
func parseConfig(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("duelcore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: duelcore [flags] [content_directory]")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.SetupFile, "setup", cfg.SetupFile, "battle setup YAML (default <content>/setup.yaml)")
	fs.StringVar(&cfg.SaveDir, "saves", cfg.SaveDir, "save directory (default ~/.duelcore/saves)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "override the setup seed")
	fs.BoolVar(&cfg.Plain, "plain", cfg.Plain, "use the line-based console instead of the TUI")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "print fired events after each action")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.StringVar(&cfg.Script, "script", "", "play commands from a file (implies --plain)")
	fs.BoolVar(&cfg.Version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.ContentDir = fs.Arg(0)
	default:
		return cfg, errors.New("expected at most one content directory")
	}
	if cfg.SetupFile == "" {
		cfg.SetupFile = filepath.Join(cfg.ContentDir, "setup.yaml")
	}
	if cfg.Script != "" {
		cfg.Plain = true
	}
	return cfg, nil
}

// newLogger builds the process logger. Without a log file the TUI gets a
// no-op logger so nothing writes over the alternate screen.
func newLogger(cfg Config, tui bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if cfg.LogFile == "" && tui {
		return zap.NewNop(), nil
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	if cfg.LogFile != "" {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.OutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}
