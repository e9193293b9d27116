// Duelcore is a deterministic, data-driven engine for turn-based 1v1
// tactical battles.
// Usage: duelcore [--plain] [--setup <file>] [--seed <n>] [--script <file>] [content_directory]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/cli"
	"github.com/nathoo/duelcore/engine"
	"github.com/nathoo/duelcore/loader"
	"github.com/nathoo/duelcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args, os.Stderr)
	if err != nil {
		return err
	}
	if cfg.Version {
		fmt.Printf("duelcore %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	useTUI := !cfg.Plain && isTerminal()
	log, err := newLogger(cfg, useTUI)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	// Load and compile Lua battle content.
	defs, err := loader.Load(cfg.ContentDir, log)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	setup, err := loader.LoadSetup(cfg.SetupFile)
	if err != nil {
		return err
	}
	if cfg.Seed != 0 {
		setup.Seed = cfg.Seed
	}

	eng := engine.New(log)
	b, err := eng.NewBattle(defs, setup)
	if err != nil {
		return fmt.Errorf("building battle: %w", err)
	}
	log.Info("battle ready",
		zap.String("map", b.Map.ID),
		zap.Int("pieces", len(b.Pieces)),
		zap.Int("rules", len(b.Rules)),
		zap.Int64("seed", setup.Seed))

	s := engine.NewSession(eng, defs, b)
	s.Content = cfg.ContentDir
	s.Seed = setup.Seed

	if !useTUI {
		c := cli.New(s)
		c.Trace = cfg.Trace
		if cfg.SaveDir != "" {
			c.SaveDir = cfg.SaveDir
		}

		// Script mode: read commands from a file and echo them.
		if cfg.Script != "" {
			f, err := os.Open(cfg.Script)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			c.In = f
			c.EchoInput = true
		}

		fmt.Printf("%s\n\n", title(defs.Game.Title, defs.Game.Version, defs.Game.Author))
		c.Run()
		return nil
	}

	return tui.Run(s, tui.Options{SaveDir: cfg.SaveDir, Trace: cfg.Trace})
}

func title(name, version, author string) string {
	if version != "" {
		name += " v" + version
	}
	if author != "" {
		name += " by " + author
	}
	return name
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
