package main

import (
	"errors"
	"flag"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.ContentDir != "content/duel" {
		t.Errorf("ContentDir = %q, want content/duel", cfg.ContentDir)
	}
	if want := filepath.Join("content/duel", "setup.yaml"); cfg.SetupFile != want {
		t.Errorf("SetupFile = %q, want %q", cfg.SetupFile, want)
	}
	if cfg.LogLevel != "warn" || cfg.Plain || cfg.Seed != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("DUELCORE_CONTENT", "packs/arena")
	t.Setenv("DUELCORE_SEED", "11")
	t.Setenv("DUELCORE_TRACE", "true")

	cfg, err := parseConfig([]string{"--seed", "99"}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.ContentDir != "packs/arena" {
		t.Errorf("ContentDir = %q, want packs/arena", cfg.ContentDir)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want the flag to win with 99", cfg.Seed)
	}
	if !cfg.Trace {
		t.Error("Trace should come from the environment")
	}
	if want := filepath.Join("packs/arena", "setup.yaml"); cfg.SetupFile != want {
		t.Errorf("SetupFile = %q, want %q", cfg.SetupFile, want)
	}
}

func TestParseConfig_Positional(t *testing.T) {
	cfg, err := parseConfig([]string{"--setup", "s.yaml", "--script", "play.txt", "mypack"}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.ContentDir != "mypack" || cfg.SetupFile != "s.yaml" {
		t.Errorf("ContentDir = %q, SetupFile = %q", cfg.ContentDir, cfg.SetupFile)
	}
	if !cfg.Plain {
		t.Error("a script should force plain mode")
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"two dirs", []string{"a", "b"}, nil, "at most one content directory"},
		{"unknown flag", []string{"--colour"}, nil, "colour"},
		{"bad env seed", nil, map[string]string{"DUELCORE_SEED": "lots"}, "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parseConfig(tt.args, io.Discard)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	_, err := parseConfig([]string{"-h"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want flag.ErrHelp", err)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(Config{LogLevel: "loud"}, false); err == nil {
		t.Error("expected an error for an unknown level")
	}
	log, err := newLogger(Config{LogLevel: "debug"}, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("the TUI without a log file should get a no-op logger")
	}
	log, err = newLogger(Config{LogLevel: "info", LogFile: filepath.Join(t.TempDir(), "duel.log")}, true)
	if err != nil {
		t.Fatalf("newLogger with file: %v", err)
	}
	if !log.Core().Enabled(0) {
		t.Error("info should be enabled")
	}
}

func TestTitle(t *testing.T) {
	if got := title("Arena", "1.0", "Nat"); got != "Arena v1.0 by Nat" {
		t.Errorf("title = %q", got)
	}
	if got := title("Arena", "", ""); got != "Arena" {
		t.Errorf("title = %q", got)
	}
}
