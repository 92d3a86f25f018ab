package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deixis/tomorin"
	"github.com/deixis/tomorin/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != tomorin.Version {
		t.Errorf("version output = %q, want %q", out, tomorin.Version)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomorin.yaml")
	if _, err := execute(t, "init", "--config", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != config.Example {
		t.Error("init did not write the example configuration")
	}

	if _, err := execute(t, "init", "--config", path); err == nil {
		t.Error("second init should refuse to overwrite")
	}
}

func TestRun_RequiresToken(t *testing.T) {
	t.Setenv(config.TokenEnv, "")
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := execute(t, "run", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "telegram.token") {
		t.Errorf("run error = %v, want missing token", err)
	}
}

func TestMCP_Instructions(t *testing.T) {
	out, err := execute(t, "mcp", "--instructions")
	if err != nil {
		t.Fatalf("mcp --instructions: %v", err)
	}
	if !strings.Contains(out, "shell") || !strings.Contains(out, "eval") {
		t.Errorf("instructions = %q", out)
	}
}

func TestNewRunner_FromConfig(t *testing.T) {
	cfg := &config.Config{Shell: config.ShellConfig{Prompt: "$ ", RawMaxLines: 5, RawMaxChars: -1, RawTimeout: "2s"}}
	r := newRunner(cfg)
	if r.Prompt != "$ " || r.Window.MaxLines != 5 || r.Window.MaxChars != 0 {
		t.Errorf("runner = %+v", r)
	}
	if r.Timeout.String() != "2s" {
		t.Errorf("Timeout = %v, want 2s", r.Timeout)
	}
}
