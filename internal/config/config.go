// Package config loads and validates the optional tomorin YAML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when no --config flag is given.
const DefaultPath = "tomorin.yaml"

// TokenEnv overrides telegram.token when set.
const TokenEnv = "TOMORIN_TELEGRAM_TOKEN"

// Default values for the shell and playground settings.
const (
	DefaultPrompt         = "❯ "
	DefaultMaxLines       = 30
	DefaultMaxChars       = 3800
	DefaultInitialDelay   = 800 * time.Millisecond
	DefaultInterval       = time.Second
	DefaultPollTimeout    = 60 * time.Second
	DefaultPlaygroundURL  = "https://play.rust-lang.org/execute"
	DefaultChannel        = "nightly"
	DefaultEdition        = "2024"
	DefaultPlaygroundWait = 30 * time.Second
)

// Config holds the parsed tomorin configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Shell      ShellConfig      `yaml:"shell"`
	Playground PlaygroundConfig `yaml:"playground"`
	Log        LogConfig        `yaml:"log"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	Token          string `yaml:"token"`
	OwnerID        int64  `yaml:"owner_id"`     // the only account whose messages are commands
	RawPollTimeout string `yaml:"poll_timeout"` // long-poll timeout, e.g. "60s"
}

// ShellConfig controls how shell commands are run and rendered.
type ShellConfig struct {
	Prompt          string `yaml:"prompt"`
	RawTimeout      string `yaml:"timeout"`   // e.g. "10m"; empty means no limit
	RawMaxLines     int    `yaml:"max_lines"` // lines kept in the render window
	RawMaxChars     int    `yaml:"max_chars"` // characters kept in the render window, -1 disables
	RawInitialDelay string `yaml:"initial_delay"`
	RawInterval     string `yaml:"interval"`
}

// PlaygroundConfig controls the remote Rust execution service.
type PlaygroundConfig struct {
	URL        string `yaml:"url"`
	Channel    string `yaml:"channel"` // stable, beta or nightly
	Edition    string `yaml:"edition"`
	RawTimeout string `yaml:"timeout"`
}

// LogConfig controls process-wide logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// parseDuration returns the parsed duration or def when raw is empty or invalid.
func parseDuration(raw string, def time.Duration) time.Duration {
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

// PollTimeout returns the long-poll timeout or the default.
func (c *TelegramConfig) PollTimeout() time.Duration {
	return parseDuration(c.RawPollTimeout, DefaultPollTimeout)
}

// PromptString returns the prompt echoed before a command.
func (c *ShellConfig) PromptString() string {
	if c.Prompt != "" {
		return c.Prompt
	}
	return DefaultPrompt
}

// Timeout returns the configured command timeout. Zero means no limit.
func (c *ShellConfig) Timeout() time.Duration {
	return parseDuration(c.RawTimeout, 0)
}

// MaxLines returns the configured render window height or the default.
func (c *ShellConfig) MaxLines() int {
	if c.RawMaxLines > 0 {
		return c.RawMaxLines
	}
	return DefaultMaxLines
}

// MaxChars returns the configured render window character budget.
// A negative setting disables the budget and yields 0.
func (c *ShellConfig) MaxChars() int {
	switch {
	case c.RawMaxChars < 0:
		return 0
	case c.RawMaxChars > 0:
		return c.RawMaxChars
	}
	return DefaultMaxChars
}

// InitialDelay returns the delay before the first live render.
func (c *ShellConfig) InitialDelay() time.Duration {
	return parseDuration(c.RawInitialDelay, DefaultInitialDelay)
}

// Interval returns the period between live renders.
func (c *ShellConfig) Interval() time.Duration {
	return parseDuration(c.RawInterval, DefaultInterval)
}

// Endpoint returns the execute URL of the playground.
func (c *PlaygroundConfig) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return DefaultPlaygroundURL
}

// ChannelName returns the configured release channel or the default.
func (c *PlaygroundConfig) ChannelName() string {
	if c.Channel != "" {
		return c.Channel
	}
	return DefaultChannel
}

// EditionName returns the configured edition or the default.
func (c *PlaygroundConfig) EditionName() string {
	if c.Edition != "" {
		return c.Edition
	}
	return DefaultEdition
}

// Timeout returns the HTTP timeout for one execute request.
func (c *PlaygroundConfig) Timeout() time.Duration {
	return parseDuration(c.RawTimeout, DefaultPlaygroundWait)
}

// NewLogger builds a logger writing to w. debug forces the debug level.
func (c *LogConfig) NewLogger(w io.Writer, debug bool) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Validate reports settings that make the bot unable to start.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is not set (or export %s)", TokenEnv)
	}
	if c.Telegram.OwnerID == 0 {
		return fmt.Errorf("telegram.owner_id is not set")
	}
	switch c.Playground.ChannelName() {
	case "stable", "beta", "nightly":
	default:
		return fmt.Errorf("playground.channel %q is not one of stable, beta, nightly", c.Playground.Channel)
	}
	return nil
}

// Load reads the configuration file at path. A missing file yields the
// default Config. The token environment variable takes precedence over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.Telegram.Token = token
	}
	return cfg, nil
}

// Example is the configuration written by WriteExample.
const Example = `# tomorin configuration
telegram:
  token: ""        # bot token from @BotFather, or export TOMORIN_TELEGRAM_TOKEN
  owner_id: 0      # your numeric Telegram user ID; nobody else can run commands
  poll_timeout: 60s

shell:
  prompt: "❯ "
  timeout: ""      # e.g. 10m; empty means commands may run forever
  max_lines: 30
  max_chars: 3800
  initial_delay: 800ms
  interval: 1s

playground:
  url: https://play.rust-lang.org/execute
  channel: nightly
  edition: "2024"
  timeout: 30s

log:
  level: info
  format: text
`

// WriteExample writes the example configuration to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Example), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
