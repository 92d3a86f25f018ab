// Command tomorin runs shell commands and Rust snippets sent from Telegram.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/deixis/tomorin"
	"github.com/deixis/tomorin/internal/bot"
	"github.com/deixis/tomorin/internal/config"
	"github.com/deixis/tomorin/internal/ctxlog"
	tmcp "github.com/deixis/tomorin/internal/mcp"
	"github.com/deixis/tomorin/internal/playground"
	"github.com/deixis/tomorin/internal/render"
	"github.com/deixis/tomorin/internal/replies"
	"github.com/deixis/tomorin/internal/runner"
	"github.com/deixis/tomorin/internal/telegram"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:           "tomorin",
		Short:         "Run shell commands and Rust snippets from a Telegram chat",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "configuration file")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log at debug level")

	cmd.AddCommand(newRunCmd(&flags))
	cmd.AddCommand(newMCPCmd(&flags))
	cmd.AddCommand(newInitCmd(&flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads the configuration and installs the process logger.
func (f *rootFlags) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr(), f.debug)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newRunner(cfg *config.Config) *runner.Runner {
	return &runner.Runner{
		Prompt:  cfg.Shell.PromptString(),
		Timeout: cfg.Shell.Timeout(),
		Window:  render.Window{MaxLines: cfg.Shell.MaxLines(), MaxChars: cfg.Shell.MaxChars()},
		Cadence: runner.Cadence{Initial: cfg.Shell.InitialDelay(), Interval: cfg.Shell.Interval()},
	}
}

func newPlayground(cfg *config.Config) *playground.Client {
	pc := cfg.Playground
	return playground.New(pc.Endpoint(), pc.ChannelName(), pc.EditionName(), pc.Timeout())
}

// --- run ---

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Telegram and serve commands from the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = ctxlog.WithLogger(ctx, logger)

			api, err := telegram.Dial(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("connecting to telegram: %w", err)
			}
			logger.Info("authorized", "bot", api.Self.UserName, "owner", cfg.Telegram.OwnerID, "version", tomorin.Version)

			b := &bot.Bot{
				Transport: telegram.New(api, cfg.Telegram.OwnerID, cfg.Telegram.PollTimeout(), replies.New(0)),
				Runner:    newRunner(cfg),
				Evaluator: newPlayground(cfg),
				Version:   tomorin.Version,
				Started:   time.Now(),
			}
			return b.Run(ctx)
		},
	}
}

// --- mcp ---

func newMCPCmd(flags *rootFlags) *cobra.Command {
	var httpAddr string
	var instructions bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the shell and eval tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), tmcp.Instructions)
				return nil
			}
			cfg, logger, err := flags.setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx = ctxlog.WithLogger(ctx, logger)

			server := tmcp.NewServer(newRunner(cfg), newPlayground(cfg))
			if httpAddr != "" {
				return serveHTTP(ctx, server, httpAddr)
			}
			return server.Run(ctx, &mcpsdk.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "start HTTP server on address (e.g. :9090)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	return cmd
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	ctxlog.FromContext(ctx).Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- init ---

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteExample(flags.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.configPath)
			return nil
		},
	}
}

// --- version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tomorin.Version)
		},
	}
}
