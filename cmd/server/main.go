// Command server runs the Hustly backend the desktop front-end invokes commands on.
//
// Windows release builds drop the console window at link time:
//
//	go build -ldflags "-H=windowsgui" ./cmd/server
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/janisto/hustly/internal/app"
	"github.com/janisto/hustly/internal/buildinfo"
	"github.com/janisto/hustly/internal/platform/config"
	applog "github.com/janisto/hustly/internal/platform/logging"
)

func main() {
	ctx := context.Background()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		_ = applog.Sync()
		return
	}
	if errors.Is(err, app.ErrStartup) {
		applog.LogFatal(ctx, app.FatalMessage, err)
	}
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

type rootOptions struct {
	envDir string
	port   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "hustly",
		Short:         "Run the Hustly application backend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.envDir, "env-dir", "", "directory holding .env and .env.local files")
	cmd.Flags().StringVar(&opts.port, "port", "", "listen port (overrides PORT)")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.envDir)
	if err != nil {
		return config.Config{}, err
	}
	if opts.port != "" {
		cfg.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func run(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("%w: %w", app.ErrStartup, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Bootstrap(cfg, buildinfo.Version).Run(ctx)
}
