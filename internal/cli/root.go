// Package cli implements the techpulse command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/observability/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "techpulse",
		Short:         "Search the TechPulse article archive",
		Long:          "techpulse loads the rolling window of daily article shards and runs structured queries over them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg := config.Load()
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), "cli", cfg.LogLevel, "text"))
		},
	}

	root.AddCommand(
		newSearchCmd(),
		newExportCmd(),
		newFacetsCmd(),
		newSyntaxCmd(),
		newImportCmd(),
		newNotifyCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "techpulse %s (commit: %s)\n", version, commit)
		},
	}
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		stop()
		os.Exit(1)
	}
}

func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

// withApp bootstraps the search stack from the environment for one
// command invocation.
func withApp(cmd *cobra.Command, fn func(*bootstrap.App) error) error {
	app, err := bootstrap.New(cmd.Context(), config.Load(), nil)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
