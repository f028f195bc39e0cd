// Package cli provides the rulehub command-line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulehub/internal/logger"
)

var (
	version = "dev"

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "rulehub",
	Short: "Serve coding rules to AI assistants over MCP",
	Long: `rulehub loads rule documents from configured sources (local directories
and git repositories) into an in-memory index and serves them to AI
assistants over the Model Context Protocol.

The configuration file is read from --config, then $RULEHUB_CONFIG,
then ./rulehub.toml.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (default ./rulehub.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
