package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novaframes/content-admin/config"
	"github.com/novaframes/content-admin/internal/bootstrap"
)

// app is populated by the root command before any subcommand runs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	backends *bootstrap.Backends
}

var current app

var rootCmd = &cobra.Command{
	Use:   "contentctl",
	Short: "Operate the content admin backend from the command line",
	Long: `contentctl talks to the configured record store and blob bucket directly,
using the same environment variables as the API server.

Available subcommands:
  list  - Show record counts or the records of one collection
  seed  - Load records and content documents from a YAML file
  sweep - Delete uploaded images no record references`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := bootstrap.NewLogger(cfg.App)
		if err != nil {
			return err
		}
		backends, err := bootstrap.OpenBackends(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		current = app{cfg: cfg, log: log, backends: backends}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if current.backends != nil {
			_ = current.backends.Close()
		}
		if current.log != nil {
			_ = current.log.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd, seedCmd, sweepCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
