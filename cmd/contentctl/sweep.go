package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novaframes/content-admin/internal/sweeper"
)

var sweepDryRun bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete uploaded images no record references",
	Long: `Scan every image prefix in the bucket and delete objects that no record or
content document references. Objects younger than SWEEP_GRACE are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sw := sweeper.New(current.backends.Store, current.backends.Blobs, current.cfg.Sweep.Grace, current.log.Named("sweeper"))
		report, err := sw.Run(cmd.Context(), sweepDryRun)
		if err != nil {
			return err
		}
		if sweepDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d orphaned objects would be deleted\n", len(report.Orphans))
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "report orphans without deleting them")
}
