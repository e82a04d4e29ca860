package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/fetch"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/progress"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <start-date> <end-date>",
	Short: "Download forecast data for a date range",
	Long: `Download ECMWF forecast data for every date from start to end inclusive.

Dates that publish nothing are skipped; one date failing its catalog lookup
does not abort the rest of the range.`,
	Example: `  # Three weeks of GRIB output
  ecmwfget bulk 20250601 20250621 -p '\.grib2$'

  # Preview the plan
  ecmwfget bulk 20250601 20250607 --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runBulk,
}

func init() {
	addQueryFlags(bulkCmd)
	bulkCmd.Flags().StringP("pattern", "p", "", "regular expression filtering file names")
	bulkCmd.Flags().StringP("output", "o", "", "output directory (overrides settings)")
	bulkCmd.Flags().IntP("concurrent", "c", 0, "max concurrent downloads (overrides settings)")
	bulkCmd.Flags().Int("timeout", 0, "per-attempt timeout in seconds (overrides settings)")
	bulkCmd.Flags().Bool("dry-run", false, "enumerate and report tasks without downloading")
	bulkCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	bulkCmd.Flags().String("archive", "", "bucket URL to mirror completed files to (s3://, gs://, file://)")
}

func runBulk(cmd *cobra.Command, args []string) error {
	start, err := parseDateArg(args[0])
	if err != nil {
		return err
	}
	end, err := parseDateArg(args[1])
	if err != nil {
		return err
	}
	applyOverrides(cmd)

	pattern, _ := cmd.Flags().GetString("pattern")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	query := queryFromFlags(cmd)

	if !dryRun && !yes {
		if !confirm(fmt.Sprintf("Download %s..%s (%s) to %s?", start, end, query, cfg.OutputDir)) {
			fmt.Fprintln(os.Stderr, "Download cancelled.")
			return nil
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	reporter := progress.NewConsole(progress.Options{Quiet: dryRun})
	reporter.Start()
	defer reporter.Stop()

	engine, cleanup, err := newEngine(ctx, reporter, cfg.Archive)
	if err != nil {
		return err
	}
	defer cleanup()

	bulk, err := engine.ProcessRange(ctx, start, end, fetch.Params{
		Query:   query,
		Pattern: pattern,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}
	reporter.Stop()

	var firstErr error
	for _, res := range bulk.Dates {
		if err := reportFailures(res); err != nil && firstErr == nil {
			firstErr = err
		}
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
	}
	return firstErr
}
