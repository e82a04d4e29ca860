package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/config"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/fetch"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/progress"
)

var downloadCmd = &cobra.Command{
	Use:   "download <date>",
	Short: "Download forecast data for one date",
	Long: `Download ECMWF forecast data for a specific date and configuration.

The date is given as YYYYMMDD. Files land in <output>/<date>/, written to a
temporary name first and renamed into place only on success.`,
	Example: `  # Everything the 12z IFS operational run published on a date
  ecmwfget download 20250617

  # Only GRIB files of the 00z run, 8 at a time
  ecmwfget download 20250617 -t 00z -p '\.grib2$' -c 8

  # Preview without downloading
  ecmwfget download 20250617 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	addQueryFlags(downloadCmd)
	downloadCmd.Flags().StringP("pattern", "p", "", "regular expression filtering file names")
	downloadCmd.Flags().StringP("output", "o", "", "output directory (overrides settings)")
	downloadCmd.Flags().IntP("concurrent", "c", 0, "max concurrent downloads (overrides settings)")
	downloadCmd.Flags().Int("timeout", 0, "per-attempt timeout in seconds (overrides settings)")
	downloadCmd.Flags().Bool("dry-run", false, "enumerate and report tasks without downloading")
	downloadCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	downloadCmd.Flags().String("archive", "", "bucket URL to mirror completed files to (s3://, gs://, file://)")
}

// addQueryFlags registers the model-run coordinate flags shared by the
// listing and download commands.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("time", "t", "12z", "forecast cycle (00z, 06z, 12z, 18z)")
	cmd.Flags().StringP("model", "m", "ifs", "model (ifs, aifs-single)")
	cmd.Flags().StringP("resolution", "r", "0p25", "resolution (0p25, 0p4)")
	cmd.Flags().String("stream", "oper", "data stream (oper, enfo, waef, wave)")
}

// queryFromFlags assembles the catalog query from the shared flags.
func queryFromFlags(cmd *cobra.Command) catalog.Query {
	cycle, _ := cmd.Flags().GetString("time")
	model, _ := cmd.Flags().GetString("model")
	resolution, _ := cmd.Flags().GetString("resolution")
	stream, _ := cmd.Flags().GetString("stream")
	return catalog.Query{Cycle: cycle, Model: model, Resolution: resolution, Stream: stream}
}

// applyOverrides merges flag overrides into the resolved settings.
func applyOverrides(cmd *cobra.Command) {
	output, _ := cmd.Flags().GetString("output")
	concurrent, _ := cmd.Flags().GetInt("concurrent")
	timeout, _ := cmd.Flags().GetInt("timeout")
	archiveURL, _ := cmd.Flags().GetString("archive")
	cfg = cfg.Merge(config.Config{
		OutputDir:      output,
		Concurrency:    concurrent,
		TimeoutSeconds: timeout,
		Archive:        archiveURL,
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	date, err := parseDateArg(args[0])
	if err != nil {
		return err
	}
	applyOverrides(cmd)

	pattern, _ := cmd.Flags().GetString("pattern")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	query := queryFromFlags(cmd)

	if !dryRun && !yes {
		if !confirm(fmt.Sprintf("Download %s/%s to %s?", date, query, cfg.OutputDir)) {
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

	result, err := engine.ProcessDate(ctx, date, fetch.Params{
		Query:   query,
		Pattern: pattern,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}
	reporter.Stop()

	return reportFailures(result)
}

// reportFailures lists failed files explicitly and marks the run as a
// partial success; failures are never silently dropped.
func reportFailures(result fetch.DateResult) error {
	if len(result.Failed) == 0 {
		return nil
	}
	fmt.Fprintf(os.Stderr, "Failed downloads for %s:\n", result.Date)
	for name, kind := range result.Failed {
		fmt.Fprintf(os.Stderr, "  %s (%s)\n", name, kind)
	}
	return fmt.Errorf("%w: %d of %d", errPartialFailure,
		len(result.Failed), len(result.Failed)+len(result.Succeeded))
}
