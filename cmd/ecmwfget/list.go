package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/progress"
)

var listDatesCmd = &cobra.Command{
	Use:   "list-dates",
	Short: "List recent forecast dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		fmt.Printf("Available forecast dates (last %d days):\n", days)
		for _, d := range catalog.RecentDates(days) {
			fmt.Printf("  %s (%s)\n", d, d.Time().Format("2006-01-02 Monday"))
		}
		return nil
	},
}

var listFilesCmd = &cobra.Command{
	Use:   "list-files <date>",
	Short: "List the files a date publishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runListFiles,
}

var listConfigCmd = &cobra.Command{
	Use:   "list-config <date>",
	Short: "List the forecast cycles a date publishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runListConfig,
}

func init() {
	listDatesCmd.Flags().IntP("days", "d", 7, "number of days back to show")
	addQueryFlags(listFilesCmd)
}

func runListFiles(cmd *cobra.Command, args []string) error {
	date, err := parseDateArg(args[0])
	if err != nil {
		return err
	}
	query := queryFromFlags(cmd)

	ctx, cancel := signalContext()
	defer cancel()

	client, err := newCatalog()
	if err != nil {
		return err
	}

	files, err := client.List(ctx, date, query)
	if errors.Is(err, catalog.ErrNoData) {
		fmt.Printf("No data available for %s/%s\n", date, query)
		return nil
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILENAME\tTYPE\tSTEP\tSIZE\tMODIFIED")
	for _, fd := range files {
		step := "-"
		if fd.Step >= 0 {
			step = fmt.Sprintf("+%dh", fd.Step)
		}
		modified := "-"
		if !fd.Modified.IsZero() {
			modified = fd.Modified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			fd.Name, fd.FileType(), step, progress.FormatBytes(fd.Size), modified)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nFound %d files for %s/%s\n", len(files), date, query)
	return nil
}

func runListConfig(cmd *cobra.Command, args []string) error {
	date, err := parseDateArg(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := newCatalog()
	if err != nil {
		return err
	}

	cycles, err := client.Cycles(ctx, date)
	if errors.Is(err, catalog.ErrNoData) {
		fmt.Printf("No data available for %s\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Available cycles for %s:\n", date)
	for _, cycle := range cycles {
		fmt.Printf("  %s\n", cycle)
	}
	return nil
}
