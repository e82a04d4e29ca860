package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the persisted settings",
	Long: `Show or update the settings file (~/.ecmwfget.yaml by default).

Without flags the resolved settings are printed. Setter flags update the
file; unset values keep their current contents.`,
	Example: `  ecmwfget config --show
  ecmwfget config --output-dir /data/ecmwf --concurrent 8`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Bool("show", false, "show the resolved settings")
	configCmd.Flags().String("base-url", "", "set the data store base URL")
	configCmd.Flags().String("output-dir", "", "set the default output directory")
	configCmd.Flags().Int("timeout", 0, "set the default per-attempt timeout in seconds")
	configCmd.Flags().Int("concurrent", 0, "set the default concurrent downloads")
	configCmd.Flags().String("archive", "", "set the default archive bucket URL")
}

func runConfig(cmd *cobra.Command, args []string) error {
	show, _ := cmd.Flags().GetBool("show")

	override := config.Config{}
	override.BaseURL, _ = cmd.Flags().GetString("base-url")
	override.OutputDir, _ = cmd.Flags().GetString("output-dir")
	override.TimeoutSeconds, _ = cmd.Flags().GetInt("timeout")
	override.Concurrency, _ = cmd.Flags().GetInt("concurrent")
	override.Archive, _ = cmd.Flags().GetString("archive")

	changed := override != (config.Config{})
	if show || !changed {
		printConfig(cfg)
		return nil
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine settings file location")
	}

	// Update the file contents, not the env/flag-resolved view.
	onDisk, err := config.Load(path)
	if err != nil {
		return err
	}
	updated := onDisk.Merge(override)
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := updated.Save(path); err != nil {
		return err
	}
	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}

func printConfig(c config.Config) {
	fmt.Println("Current configuration:")
	fmt.Printf("  base_url: %s\n", c.BaseURL)
	fmt.Printf("  output_dir: %s\n", c.OutputDir)
	fmt.Printf("  concurrency: %d\n", c.Concurrency)
	fmt.Printf("  timeout_seconds: %d\n", c.TimeoutSeconds)
	if c.Archive != "" {
		fmt.Printf("  archive: %s\n", c.Archive)
	}
	fmt.Printf("  retry.attempts: %d\n", c.Retry.Attempts)
	fmt.Printf("  retry.backoff: %s\n", c.Retry.Backoff)
	fmt.Printf("  retry.max_backoff: %s\n", c.Retry.MaxBackoff)
}
