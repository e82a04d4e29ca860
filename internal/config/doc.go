// Package config defines the persisted downloader settings.
//
// Settings can be provided via:
//   - YAML settings file (~/.ecmwfget.yaml, or -config)
//   - Environment variables (ECMWF_ prefix)
//   - Command-line flags, merged on top by the CLI via Merge
//
// Later sources win. The download engine never reads this package's file;
// it receives explicit, already-validated values per operation.
package config
