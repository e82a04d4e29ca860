package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/fetch"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitCatalogError   = 3
	ExitPartialFailure = 4
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(ExitSuccess)
}

// exitCode maps well-known failures onto stable exit codes for scripting.
func exitCode(err error) int {
	switch {
	case errors.Is(err, fetch.ErrInvalidRange),
		errors.Is(err, fetch.ErrInvalidPattern),
		errors.Is(err, fetch.ErrInvalidConcurrency),
		errors.Is(err, errUsage):
		return ExitInvalidArgs
	case errors.Is(err, catalog.ErrUnavailable):
		return ExitCatalogError
	case errors.Is(err, errPartialFailure):
		return ExitPartialFailure
	default:
		return ExitGeneralError
	}
}
