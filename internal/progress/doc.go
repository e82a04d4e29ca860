// Package progress renders engine events on a terminal.
//
// Console implements the engine's Reporter contract: it absorbs events from
// concurrent transfer workers through atomics and a short mutex, and a
// single goroutine redraws the display on an interval, so reporting never
// blocks the worker pool.
//
// # Output Format
//
//	[ecmwfget] 20250617: 42 files listed
//	[ecmwfget] ✓ 20250617120000-0h-oper-fc.grib2 (118.40 MB)
//	[ecmwfget] Progress: 3 done | 2 active | 1.2 GB | Speed: 84.1 MB/s
//	[ecmwfget] 20250617: 41 succeeded, 1 failed, 1.9 GB
package progress
