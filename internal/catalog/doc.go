// Package catalog talks to the ECMWF open data store.
//
// The data store publishes one directory tree per forecast date:
//
//	<base>/YYYYMMDD/<cycle>/<model>/<resolution>/<stream>/
//
// Each leaf directory is a plain HTML index page listing the GRIB, NetCDF
// and index artifacts of one model run. Client fetches and parses those
// pages into FileDescriptors; it keeps no state between calls, because the
// catalogs are small and change as runs are published.
//
// Dates are plain calendar days in the store's YYYYMMDD notation, modeled
// by the Date type.
package catalog
