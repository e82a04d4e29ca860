package fetch

import (
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
)

// Task is one planned download of a single descriptor to a single local
// path. Destination paths are unique within a run, so concurrent tasks never
// write the same file.
type Task struct {
	Descriptor catalog.FileDescriptor
	Dest       string
}

// Status tags a transfer outcome.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a failed transfer.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindServer     ErrorKind = "server"
	KindFilesystem ErrorKind = "filesystem"
)

// SkipDryRun is the skip reason used when dry-run mode short-circuits a task.
const SkipDryRun = "dry-run"

// Outcome is the result of exactly one Task. Bytes is set on success,
// SkipReason on skips, Kind and Err on failures. Attempts counts how many
// attempts ran, including the final one.
type Outcome struct {
	Task       Task
	Status     Status
	Bytes      int64
	Attempts   int
	SkipReason string
	Kind       ErrorKind
	Err        error
}

// DateResult aggregates the outcomes of one date. Succeeded and Failed are
// order-independent; Outcomes keeps task submission order for reporting.
type DateResult struct {
	Date       catalog.Date
	Outcomes   []Outcome
	Succeeded  []catalog.FileDescriptor
	Failed     map[string]ErrorKind
	Skipped    int
	TotalBytes int64

	// Err is set when the catalog lookup itself failed; the date then
	// carries no outcomes. ErrNoData is not a failure and leaves Err nil.
	Err error
}

// aggregate folds a set of outcomes into a DateResult.
func aggregate(d catalog.Date, outcomes []Outcome) DateResult {
	res := DateResult{
		Date:     d,
		Outcomes: outcomes,
		Failed:   make(map[string]ErrorKind),
	}
	for _, out := range outcomes {
		switch out.Status {
		case StatusSuccess:
			res.Succeeded = append(res.Succeeded, out.Task.Descriptor)
			res.TotalBytes += out.Bytes
		case StatusSkipped:
			res.Skipped++
		case StatusFailed:
			res.Failed[out.Task.Descriptor.Name] = out.Kind
		}
	}
	return res
}

// BulkResult is the ordered per-date results of a range run; Dates follows
// the requested date order.
type BulkResult struct {
	Dates []DateResult
}

// TotalSucceeded counts succeeded transfers across all dates.
func (b BulkResult) TotalSucceeded() int {
	n := 0
	for _, d := range b.Dates {
		n += len(d.Succeeded)
	}
	return n
}

// TotalFailed counts failed transfers across all dates.
func (b BulkResult) TotalFailed() int {
	n := 0
	for _, d := range b.Dates {
		n += len(d.Failed)
	}
	return n
}

// TotalBytes sums the bytes written across all dates.
func (b BulkResult) TotalBytes() int64 {
	var n int64
	for _, d := range b.Dates {
		n += d.TotalBytes
	}
	return n
}
