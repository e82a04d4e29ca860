package fetch

import (
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
)

// Reporter receives structured progress events from the engine. TaskProgress
// and TaskCompleted are called concurrently from multiple workers;
// implementations must be safe for that and must return quickly, they are on
// the transfer path. The engine never inspects reporter behavior, so
// implementations must not panic into it.
type Reporter interface {
	ListingStarted(date catalog.Date)
	ListingCompleted(date catalog.Date, count int)

	// TaskProgress reports cumulative bytes for one task. total is 0 when
	// neither the response nor the catalog reported a size.
	TaskProgress(task Task, bytes, total int64)
	TaskCompleted(task Task, outcome Outcome)

	DateCompleted(result DateResult)
	RunCompleted(result BulkResult)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) ListingStarted(catalog.Date)        {}
func (NopReporter) ListingCompleted(catalog.Date, int) {}
func (NopReporter) TaskProgress(Task, int64, int64)    {}
func (NopReporter) TaskCompleted(Task, Outcome)        {}
func (NopReporter) DateCompleted(DateResult)           {}
func (NopReporter) RunCompleted(BulkResult)            {}
