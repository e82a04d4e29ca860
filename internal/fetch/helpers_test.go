package fetch

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/httpc"
)

func mustDate(t *testing.T, s string) catalog.Date {
	t.Helper()
	d, err := catalog.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// recordingReporter captures engine events for assertions. Safe for the
// concurrent calls the pool makes.
type recordingReporter struct {
	mu sync.Mutex

	listingsStarted   []catalog.Date
	listingsCompleted []int
	progress          []int64
	completed         []Outcome
	dates             []DateResult
	runs              []BulkResult
}

func (r *recordingReporter) ListingStarted(d catalog.Date) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listingsStarted = append(r.listingsStarted, d)
}

func (r *recordingReporter) ListingCompleted(d catalog.Date, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listingsCompleted = append(r.listingsCompleted, count)
}

func (r *recordingReporter) TaskProgress(task Task, bytes, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, bytes)
}

func (r *recordingReporter) TaskCompleted(task Task, out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, out)
}

func (r *recordingReporter) DateCompleted(res DateResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates = append(r.dates, res)
}

func (r *recordingReporter) RunCompleted(res BulkResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, res)
}

func (r *recordingReporter) completedOutcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.completed...)
}

// newTestTransferer builds a transferer with near-zero backoff so retry tests
// run fast.
func newTestTransferer(maxAttempts int, timeout time.Duration, reporter Reporter) *transferer {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &transferer{
		client:      httpc.New(httpc.DefaultOptions()),
		reporter:    reporter,
		log:         zap.NewNop(),
		backoff:     Backoff{Base: time.Millisecond, Max: 5 * time.Millisecond},
		maxAttempts: maxAttempts,
		timeout:     timeout,
		chunkSize:   4, // small chunks so progress events fire mid-file
	}
}
