package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/fetch"
)

// Options configures the console reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to redraw the progress line.
	// Default: 500ms
	UpdateInterval time.Duration

	// Quiet suppresses the periodic progress line, keeping only event lines.
	Quiet bool
}

// Console renders engine events. Event methods are called concurrently by
// transfer workers; they only touch atomics and a short mutex, the actual
// writing happens on the redraw goroutine.
type Console struct {
	opts Options

	completedBytes atomic.Int64
	done           atomic.Int32
	failed         atomic.Int32
	skipped        atomic.Int32
	active         atomic.Int32

	mu       sync.Mutex
	lines    []string         // event lines pending flush
	inflight map[string]int64 // task dest -> bytes so far

	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	drewStatus bool

	stopCh  chan struct{}
	stopped bool
	doneCh  chan struct{}
}

// NewConsole creates a console reporter.
func NewConsole(opts Options) *Console {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	return &Console{
		opts:     opts,
		inflight: make(map[string]int64),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins rendering.
func (c *Console) Start() {
	c.startTime = time.Now()
	c.lastUpdate = c.startTime
	go c.updateLoop()
}

// Stop flushes pending output and stops the redraw goroutine.
func (c *Console) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	close(c.stopCh)
	<-c.doneCh
}

// ListingStarted implements fetch.Reporter.
func (c *Console) ListingStarted(date catalog.Date) {
	c.queue(fmt.Sprintf("[ecmwfget] %s: fetching file list...", date))
}

// ListingCompleted implements fetch.Reporter.
func (c *Console) ListingCompleted(date catalog.Date, count int) {
	if count == 0 {
		c.queue(fmt.Sprintf("[ecmwfget] %s: no files published", date))
		return
	}
	c.queue(fmt.Sprintf("[ecmwfget] %s: %d files listed", date, count))
}

// TaskProgress implements fetch.Reporter.
func (c *Console) TaskProgress(task fetch.Task, bytes, total int64) {
	c.mu.Lock()
	if _, ok := c.inflight[task.Dest]; !ok {
		c.active.Add(1)
	}
	c.inflight[task.Dest] = bytes
	c.mu.Unlock()
}

// TaskCompleted implements fetch.Reporter.
func (c *Console) TaskCompleted(task fetch.Task, outcome fetch.Outcome) {
	c.mu.Lock()
	if _, ok := c.inflight[task.Dest]; ok {
		delete(c.inflight, task.Dest)
		c.active.Add(-1)
	}
	c.mu.Unlock()

	switch outcome.Status {
	case fetch.StatusSuccess:
		c.done.Add(1)
		c.completedBytes.Add(outcome.Bytes)
		c.queue(fmt.Sprintf("[ecmwfget] ✓ %s (%s)", task.Descriptor.Name, FormatBytes(outcome.Bytes)))
	case fetch.StatusSkipped:
		c.skipped.Add(1)
		c.queue(fmt.Sprintf("[ecmwfget] – %s (%s)", task.Descriptor.Name, outcome.SkipReason))
	case fetch.StatusFailed:
		c.failed.Add(1)
		c.queue(fmt.Sprintf("[ecmwfget] ✗ %s: %s after %d attempt(s): %v",
			task.Descriptor.Name, outcome.Kind, outcome.Attempts, outcome.Err))
	}
}

// DateCompleted implements fetch.Reporter.
func (c *Console) DateCompleted(result fetch.DateResult) {
	if result.Err != nil {
		c.queue(fmt.Sprintf("[ecmwfget] %s: catalog lookup failed: %v", result.Date, result.Err))
		return
	}
	if len(result.Outcomes) == 0 {
		return
	}
	line := fmt.Sprintf("[ecmwfget] %s: %d succeeded, %d failed",
		result.Date, len(result.Succeeded), len(result.Failed))
	if result.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", result.Skipped)
	}
	if result.TotalBytes > 0 {
		line += ", " + FormatBytes(result.TotalBytes)
	}
	c.queue(line)
}

// RunCompleted implements fetch.Reporter.
func (c *Console) RunCompleted(result fetch.BulkResult) {
	c.queue(fmt.Sprintf("[ecmwfget] Run complete: %d dates | %d succeeded | %d failed | %s",
		len(result.Dates),
		result.TotalSucceeded(),
		result.TotalFailed(),
		FormatBytes(result.TotalBytes())))
}

// queue appends an event line for the redraw goroutine to flush.
func (c *Console) queue(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

// updateLoop periodically flushes event lines and redraws the status line.
func (c *Console) updateLoop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			c.flush(true)
			return
		case <-ticker.C:
			c.flush(false)
		}
	}
}

// flush writes pending event lines and, unless quiet, a status line that the
// next flush overwrites in place.
func (c *Console) flush(final bool) {
	c.mu.Lock()
	lines := c.lines
	c.lines = nil
	var inflightBytes int64
	for _, b := range c.inflight {
		inflightBytes += b
	}
	clearStatus := c.drewStatus
	c.drewStatus = false
	c.mu.Unlock()

	if clearStatus {
		fmt.Fprint(c.opts.Output, "\r\033[K")
	}
	for _, line := range lines {
		fmt.Fprintln(c.opts.Output, line)
	}
	if final || c.opts.Quiet {
		if final && !c.opts.Quiet {
			c.printSummary()
		}
		return
	}

	completed := c.completedBytes.Load() + inflightBytes
	now := time.Now()
	elapsed := now.Sub(c.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(completed-c.lastBytes) / elapsed
	c.lastUpdate = now
	c.lastBytes = completed

	fmt.Fprintf(c.opts.Output, "\r[ecmwfget] Progress: %d done | %d active | %s | Speed: %s/s",
		c.done.Load(),
		c.active.Load(),
		FormatBytes(completed),
		FormatBytes(int64(speed)))

	c.mu.Lock()
	c.drewStatus = true
	c.mu.Unlock()
}

// printSummary outputs the final run totals.
func (c *Console) printSummary() {
	duration := time.Since(c.startTime)
	completed := c.completedBytes.Load()
	avgSpeed := float64(completed) / duration.Seconds()

	fmt.Fprintf(c.opts.Output, "[ecmwfget] %d downloaded | %d failed | %d skipped | %s in %s (%s/s)\n",
		c.done.Load(),
		c.failed.Load(),
		c.skipped.Load(),
		FormatBytes(completed),
		formatDuration(duration),
		FormatBytes(int64(avgSpeed)))
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
