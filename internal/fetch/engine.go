package fetch

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/archive"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/httpc"
)

// Validation errors. These are fatal to an invocation and are returned
// before any network activity.
var (
	ErrInvalidConcurrency = errors.New("fetch: concurrency must be at least 1")
	ErrInvalidRange       = errors.New("fetch: start date is after end date")
)

// Options configures an Engine. The caller validates and supplies every
// value explicitly; the engine holds no ambient state and never reads
// configuration files.
type Options struct {
	// OutputDir is the root under which per-date directories are created.
	OutputDir string

	// Concurrency caps simultaneously active transfers. Must be >= 1.
	Concurrency int

	// Timeout bounds each transfer attempt. Zero disables the bound.
	Timeout time.Duration

	// Attempts is the maximum attempt count per task. Default: 3.
	Attempts int

	// Backoff is the retry delay policy. Default: DefaultBackoff.
	Backoff Backoff

	// ChunkSize is the copy buffer size. Default: 128KB.
	ChunkSize int

	// Reporter receives progress events. Default: NopReporter.
	Reporter Reporter

	// Logger is the engine logger. Default: zap.NewNop().
	Logger *zap.Logger

	// Archive optionally mirrors completed files to an object store.
	Archive *archive.Archiver
}

// Params are the per-run inputs of a ProcessDate/ProcessRange invocation.
type Params struct {
	// Query selects the model run directory. Zero value means DefaultQuery.
	Query catalog.Query

	// Pattern optionally filters file names; empty downloads everything.
	Pattern string

	// DryRun enumerates and reports tasks without transferring anything.
	DryRun bool
}

// Engine composes the catalog client, pattern filter, worker pool and
// transfer unit for single-date and date-range runs.
type Engine struct {
	catalog  *catalog.Client
	opts     Options
	reporter Reporter
	log      *zap.Logger
	archive  *archive.Archiver
	transfer *transferer
}

// New creates an engine. Concurrency is validated per run, not here, so a
// misconfigured value surfaces as ErrInvalidConcurrency from the operation
// that used it.
func New(cat *catalog.Client, opts Options) *Engine {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff == (Backoff{}) {
		opts.Backoff = DefaultBackoff()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 128 * 1024
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Engine{
		catalog:  cat,
		opts:     opts,
		reporter: opts.Reporter,
		log:      opts.Logger,
		archive:  opts.Archive,
	}
	e.transfer = &transferer{
		client:      httpc.New(httpc.DefaultOptions()),
		reporter:    e.reporter,
		log:         e.log,
		backoff:     opts.Backoff,
		maxAttempts: opts.Attempts,
		timeout:     opts.Timeout,
		chunkSize:   opts.ChunkSize,
	}
	return e
}

// validate checks run inputs before any network activity and returns the
// compiled matcher.
func (e *Engine) validate(p Params) (*Matcher, error) {
	if e.opts.Concurrency < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, e.opts.Concurrency)
	}
	return CompilePattern(p.Pattern)
}

// ProcessDate lists, filters and downloads one date. A date that publishes
// nothing yields an empty DateResult and no error; a catalog failure yields
// a DateResult carrying the error, which is also returned.
func (e *Engine) ProcessDate(ctx context.Context, d catalog.Date, p Params) (DateResult, error) {
	m, err := e.validate(p)
	if err != nil {
		return DateResult{Date: d, Err: err}, err
	}
	res := e.processDate(ctx, d, p, m)
	return res, res.Err
}

// ProcessRange runs every date from start to end inclusive, in ascending
// order. One date failing its catalog lookup does not abort the rest; its
// DateResult carries the error. The range itself is validated before any
// network call.
func (e *Engine) ProcessRange(ctx context.Context, start, end catalog.Date, p Params) (BulkResult, error) {
	if start.After(end) {
		return BulkResult{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	m, err := e.validate(p)
	if err != nil {
		return BulkResult{}, err
	}

	var bulk BulkResult
	for _, d := range catalog.DatesBetween(start, end) {
		if ctx.Err() != nil {
			break
		}
		res := e.processDate(ctx, d, p, m)
		if res.Err != nil {
			e.log.Warn("date failed", zap.String("date", d.String()), zap.Error(res.Err))
		}
		bulk.Dates = append(bulk.Dates, res)
	}

	e.reporter.RunCompleted(bulk)
	return bulk, nil
}

// processDate is the per-date pipeline: catalog, filter, pool, aggregate.
// Inputs are already validated.
func (e *Engine) processDate(ctx context.Context, d catalog.Date, p Params, m *Matcher) DateResult {
	q := p.Query
	if q == (catalog.Query{}) {
		q = catalog.DefaultQuery()
	}

	e.reporter.ListingStarted(d)
	files, err := e.catalog.List(ctx, d, q)
	switch {
	case errors.Is(err, catalog.ErrNoData):
		e.log.Info("no data published", zap.String("date", d.String()), zap.Stringer("query", q))
		e.reporter.ListingCompleted(d, 0)
		res := aggregate(d, nil)
		e.reporter.DateCompleted(res)
		return res
	case err != nil:
		res := aggregate(d, nil)
		res.Err = err
		e.reporter.DateCompleted(res)
		return res
	}
	e.reporter.ListingCompleted(d, len(files))

	matched := m.Apply(files)
	e.log.Debug("listing filtered",
		zap.String("date", d.String()),
		zap.Int("listed", len(files)),
		zap.Int("matched", len(matched)))

	tasks := make([]Task, len(matched))
	for i, fd := range matched {
		tasks[i] = Task{
			Descriptor: fd,
			Dest:       filepath.Join(e.opts.OutputDir, d.String(), fd.Name),
		}
	}

	res := aggregate(d, e.runPool(ctx, tasks, p.DryRun))
	e.reporter.DateCompleted(res)
	return res
}

// archiveKey is the bucket key for a completed file: YYYYMMDD/<name>,
// mirroring the local layout.
func archiveKey(task Task) string {
	return path.Join(filepath.Base(filepath.Dir(task.Dest)), task.Descriptor.Name)
}
