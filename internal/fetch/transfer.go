package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/httpc"
)

// tempSuffix marks in-flight downloads. Temp files live next to their final
// destination so the rename stays on one filesystem.
const tempSuffix = ".part"

// transferer streams single files to disk with retries. One instance is
// shared by all pool workers; it holds no per-task state.
type transferer struct {
	client      *http.Client
	reporter    Reporter
	log         *zap.Logger
	backoff     Backoff
	maxAttempts int
	timeout     time.Duration
	chunkSize   int
}

// attemptResult is the outcome of one attempt of one task.
type attemptResult struct {
	bytes     int64
	err       error
	kind      ErrorKind
	retryable bool
}

// fetch runs the retry loop for one task: attempt, classify, delay, attempt
// again. Non-retryable errors short-circuit without consuming retries; the
// per-task timeout applies to each attempt separately.
func (t *transferer) fetch(ctx context.Context, task Task) Outcome {
	var last attemptResult
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Warn("retrying download",
				zap.String("file", task.Descriptor.Name),
				zap.Int("attempt", attempt),
				zap.Duration("delay", t.backoff.Delay(attempt)),
				zap.Error(last.err))
			if err := t.backoff.Sleep(ctx, attempt); err != nil {
				return Outcome{
					Task:     task,
					Status:   StatusFailed,
					Attempts: attempt - 1,
					Kind:     last.kind,
					Err:      err,
				}
			}
		}

		last = t.attempt(ctx, task)
		if last.err == nil {
			t.log.Debug("downloaded",
				zap.String("file", task.Descriptor.Name),
				zap.Int64("bytes", last.bytes),
				zap.Int("attempts", attempt))
			return Outcome{
				Task:     task,
				Status:   StatusSuccess,
				Bytes:    last.bytes,
				Attempts: attempt,
			}
		}
		if !last.retryable || ctx.Err() != nil {
			return Outcome{
				Task:     task,
				Status:   StatusFailed,
				Attempts: attempt,
				Kind:     last.kind,
				Err:      last.err,
			}
		}
	}

	return Outcome{
		Task:     task,
		Status:   StatusFailed,
		Attempts: t.maxAttempts,
		Kind:     last.kind,
		Err:      last.err,
	}
}

// attempt downloads the file once: temp sibling file, chunked copy with
// progress events, atomic rename. On any failure the temp file is removed,
// so neither the temp nor the final name ever holds a partial file.
func (t *transferer) attempt(ctx context.Context, task Task) attemptResult {
	if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
		return attemptResult{err: fmt.Errorf("create output dir: %w", err), kind: KindFilesystem}
	}

	tmp := task.Dest + tempSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return attemptResult{err: fmt.Errorf("create temp file: %w", err), kind: KindFilesystem}
	}
	discard := func() {
		f.Close()
		os.Remove(tmp)
	}

	attemptCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, task.Descriptor.URL, nil)
	if err != nil {
		discard()
		return attemptResult{err: fmt.Errorf("build request: %w", err), kind: KindNetwork}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		discard()
		kind, retryable := classify(ctx, err)
		return attemptResult{err: err, kind: kind, retryable: retryable}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		discard()
		return attemptResult{
			err:       fmt.Errorf("download %s: %w", task.Descriptor.Name, httpc.CheckStatus(resp.StatusCode)),
			kind:      KindServer,
			retryable: httpc.Retryable(resp.StatusCode),
		}
	}

	total := resp.ContentLength
	if total <= 0 {
		total = task.Descriptor.Size
	}

	written, err := t.stream(task, resp.Body, f, total)
	if err != nil {
		discard()
		var werr *writeError
		if errors.As(err, &werr) {
			return attemptResult{err: err, kind: KindFilesystem}
		}
		kind, retryable := classify(ctx, err)
		return attemptResult{err: err, kind: kind, retryable: retryable}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return attemptResult{err: fmt.Errorf("close temp file: %w", err), kind: KindFilesystem}
	}

	// The caller may have cancelled while the last chunk was in flight;
	// nothing renames into place after cancellation.
	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return attemptResult{err: err, kind: KindNetwork}
	}

	if err := os.Rename(tmp, task.Dest); err != nil {
		os.Remove(tmp)
		return attemptResult{err: fmt.Errorf("rename into place: %w", err), kind: KindFilesystem}
	}

	return attemptResult{bytes: written}
}

// writeError marks local write failures so they classify as filesystem, not
// network, errors.
type writeError struct {
	err error
}

func (e *writeError) Error() string { return "write temp file: " + e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// stream copies the body to the temp file in bounded chunks, emitting a
// progress event after each chunk.
func (t *transferer) stream(task Task, body io.Reader, f *os.File, total int64) (int64, error) {
	buf := make([]byte, t.chunkSize)
	var written int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return written, &writeError{err: werr}
			}
			written += int64(n)
			t.reporter.TaskProgress(task, written, total)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read body: %w", rerr)
		}
	}
}

// classify maps a transport error onto an ErrorKind and decides whether
// another attempt is worthwhile. Caller cancellation is never retried; a
// per-attempt deadline is.
func classify(parent context.Context, err error) (ErrorKind, bool) {
	if parent.Err() != nil {
		return KindNetwork, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}
	return KindNetwork, true
}
