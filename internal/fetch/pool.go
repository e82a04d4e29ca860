package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// runPool executes tasks under the concurrency budget. Tasks queue in
// submission order and start as workers free up; one task's failure never
// cancels its siblings, and the pool always drains to completion. The
// returned slice has exactly one Outcome per task, in task order.
//
// In dry-run mode no transfer runs and no filesystem write happens: every
// task is reported as skipped, keeping the ordering and reporting of a real
// run's plan.
func (e *Engine) runPool(ctx context.Context, tasks []Task, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	if dryRun {
		for i, task := range tasks {
			outcomes[i] = Outcome{
				Task:       task,
				Status:     StatusSkipped,
				SkipReason: SkipDryRun,
			}
			e.reporter.TaskCompleted(task, outcomes[i])
		}
		return outcomes
	}

	workers := e.opts.Concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	type job struct {
		idx  int
		task Task
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out := e.transfer.fetch(ctx, j.task)
				if out.Status == StatusSuccess && e.archive != nil {
					e.archiveFile(ctx, j.task)
				}
				outcomes[j.idx] = out
				e.reporter.TaskCompleted(j.task, out)
			}
		}()
	}

	for i, task := range tasks {
		jobs <- job{idx: i, task: task}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// archiveFile mirrors a completed download to the configured bucket.
// Best-effort: a mirror failure never demotes the local outcome.
func (e *Engine) archiveFile(ctx context.Context, task Task) {
	key := archiveKey(task)
	if err := e.archive.Store(ctx, key, task.Dest); err != nil {
		e.log.Warn("archive upload failed",
			zap.String("file", task.Descriptor.Name),
			zap.String("key", key),
			zap.Error(err))
	}
}
