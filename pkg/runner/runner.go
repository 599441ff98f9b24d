package runner

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
)

// Run executes the plan's pending operations with at most config.Jobs
// in flight and never two on the same table at once. Workers pull from
// a single queue fed in plan order, so a free worker always takes the
// highest-priority remaining operation. A failure stops nothing but
// the operation it happened in.
//
// Cancelling ctx stops dispatch; statements already running are left
// to finish so the server is never left mid-statement. Operations
// never dispatched stay pending.
func Run(ctx context.Context, p plan.Plan, exec Executor, config Config, logger *logrus.Logger) {
	pending := p.Pending()
	if len(pending) == 0 {
		logger.Info("Nothing to execute")
		return
	}

	if config.DryRun {
		for _, op := range pending {
			op.MarkDryRun()
			logger.Infof("[dry-run] %s (%s)", op.Statement(), op.Reason)
		}
		return
	}

	jobs := config.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(pending) {
		jobs = len(pending)
	}

	queue := make(chan *plan.Operation)
	locks := newTableLocks()

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for op := range queue {
				runOne(ctx, op, exec, locks, logger, worker)
			}
		}(i)
	}

feed:
	for _, op := range pending {
		select {
		case queue <- op:
		case <-ctx.Done():
			logger.Warnf("Stopping dispatch: %v", ctx.Err())
			break feed
		}
	}
	close(queue)
	wg.Wait()
}

func runOne(ctx context.Context, op *plan.Operation, exec Executor, locks *tableLocks, logger *logrus.Logger, worker int) {
	name := op.Target.Name()
	locks.acquire(name)
	defer locks.release(name)

	// Dispatch was cancelled while this operation waited for its table
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	op.MarkRunning(started)
	logger.Infof("worker %d: %s (%s)", worker, op.Statement(), op.Reason)

	// The statement itself is detached from cancellation: an
	// interrupted VACUUM just wastes the work done so far.
	err := exec.Execute(context.WithoutCancel(ctx), op)
	elapsed := time.Since(started)

	if err != nil {
		op.MarkFailed(err, elapsed)
		logger.Errorf("worker %d: %s on %s failed after %s: %v",
			worker, op.Kind.Verb(), name, elapsed.Round(time.Millisecond), err)
		return
	}

	op.MarkSucceeded(elapsed)
	logger.Infof("worker %d: %s on %s done in %s",
		worker, op.Kind.Verb(), name, elapsed.Round(time.Millisecond))
}
