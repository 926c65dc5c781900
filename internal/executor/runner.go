package executor

import (
	"context"
	"time"

	"ccview-smoke/internal/catalog"
	"ccview-smoke/internal/types"

	"github.com/apex/log"
)

// Observer is told about each record as soon as it is produced
type Observer interface {
	OnRecord(index, total int, record types.TestRecord)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(index, total int, record types.TestRecord)

// OnRecord calls f
func (f ObserverFunc) OnRecord(index, total int, record types.TestRecord) {
	f(index, total, record)
}

// TestRunner walks a catalog one endpoint at a time
type TestRunner struct {
	executor Executor
	pacing   time.Duration
	observer Observer
	sleep    func(ctx context.Context, d time.Duration)
}

// NewTestRunner creates a runner. pacing is waited after every request.
func NewTestRunner(executor Executor, pacing time.Duration, observer Observer) *TestRunner {
	return &TestRunner{
		executor: executor,
		pacing:   pacing,
		observer: observer,
		sleep:    sleepContext,
	}
}

// Run tests every endpoint in catalog order and returns one record per
// endpoint, in the same order. Failures never stop the loop.
func (r *TestRunner) Run(ctx context.Context, cat *catalog.Catalog) []types.TestRecord {
	endpoints := cat.Endpoints()
	total := len(endpoints)
	records := make([]types.TestRecord, 0, total)

	for i, endpoint := range endpoints {
		ctxLog := log.WithFields(log.Fields{
			"endpoint": endpoint.Name,
			"index":    i + 1,
			"total":    total,
		})
		ctxLog.Debug("testing endpoint")

		result := r.executor.Execute(ctx, endpoint.Path, endpoint.Params)
		record := types.NewTestRecord(endpoint, result)
		records = append(records, record)

		if !result.Success {
			ctxLog.WithField("status", result.Status).Warnf("endpoint failed: %s", result.Error)
		}
		if r.observer != nil {
			r.observer.OnRecord(i+1, total, record)
		}

		r.sleep(ctx, r.pacing)
	}

	return records
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
