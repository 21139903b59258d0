// Package task polls remote asynchronous operations to a terminal state.
package task

import (
	"time"

	"context"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
)

// State classifies the final outcome of a polled task.
type State string

const (
	// Success means the remote operation completed.
	Success State = "success"
	// Error means the remote operation failed or polling itself failed.
	Error State = "error"
	// TimedOut means no terminal state was observed within the deadline.
	// The remote operation may still be running.
	TimedOut State = "timed-out"
)

// Outcome is the result of polling one task to completion.
type Outcome struct {
	State   State
	Detail  string
	Elapsed time.Duration
}

// Failed reports whether the outcome should mark its unit as failed.
func (o Outcome) Failed() bool {
	return o.State != Success
}

// Poller polls tasks at a fixed interval until they reach a terminal state
// or MaxWait elapses.
type Poller struct {
	Interval time.Duration
	MaxWait  time.Duration
	Log      logr.Logger
}

// Poll blocks until the task reaches a terminal state, the deadline
// elapses, or ctx is cancelled. A deadline is reported as a TimedOut
// outcome, not an error. The name is only used for log attribution.
func (p Poller) Poll(ctx context.Context, name string, t vsphere.Task) Outcome {
	start := time.Now()
	deadline := time.NewTimer(p.MaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		status, err := t.Status(ctx)
		if err != nil {
			return Outcome{State: Error, Detail: err.Error(), Elapsed: time.Since(start)}
		}

		switch status.State {
		case vsphere.TaskSuccess:
			return Outcome{State: Success, Elapsed: time.Since(start)}
		case vsphere.TaskError:
			return Outcome{State: Error, Detail: status.Message, Elapsed: time.Since(start)}
		case vsphere.TaskRunning:
			p.Log.V(2).Info("task running", "unit", name, "progress", status.Progress)
		case vsphere.TaskQueued:
			p.Log.V(2).Info("task queued", "unit", name)
		}

		select {
		case <-ctx.Done():
			return Outcome{State: Error, Detail: ctx.Err().Error(), Elapsed: time.Since(start)}
		case <-deadline.C:
			return Outcome{State: TimedOut, Detail: "no terminal state within deadline", Elapsed: time.Since(start)}
		case <-ticker.C:
		}
	}
}
