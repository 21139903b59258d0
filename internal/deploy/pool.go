package deploy

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/metrics"
	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
)

const (
	// Task state is checked every taskPollInterval, matching the pace the
	// endpoint refreshes task progress at.
	taskPollInterval = 2 * time.Second
	// Guest tools report network identity far less often than tasks
	// report progress.
	guestPollInterval = 5 * time.Second
)

// Options configure a clone run.
type Options struct {
	Workers  int
	MaxWait  time.Duration
	PowerOn  bool
	PrintMAC bool
	PrintIP  bool
	IPv6     bool
	Linked   bool
	Snapshot string
}

// Summary counts terminal unit outcomes for one run.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Pool dispatches clone units to a bounded set of concurrent workers.
// Each worker runs the full per-unit pipeline serially before taking the
// next queued unit.
type Pool struct {
	Client   vsphere.Client
	Template vsphere.VirtualMachine
	Opts     Options
	Log      logr.Logger
	Metrics  *metrics.Set

	// Poll intervals, overridable in tests.
	taskInterval  time.Duration
	guestInterval time.Duration
}

// Run processes every spec exactly once and returns after all units have
// reached a terminal outcome. Unit failures are logged and counted, never
// propagated.
func (p *Pool) Run(ctx context.Context, specs []Spec) Summary {
	workers := p.Opts.Workers
	if workers < 1 {
		workers = 1
	}
	if p.taskInterval == 0 {
		p.taskInterval = taskPollInterval
	}
	if p.guestInterval == 0 {
		p.guestInterval = guestPollInterval
	}

	p.Log.V(1).Info("starting clone pool", "units", len(specs), "workers", workers)

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)

	queue := make(chan Spec)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range queue {
				outcome := p.runOne(ctx, spec)
				p.Metrics.CountUnit("clone", string(outcome))

				mu.Lock()
				switch outcome {
				case outcomeSuccess:
					summary.Succeeded++
				case outcomeSkipped:
					summary.Skipped++
				default:
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, spec := range specs {
		select {
		case <-ctx.Done():
			p.Log.Info("interrupted, no further units will be dispatched")
			break feed
		case queue <- spec:
		}
	}
	close(queue)
	wg.Wait()

	p.Log.Info("clone pool finished", "succeeded", summary.Succeeded, "failed", summary.Failed, "skipped", summary.Skipped)
	return summary
}
