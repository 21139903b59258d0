// Package vmotion relocates running virtual machines across a pool of
// hosts, continuously and at random, until interrupted.
package vmotion

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/metrics"
	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
	"github.com/vmfleet/vmfleet/internal/task"
)

// Relocations report progress rarely; a short poll interval keeps the
// completion latency low.
const relocationPollInterval = 1 * time.Second

// pair is one randomly drawn relocation unit.
type pair struct {
	vm   vsphere.VirtualMachine
	host vsphere.Host
}

// Loop runs relocations on a bounded set of workers. In the default mode
// each worker draws uniformly random (VM, host) pairs forever; with OneRun
// set, the VM list is walked exactly once and the loop drains.
type Loop struct {
	VMs      []vsphere.VirtualMachine
	Hosts    []vsphere.Host
	Workers  int
	Interval time.Duration
	MaxWait  time.Duration
	OneRun   bool
	Log      logr.Logger
	Metrics  *metrics.Set

	// Overridable in tests.
	pollInterval time.Duration
	pick         func(n int) int
}

// Run dispatches relocations until ctx is cancelled (or, with OneRun, the
// single pass completes). Cancellation stops new dispatches; in-flight
// relocations poll to their own terminal state before Run returns.
func (l *Loop) Run(ctx context.Context) {
	workers := l.effectiveWorkers()
	if l.pollInterval == 0 {
		l.pollInterval = relocationPollInterval
	}
	if l.pick == nil {
		l.pick = rand.Intn
	}

	// In-flight polls must survive the interrupt that stops the loop.
	drain := context.WithoutCancel(ctx)

	l.Log.V(1).Info("starting relocation loop", "vms", len(l.VMs), "hosts", len(l.Hosts), "workers", workers, "one_run", l.OneRun)

	var wg sync.WaitGroup
	if l.OneRun {
		queue := make(chan pair, len(l.VMs))
		for _, vm := range l.VMs {
			queue <- pair{vm: vm, host: l.Hosts[l.pick(len(l.Hosts))]}
		}
		close(queue)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.drainQueue(ctx, drain, queue)
			}()
		}
	} else {
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.drawForever(ctx, drain)
			}()
		}
	}
	wg.Wait()

	l.Log.Info("relocation loop stopped")
}

// effectiveWorkers clamps the worker count to the VM list size; more
// workers than VMs only pile relocations onto the same guests.
func (l *Loop) effectiveWorkers() int {
	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(l.VMs) {
		l.Log.Info("more workers than vms, lowering worker count", "workers", workers, "vms", len(l.VMs))
		workers = len(l.VMs)
	}
	return workers
}

// drawForever relocates random pairs until ctx is cancelled, pacing each
// draw by the configured interval since this worker's own last completion.
func (l *Loop) drawForever(ctx, drain context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p := pair{
			vm:   l.VMs[l.pick(len(l.VMs))],
			host: l.Hosts[l.pick(len(l.Hosts))],
		}
		l.relocate(drain, p)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.Interval):
		}
	}
}

// drainQueue processes the one-run queue until it is empty or ctx is
// cancelled. The interval paces relocations within a worker; the last item
// is not followed by a wait.
func (l *Loop) drainQueue(ctx, drain context.Context, queue <-chan pair) {
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-queue:
			if !ok {
				return
			}
			if !first {
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.Interval):
				}
			}
			first = false
			l.relocate(drain, p)
		}
	}
}

// relocate runs one relocation unit end to end: power-state check, submit,
// poll, log. Failures are logged and counted, never propagated.
func (l *Loop) relocate(ctx context.Context, p pair) {
	log := l.Log.WithValues("unit", p.vm.Name(), "host", p.host.Name())

	on, err := p.vm.PoweredOn(ctx)
	if err != nil {
		log.Error(err, "failed to check power state")
		l.Metrics.CountUnit("vmotion", "error")
		return
	}
	if !on {
		log.Info("vm is not powered on, relocation needs a running vm")
		l.Metrics.CountUnit("vmotion", "skipped")
		return
	}

	log.V(1).Info("starting relocation")
	migrateTask, err := p.vm.MigrateTo(ctx, p.host)
	if err != nil {
		log.Error(err, "failed to submit relocation")
		l.Metrics.CountUnit("vmotion", "error")
		return
	}

	poller := task.Poller{Interval: l.pollInterval, MaxWait: l.MaxWait, Log: l.Log}
	o := poller.Poll(ctx, p.vm.Name(), migrateTask)
	l.Metrics.CountUnit("vmotion", string(o.State))
	if o.Failed() {
		log.Info("relocation failed", "outcome", o.State, "detail", o.Detail, "elapsed", o.Elapsed.Round(time.Second).String())
		return
	}
	log.Info("relocation finished", "elapsed", o.Elapsed.Round(time.Second).String())
}
