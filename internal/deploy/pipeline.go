package deploy

import (
	"context"
	"strings"
	"time"

	"github.com/vmfleet/vmfleet/internal/guestnet"
	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
	"github.com/vmfleet/vmfleet/internal/postscript"
	"github.com/vmfleet/vmfleet/internal/task"
)

type outcome string

const (
	outcomeSuccess  outcome = "success"
	outcomeError    outcome = "error"
	outcomeTimedOut outcome = "timed-out"
	outcomeSkipped  outcome = "skipped"
)

func fromTask(o task.Outcome) outcome {
	if o.State == task.TimedOut {
		return outcomeTimedOut
	}
	return outcomeError
}

// runOne executes the full pipeline for a single unit: clone, optional MAC
// override, optional power-on, identity resolution, post-script, log line.
// Every failure is converted to a terminal outcome here; nothing escapes
// to the pool's join point.
func (p *Pool) runOne(ctx context.Context, spec Spec) outcome {
	log := p.Log.WithValues("unit", spec.Name)
	poller := task.Poller{Interval: p.taskInterval, MaxWait: p.Opts.MaxWait, Log: p.Log}

	exists, err := p.Client.VMExists(ctx, spec.Name)
	if err != nil {
		log.Error(err, "failed to check for existing virtual machine")
		return outcomeError
	}
	if exists {
		log.Info("virtual machine already exists, not creating")
		return outcomeSkipped
	}

	log.V(1).Info("submitting clone", "template", p.Template.Name())
	cloneTask, err := p.Template.Clone(ctx, vsphere.CloneRequest{
		Name:         spec.Name,
		Datacenter:   spec.Datacenter,
		Cluster:      spec.Cluster,
		ResourcePool: spec.ResourcePool,
		Folder:       spec.Folder,
		Datastore:    spec.Datastore,
		Linked:       p.Opts.Linked,
		Snapshot:     p.Opts.Snapshot,
	})
	if err != nil {
		log.Error(err, "failed to submit clone")
		return outcomeError
	}

	if o := poller.Poll(ctx, spec.Name, cloneTask); o.Failed() {
		log.Info("clone failed", "outcome", o.State, "detail", o.Detail, "elapsed", o.Elapsed.Round(time.Second).String())
		return fromTask(o)
	}
	log.V(1).Info("clone completed")

	vm, err := p.Client.VirtualMachine(ctx, spec.Name)
	if err != nil {
		log.Error(err, "failed to look up clone after creation")
		return outcomeError
	}

	// A failed MAC override leaves the unit usable, matching the lenient
	// handling of reconfigure steps elsewhere; it is logged and the
	// pipeline continues.
	if spec.MAC != "" {
		log.V(1).Info("applying mac override", "mac", spec.MAC)
		macTask, err := vm.SetMAC(ctx, spec.MAC)
		if err != nil {
			log.Error(err, "failed to submit mac override")
		} else if o := poller.Poll(ctx, spec.Name, macTask); o.Failed() {
			log.Info("mac override failed", "outcome", o.State, "detail", o.Detail)
		}
	}

	poweredOn := false
	if p.Opts.PowerOn {
		log.V(1).Info("powering on")
		powerTask, err := vm.PowerOn(ctx)
		if err != nil {
			log.Error(err, "failed to submit power on")
			return outcomeError
		}
		if o := poller.Poll(ctx, spec.Name, powerTask); o.Failed() {
			log.Info("power on failed", "outcome", o.State, "detail", o.Detail)
			return fromTask(o)
		}
		poweredOn = true
	}

	var id guestnet.Identity
	wantIdentity := p.Opts.PrintMAC || p.Opts.PrintIP
	if poweredOn && wantIdentity {
		log.V(1).Info("resolving guest network identity")
		resolver := guestnet.Resolver{
			Interval: p.guestInterval,
			MaxWait:  p.Opts.MaxWait,
			IPv6:     p.Opts.IPv6,
			Log:      p.Log,
		}
		id = resolver.Resolve(ctx, vm)
	} else if wantIdentity {
		log.Info("power on is disabled, guest identity cannot be gathered")
	}
	if id.MAC == "" {
		id.MAC = spec.MAC
	}

	if spec.PostScript != "" {
		args := ScriptArgs(spec.Name, id.MAC, id.IP, spec.MAC != "", p.Opts.PrintMAC, p.Opts.PrintIP, poweredOn)
		log.V(1).Info("running post-script", "script", spec.PostScript, "args", strings.Join(args, " "))
		code, err := postscript.Run(ctx, spec.PostScript, args)
		if err != nil {
			log.Info("post-script could not be run", "script", spec.PostScript, "reason", err.Error())
		} else if code != 0 {
			log.Info("post-script failed", "script", spec.PostScript, "exit_code", code)
		}
	}

	kv := []any{"outcome", outcomeSuccess}
	if p.Opts.PrintMAC || spec.MAC != "" {
		kv = append(kv, "mac", orNone(id.MAC))
	}
	if p.Opts.PrintIP {
		kv = append(kv, "ip", id.IPOrNone())
	}
	log.Info("clone complete", kv...)
	return outcomeSuccess
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
