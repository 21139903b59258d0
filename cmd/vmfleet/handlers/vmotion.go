package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/logging"
	"github.com/vmfleet/vmfleet/internal/metrics"
	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
	"github.com/vmfleet/vmfleet/internal/vmotion"
)

// VmotionOptions are the flag values of the vmotion command.
type VmotionOptions struct {
	Session SessionOptions

	VMFile     string
	TargetFile string
	Interval   int
	Threads    int
	WaitMax    int
	OneRun     bool
}

// Vmotion runs the relocation loop: resolve the listed VMs and hosts, then
// let workers draw random pairs until interrupted (or, with one-run, until
// each VM has been relocated once).
func Vmotion(ctx context.Context, opts VmotionOptions) error {
	out, closeLog, err := logging.Open(opts.Session.LogFile)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck
	log := logging.New(out, logging.Verbosity(opts.Session.Verbose, opts.Session.Debug))

	file, conn, err := resolveConnection(opts.Session)
	if err != nil {
		return err
	}
	fileWaitMax, fileInterval, fileThreads := fileDefaults(file)

	set := metrics.New()
	set.Serve(opts.Session.MetricsAddr, func(err error) {
		log.Error(err, "metrics listener failed")
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, conn)
	if err != nil {
		return err
	}
	defer logout(ctx, client, log)

	vms, err := resolveVMs(ctx, client, opts.VMFile, log)
	if err != nil {
		return err
	}
	hosts, err := resolveHosts(ctx, client, opts.TargetFile, log)
	if err != nil {
		return err
	}

	loop := &vmotion.Loop{
		VMs:      vms,
		Hosts:    hosts,
		Workers:  pickInt(opts.Threads, fileThreads, defaultThreads),
		Interval: pickDuration(opts.Interval, fileInterval, defaultInterval),
		MaxWait:  pickDuration(opts.WaitMax, fileWaitMax, defaultWaitMax),
		OneRun:   opts.OneRun,
		Log:      log,
		Metrics:  set,
	}
	loop.Run(ctx)
	return nil
}

// resolveVMs reads the VM list file and looks each name up on the
// endpoint. Unresolvable names are dropped with a warning; an empty
// effective list leaves the loop nothing to do and is fatal.
func resolveVMs(ctx context.Context, client vsphere.Client, path string, log logr.Logger) ([]vsphere.VirtualMachine, error) {
	names, err := vmotion.ReadList(path)
	if err != nil {
		return nil, err
	}

	vms := make([]vsphere.VirtualMachine, 0, len(names))
	for _, name := range names {
		vm, err := lookupVM(ctx, client, name)
		if err != nil {
			log.Info("dropping unresolvable vm", "name", name, "error", fmt.Sprint(err))
			continue
		}
		vms = append(vms, vm)
	}
	if len(vms) == 0 {
		return nil, fmt.Errorf("no usable vms in %s", path)
	}
	return vms, nil
}

// resolveHosts reads the target list file and looks each host up on the
// endpoint, with the same drop-and-warn handling as resolveVMs.
func resolveHosts(ctx context.Context, client vsphere.Client, path string, log logr.Logger) ([]vsphere.Host, error) {
	names, err := vmotion.ReadList(path)
	if err != nil {
		return nil, err
	}

	hosts := make([]vsphere.Host, 0, len(names))
	for _, name := range names {
		host, err := lookupHost(ctx, client, name)
		if err != nil {
			log.Info("dropping unresolvable host", "name", name, "error", fmt.Sprint(err))
			continue
		}
		hosts = append(hosts, host)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no usable hosts in %s", path)
	}
	return hosts, nil
}
