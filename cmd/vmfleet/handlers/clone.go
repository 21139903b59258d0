package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/deploy"
	"github.com/vmfleet/vmfleet/internal/logging"
	"github.com/vmfleet/vmfleet/internal/metrics"
)

// CloneOptions are the flag values of the clone command.
type CloneOptions struct {
	Session SessionOptions

	Template string
	Basename string
	Count    int
	Amount   int
	CSVPath  string

	Datacenter   string
	Cluster      string
	Datastore    string
	Folder       string
	ResourcePool string

	Linked   bool
	Snapshot string
	MAC      string

	NoPowerOn  bool
	IPv6       bool
	PrintMACs  bool
	PrintIPs   bool
	PostScript string

	Threads int
	WaitMax int
}

// Clone runs the bounded multi-clone pipeline: build the work list, open a
// session, and dispatch units to a worker pool. Per-unit failures are
// logged and counted; only setup failures make the command fail.
func Clone(ctx context.Context, opts CloneOptions) error {
	if err := validateClone(opts); err != nil {
		return err
	}

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
	fileWaitMax, _, fileThreads := fileDefaults(file)

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

	template, err := lookupVM(ctx, client, opts.Template)
	if err != nil {
		return fmt.Errorf("failed to find template %s: %w", opts.Template, err)
	}

	specs, err := buildWorkList(opts, log)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("work list is empty")
	}

	pool := &deploy.Pool{
		Client:   client,
		Template: template,
		Opts: deploy.Options{
			Workers:  pickInt(opts.Threads, fileThreads, defaultThreads),
			MaxWait:  pickDuration(opts.WaitMax, fileWaitMax, defaultWaitMax),
			PowerOn:  !opts.NoPowerOn,
			PrintMAC: opts.PrintMACs,
			PrintIP:  opts.PrintIPs,
			IPv6:     opts.IPv6,
			Linked:   opts.Linked,
			Snapshot: opts.Snapshot,
		},
		Log:     log,
		Metrics: set,
	}
	pool.Run(ctx, specs)
	return nil
}

// validateClone rejects flag combinations before any endpoint traffic.
func validateClone(opts CloneOptions) error {
	switch {
	case opts.Basename == "" && opts.CSVPath == "":
		return fmt.Errorf("either --basename or --csv is required")
	case opts.Basename != "" && opts.CSVPath != "":
		return fmt.Errorf("--basename and --csv are mutually exclusive")
	}
	if opts.CSVPath == "" && opts.Amount < 1 {
		return fmt.Errorf("--number must be at least 1")
	}
	if opts.MAC != "" && (opts.CSVPath != "" || opts.Amount != 1) {
		return fmt.Errorf("--mac applies to a single generated clone only")
	}
	if opts.Linked && opts.Snapshot == "" {
		return fmt.Errorf("--linked requires --snapshot")
	}
	return nil
}

// buildWorkList turns the flags into ordered clone specs, either generated
// from the basename or loaded from the CSV file.
func buildWorkList(opts CloneOptions, log logr.Logger) ([]deploy.Spec, error) {
	defaults := deploy.Defaults{
		Datacenter:   opts.Datacenter,
		Cluster:      opts.Cluster,
		ResourcePool: opts.ResourcePool,
		Folder:       opts.Folder,
		Datastore:    opts.Datastore,
		MAC:          opts.MAC,
		PostScript:   opts.PostScript,
	}
	if opts.CSVPath != "" {
		return deploy.LoadCSV(opts.CSVPath, defaults, log)
	}
	return deploy.Generate(opts.Basename, opts.Count, opts.Amount, defaults), nil
}
