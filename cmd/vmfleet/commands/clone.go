package commands

import (
	"github.com/spf13/cobra"

	"github.com/vmfleet/vmfleet/cmd/vmfleet/handlers"
)

// Clone returns the command for cloning a template into many VMs.
//
// The work list comes from either --basename (generated names) or --csv
// (per-unit placement rows); exactly one of the two must be given.
//
// Examples:
//
//	# Ten clones web-1 .. web-10, powered on, three at a time
//	vmfleet clone -H vcenter.example.com -u admin -t web-template \
//	  -b web -n 10 -T 3
//
//	# Per-unit placement from a CSV file, report addresses
//	vmfleet clone -H vcenter.example.com -u admin -t web-template \
//	  -C fleet.csv -m -i
func Clone() *cobra.Command {
	var opts handlers.CloneOptions

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a template into many virtual machines",
		Long: `Clone a template into many virtual machines.

Units are dispatched to a bounded pool of workers. Each worker clones,
optionally reconfigures and powers on, resolves the guest's network
identity, and runs a post-script, before taking the next unit. Unit
failures are logged and counted; they never abort the run.

Generated names are <basename>-<count>, <basename>-<count+1>, and so on.
CSV rows hold five semicolon-delimited double-quoted fields:
"name";"resource pool";"folder";"mac";"post script" - empty optional
fields fall back to the matching command-line flag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Clone(cmd.Context(), opts)
		},
	}

	addSessionFlags(cmd, &opts.Session)

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "Template to clone from")
	cmd.Flags().StringVarP(&opts.Basename, "basename", "b", "", "Base name for generated clone names")
	cmd.Flags().IntVarP(&opts.Count, "count", "c", 1, "Starting number appended to the basename")
	cmd.Flags().IntVarP(&opts.Amount, "number", "n", 1, "Number of clones to create")
	cmd.Flags().StringVarP(&opts.CSVPath, "csv", "C", "", "CSV file with per-unit placement rows")
	cmd.Flags().StringVar(&opts.Datacenter, "datacenter", "", "Datacenter to place clones in")
	cmd.Flags().StringVar(&opts.Cluster, "cluster", "", "Cluster whose root resource pool receives clones")
	cmd.Flags().StringVar(&opts.Datastore, "datastore", "", "Datastore for clone disks (default: template's)")
	cmd.Flags().StringVar(&opts.Folder, "folder", "", "Inventory folder for clones (default: template's)")
	cmd.Flags().StringVar(&opts.ResourcePool, "resource-pool", "", "Resource pool for clones")
	cmd.Flags().BoolVarP(&opts.Linked, "linked", "L", false, "Create linked clones from a snapshot")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "Template snapshot backing linked clones")
	cmd.Flags().StringVar(&opts.MAC, "mac", "", "MAC address override (single clone only)")
	cmd.Flags().BoolVarP(&opts.NoPowerOn, "no-power-on", "P", false, "Leave clones powered off")
	cmd.Flags().BoolVarP(&opts.IPv6, "six", "6", false, "Resolve IPv6 guest addresses instead of IPv4")
	cmd.Flags().BoolVarP(&opts.PrintMACs, "print-macs", "m", false, "Report each clone's MAC address")
	cmd.Flags().BoolVarP(&opts.PrintIPs, "print-ips", "i", false, "Report each clone's IP address")
	cmd.Flags().StringVarP(&opts.PostScript, "post-script", "s", "", "Script to run after each unit completes")
	cmd.Flags().IntVarP(&opts.Threads, "threads", "T", 0, "Number of concurrent workers (default 1)")
	cmd.Flags().IntVarP(&opts.WaitMax, "wait-max", "w", 0, "Seconds to wait for tasks and guest info (default 120)")

	_ = cmd.MarkFlagRequired("template")

	return cmd
}
