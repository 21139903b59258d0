package commands

import (
	"github.com/spf13/cobra"

	"github.com/vmfleet/vmfleet/cmd/vmfleet/handlers"
)

// Vmotion returns the command for continuous random VM relocation.
//
// Examples:
//
//	# Relocate random VMs between the listed hosts every 30 seconds
//	vmfleet vmotion -H vcenter.example.com -u admin -V vms.txt -t hosts.txt
//
//	# One pass over the VM list with four workers, then exit
//	vmfleet vmotion -H vcenter.example.com -u admin -V vms.txt -t hosts.txt \
//	  -T 4 -1
func Vmotion() *cobra.Command {
	var opts handlers.VmotionOptions

	cmd := &cobra.Command{
		Use:   "vmotion",
		Short: "Continuously relocate random VMs across hosts",
		Long: `Continuously relocate random VMs across hosts.

Workers draw uniformly random (VM, host) pairs from the two list files and
submit live migrations until interrupted. VMs that are not powered on are
skipped with a warning. Interrupting the run stops new draws; migrations
already in flight are polled to completion first.

List files hold one inventory name per line; blank lines and lines
starting with # are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Vmotion(cmd.Context(), opts)
		},
	}

	addSessionFlags(cmd, &opts.Session)

	cmd.Flags().StringVarP(&opts.VMFile, "vms", "V", "", "File listing candidate VMs, one name per line")
	cmd.Flags().StringVarP(&opts.TargetFile, "targets", "t", "", "File listing destination hosts, one name per line")
	cmd.Flags().IntVarP(&opts.Interval, "interval", "i", 0, "Seconds each worker pauses between relocations (default 30)")
	cmd.Flags().IntVarP(&opts.Threads, "threads", "T", 0, "Number of concurrent workers (default 1)")
	cmd.Flags().IntVarP(&opts.WaitMax, "wait-max", "w", 0, "Seconds to wait for each relocation (default 120)")
	cmd.Flags().BoolVarP(&opts.OneRun, "one-run", "1", false, "Relocate each listed VM once, then exit")

	_ = cmd.MarkFlagRequired("vms")
	_ = cmd.MarkFlagRequired("targets")

	return cmd
}
