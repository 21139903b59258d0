// Package main is the entry point for the vmfleet CLI.
//
// vmfleet is a command-line tool for bulk virtual machine lifecycle
// operations against a VMware vSphere endpoint: cloning a template into
// many VMs with a bounded worker pool, and continuously relocating random
// VMs across hosts for load testing.
//
// Commands: clone, vmotion, version.
//
// For detailed usage information, run:
//
//	vmfleet --help
package main

import (
	"fmt"
	"os"

	"github.com/vmfleet/vmfleet/cmd/vmfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
