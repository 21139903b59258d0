// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/config"
	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
	"github.com/vmfleet/vmfleet/internal/util/retry"
)

// Fallbacks for values neither a flag nor the defaults file set.
const (
	defaultPort     = 443
	defaultThreads  = 1
	defaultWaitMax  = 120 * time.Second
	defaultInterval = 30 * time.Second
)

// SessionOptions are the endpoint, logging, and defaults-file settings
// shared by every subcommand that opens a session.
type SessionOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Insecure bool

	ConfigPath  string
	LogFile     string
	Verbose     bool
	Debug       bool
	MetricsAddr string
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// newClient opens a session against the endpoint.
	newClient = func(ctx context.Context, conn config.Connection) (vsphere.Client, error) {
		return vsphere.Connect(ctx, conn.Host, conn.Port, conn.User, conn.Password, conn.Insecure)
	}

	// loadConfigFile loads the YAML defaults file.
	loadConfigFile = config.Load

	// lookupRetryOpts tune the inventory lookup backoff.
	lookupRetryOpts = []retry.Option{
		retry.WithMaxRetries(2),
		retry.WithInitialDelay(2 * time.Second),
	}
)

// resolveConnection merges flag values with the optional defaults file and
// fills in the password, prompting when allowed. The returned file carries
// the run-wide defaults (threads, wait, interval) for the caller.
func resolveConnection(opts SessionOptions) (*config.File, config.Connection, error) {
	var file *config.File
	if opts.ConfigPath != "" {
		f, err := loadConfigFile(opts.ConfigPath)
		if err != nil {
			return nil, config.Connection{}, err
		}
		file = f
	}

	conn := config.Connection{
		Host:     opts.Host,
		Port:     opts.Port,
		User:     opts.User,
		Password: opts.Password,
		Insecure: opts.Insecure,
	}
	file.Merge(&conn)
	if conn.Port == 0 {
		conn.Port = defaultPort
	}

	if err := conn.Validate(); err != nil {
		return nil, config.Connection{}, err
	}
	if err := resolvePassword(&conn); err != nil {
		return nil, config.Connection{}, err
	}
	return file, conn, nil
}

// pickInt returns the flag value when set, then the defaults-file value,
// then the fallback.
func pickInt(flag, fromFile, fallback int) int {
	if flag > 0 {
		return flag
	}
	if fromFile > 0 {
		return fromFile
	}
	return fallback
}

// pickDuration is pickInt for second-granularity duration settings.
func pickDuration(flagSeconds, fileSeconds int, fallback time.Duration) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	if fileSeconds > 0 {
		return time.Duration(fileSeconds) * time.Second
	}
	return fallback
}

// fileDefaults unpacks the defaults block of a possibly-nil file.
func fileDefaults(f *config.File) (waitMax, interval, threads int) {
	if f == nil {
		return 0, 0, 0
	}
	return f.Defaults.WaitMax, f.Defaults.Interval, f.Defaults.Threads
}

// lookupVM finds a VM by name, retrying transient endpoint failures.
// A missing inventory object is not transient and fails immediately.
func lookupVM(ctx context.Context, client vsphere.Client, name string) (vsphere.VirtualMachine, error) {
	var vm vsphere.VirtualMachine
	err := retry.Do(ctx, func() error {
		v, err := client.VirtualMachine(ctx, name)
		if err != nil {
			if vsphere.IsNotFound(err) {
				return retry.Fatal(err)
			}
			return err
		}
		vm = v
		return nil
	}, lookupRetryOpts...)
	if err != nil {
		return nil, err
	}
	return vm, nil
}

// lookupHost finds a host by name, retrying transient endpoint failures.
func lookupHost(ctx context.Context, client vsphere.Client, name string) (vsphere.Host, error) {
	var host vsphere.Host
	err := retry.Do(ctx, func() error {
		h, err := client.Host(ctx, name)
		if err != nil {
			if vsphere.IsNotFound(err) {
				return retry.Fatal(err)
			}
			return err
		}
		host = h
		return nil
	}, lookupRetryOpts...)
	if err != nil {
		return nil, err
	}
	return host, nil
}

// logout ends the session. It runs after the command context may already
// be cancelled, so it gets its own short deadline.
func logout(ctx context.Context, client vsphere.Client, log logr.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := client.Logout(ctx); err != nil {
		log.V(1).Info("logout failed", "error", fmt.Sprint(err))
	}
}
