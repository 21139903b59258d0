// Package vsphere provides a wrapper around the VMware vSphere API.
package vsphere

import (
	"context"
)

// TaskState is the reported state of a remote asynchronous operation.
type TaskState string

const (
	TaskQueued  TaskState = "queued"
	TaskRunning TaskState = "running"
	TaskSuccess TaskState = "success"
	TaskError   TaskState = "error"
)

// TaskStatus is a point-in-time snapshot of a remote task.
type TaskStatus struct {
	State    TaskState
	Progress int    // percent, only meaningful while running
	Message  string // fault message, only set on error
}

// Task is a handle to an asynchronous operation submitted to the endpoint.
// A handle is owned by the worker that submitted the operation and must not
// be shared across workers.
type Task interface {
	// Status fetches the current task state from the endpoint.
	Status(ctx context.Context) (TaskStatus, error)
}

// NIC describes one guest network adapter as reported by the guest tools.
type NIC struct {
	MAC string
	IPs []string
}

// CloneRequest describes the placement of a new clone. Empty fields fall
// back to the template's own placement (folder, datastore) or the default
// resource pool.
type CloneRequest struct {
	Name         string
	Datacenter   string
	Cluster      string
	ResourcePool string
	Folder       string
	Datastore    string

	// Linked clones reuse the disks of Snapshot instead of copying them.
	Linked   bool
	Snapshot string
}

// VirtualMachine is the per-VM operation surface used by the workers.
type VirtualMachine interface {
	// Name returns the inventory name of the virtual machine.
	Name() string

	// PoweredOn reports whether the VM is currently powered on.
	PoweredOn(ctx context.Context) (bool, error)

	// Clone submits a clone of this VM (or template) and returns the task.
	Clone(ctx context.Context, req CloneRequest) (Task, error)

	// PowerOn submits a power-on of this VM and returns the task.
	PowerOn(ctx context.Context) (Task, error)

	// MigrateTo submits a live migration of this VM to the given host.
	MigrateTo(ctx context.Context, host Host) (Task, error)

	// SetMAC submits a reconfigure task assigning a manual MAC address to
	// the VM's first ethernet adapter.
	SetMAC(ctx context.Context, mac string) (Task, error)

	// GuestNICs returns the adapters currently reported by the guest.
	GuestNICs(ctx context.Context) ([]NIC, error)
}

// Host is a physical host that can receive migrated VMs.
type Host interface {
	Name() string
}

// Client is the session-scoped surface of the management endpoint. One
// Client is shared read-only by all workers; its methods are safe for
// concurrent independent calls.
type Client interface {
	// VirtualMachine looks up a VM or template by inventory name.
	VirtualMachine(ctx context.Context, name string) (VirtualMachine, error)

	// Host looks up a host system by inventory name.
	Host(ctx context.Context, name string) (Host, error)

	// VMExists reports whether a VM with the given name already exists.
	VMExists(ctx context.Context, name string) (bool, error)

	// Logout terminates the session.
	Logout(ctx context.Context) error
}
