package vsphere

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"
)

// RealClient implements Client using the vSphere SOAP API via govmomi.
type RealClient struct {
	client *govmomi.Client
	finder *find.Finder
	pc     *property.Collector
}

// Connect logs in to the endpoint and returns a session-backed client.
// With insecure set, TLS certificate verification is disabled.
func Connect(ctx context.Context, host string, port int, user, password string, insecure bool) (*RealClient, error) {
	u, err := soap.ParseURL(fmt.Sprintf("https://%s:%d/sdk", host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint url: %w", err)
	}
	u.User = url.UserPassword(user, password)

	c, err := govmomi.NewClient(ctx, u, insecure)
	if err != nil {
		if isInvalidLogin(err) {
			return nil, fmt.Errorf("authentication failed for %s@%s: %w", user, host, err)
		}
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", host, port, err)
	}

	finder := find.NewFinder(c.Client, true)
	// Single-datacenter environments get a default; multi-datacenter
	// environments rely on per-request datacenter selection.
	if dc, err := finder.DefaultDatacenter(ctx); err == nil {
		finder.SetDatacenter(dc)
	}

	return &RealClient{
		client: c,
		finder: finder,
		pc:     property.DefaultCollector(c.Client),
	}, nil
}

// VirtualMachine looks up a VM or template by inventory name.
func (c *RealClient) VirtualMachine(ctx context.Context, name string) (VirtualMachine, error) {
	vm, err := c.finder.VirtualMachine(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find virtual machine %s: %w", name, err)
	}
	return &realVM{c: c, vm: vm}, nil
}

// Host looks up a host system by inventory name.
func (c *RealClient) Host(ctx context.Context, name string) (Host, error) {
	host, err := c.finder.HostSystem(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find host %s: %w", name, err)
	}
	return &realHost{host: host}, nil
}

// VMExists reports whether a VM with the given name already exists.
func (c *RealClient) VMExists(ctx context.Context, name string) (bool, error) {
	_, err := c.finder.VirtualMachine(ctx, name)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up virtual machine %s: %w", name, err)
	}
	return true, nil
}

// Logout terminates the session.
func (c *RealClient) Logout(ctx context.Context) error {
	return c.client.Logout(ctx)
}

// scopedFinder returns a finder bound to the named datacenter, or the
// session default when no datacenter is requested.
func (c *RealClient) scopedFinder(ctx context.Context, datacenter string) (*find.Finder, error) {
	if datacenter == "" {
		return c.finder, nil
	}
	f := find.NewFinder(c.client.Client, true)
	dc, err := f.Datacenter(ctx, datacenter)
	if err != nil {
		return nil, fmt.Errorf("failed to find datacenter %s: %w", datacenter, err)
	}
	f.SetDatacenter(dc)
	return f, nil
}

type realHost struct {
	host *object.HostSystem
}

func (h *realHost) Name() string { return h.host.Name() }

type realVM struct {
	c  *RealClient
	vm *object.VirtualMachine
}

func (v *realVM) Name() string { return v.vm.Name() }

func (v *realVM) PoweredOn(ctx context.Context) (bool, error) {
	state, err := v.vm.PowerState(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get power state: %w", err)
	}
	return state == types.VirtualMachinePowerStatePoweredOn, nil
}

func (v *realVM) Clone(ctx context.Context, req CloneRequest) (Task, error) {
	finder, err := v.c.scopedFinder(ctx, req.Datacenter)
	if err != nil {
		return nil, err
	}

	relocate := types.VirtualMachineRelocateSpec{}

	pool, err := v.resolvePool(ctx, finder, req)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		ref := pool.Reference()
		relocate.Pool = &ref
	}

	datastore, err := v.resolveDatastore(ctx, finder, req.Datastore)
	if err != nil {
		return nil, err
	}
	if datastore != nil {
		relocate.Datastore = datastore
	}

	spec := types.VirtualMachineCloneSpec{
		PowerOn:  false,
		Template: false,
		Location: relocate,
	}

	if req.Linked {
		snapshot, err := v.vm.FindSnapshot(ctx, req.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to find snapshot %s: %w", req.Snapshot, err)
		}
		spec.Snapshot = snapshot
		spec.Location.DiskMoveType = string(types.VirtualMachineRelocateDiskMoveOptionsCreateNewChildDiskBacking)
	}

	folder, err := v.resolveFolder(ctx, finder, req)
	if err != nil {
		return nil, err
	}

	task, err := v.vm.Clone(ctx, folder, req.Name, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to submit clone of %s: %w", v.vm.Name(), err)
	}
	return v.c.newTask(task), nil
}

// resolvePool picks the target resource pool: the named pool, the root pool
// of the named cluster, or the endpoint's default pool.
func (v *realVM) resolvePool(ctx context.Context, finder *find.Finder, req CloneRequest) (*object.ResourcePool, error) {
	if req.ResourcePool != "" {
		pool, err := finder.ResourcePool(ctx, req.ResourcePool)
		if err != nil {
			return nil, fmt.Errorf("failed to find resource pool %s: %w", req.ResourcePool, err)
		}
		return pool, nil
	}
	if req.Cluster != "" {
		cluster, err := finder.ClusterComputeResource(ctx, req.Cluster)
		if err != nil {
			return nil, fmt.Errorf("failed to find cluster %s: %w", req.Cluster, err)
		}
		pool, err := cluster.ResourcePool(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get root resource pool of cluster %s: %w", req.Cluster, err)
		}
		return pool, nil
	}
	pool, err := finder.DefaultResourcePool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find default resource pool: %w", err)
	}
	return pool, nil
}

// resolveFolder picks the destination folder: the named folder, the
// datacenter's VM folder, or the template's own parent folder.
func (v *realVM) resolveFolder(ctx context.Context, finder *find.Finder, req CloneRequest) (*object.Folder, error) {
	if req.Folder != "" {
		folder, err := finder.Folder(ctx, req.Folder)
		if err != nil {
			return nil, fmt.Errorf("failed to find folder %s: %w", req.Folder, err)
		}
		return folder, nil
	}
	if req.Datacenter != "" {
		dc, err := finder.Datacenter(ctx, req.Datacenter)
		if err != nil {
			return nil, fmt.Errorf("failed to find datacenter %s: %w", req.Datacenter, err)
		}
		folders, err := dc.Folders(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get folders of datacenter %s: %w", req.Datacenter, err)
		}
		return folders.VmFolder, nil
	}

	var m mo.VirtualMachine
	if err := v.c.pc.RetrieveOne(ctx, v.vm.Reference(), []string{"parent"}, &m); err != nil {
		return nil, fmt.Errorf("failed to get template parent folder: %w", err)
	}
	if m.Parent == nil {
		return nil, fmt.Errorf("template %s has no parent folder", v.vm.Name())
	}
	return object.NewFolder(v.c.client.Client, *m.Parent), nil
}

// resolveDatastore picks the target datastore: the named datastore or the
// first datastore backing the template. A nil result keeps the clone on the
// template's storage.
func (v *realVM) resolveDatastore(ctx context.Context, finder *find.Finder, name string) (*types.ManagedObjectReference, error) {
	if name != "" {
		ds, err := finder.Datastore(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to find datastore %s: %w", name, err)
		}
		ref := ds.Reference()
		return &ref, nil
	}

	var m mo.VirtualMachine
	if err := v.c.pc.RetrieveOne(ctx, v.vm.Reference(), []string{"datastore"}, &m); err != nil {
		return nil, fmt.Errorf("failed to get template datastores: %w", err)
	}
	if len(m.Datastore) == 0 {
		return nil, nil
	}
	return &m.Datastore[0], nil
}

func (v *realVM) PowerOn(ctx context.Context) (Task, error) {
	task, err := v.vm.PowerOn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit power on of %s: %w", v.vm.Name(), err)
	}
	return v.c.newTask(task), nil
}

func (v *realVM) MigrateTo(ctx context.Context, host Host) (Task, error) {
	rh, ok := host.(*realHost)
	if !ok {
		return nil, fmt.Errorf("host %s was not resolved by this client", host.Name())
	}

	// Live migration keeps the VM in its current resource pool.
	pool, err := v.vm.ResourcePool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource pool of %s: %w", v.vm.Name(), err)
	}

	task, err := v.vm.Migrate(ctx, pool, rh.host, types.VirtualMachineMovePriorityDefaultPriority, "")
	if err != nil {
		return nil, fmt.Errorf("failed to submit migration of %s: %w", v.vm.Name(), err)
	}
	return v.c.newTask(task), nil
}

func (v *realVM) SetMAC(ctx context.Context, mac string) (Task, error) {
	devices, err := v.vm.Device(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices of %s: %w", v.vm.Name(), err)
	}

	ethernets := devices.SelectByType((*types.VirtualEthernetCard)(nil))
	if len(ethernets) == 0 {
		return nil, fmt.Errorf("virtual machine %s has no ethernet adapter", v.vm.Name())
	}

	card := ethernets[0].(types.BaseVirtualEthernetCard).GetVirtualEthernetCard()
	card.AddressType = string(types.VirtualEthernetCardMacTypeManual)
	card.MacAddress = mac

	task, err := v.vm.Reconfigure(ctx, types.VirtualMachineConfigSpec{
		DeviceChange: []types.BaseVirtualDeviceConfigSpec{
			&types.VirtualDeviceConfigSpec{
				Operation: types.VirtualDeviceConfigSpecOperationEdit,
				Device:    ethernets[0],
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit mac change of %s: %w", v.vm.Name(), err)
	}
	return v.c.newTask(task), nil
}

func (v *realVM) GuestNICs(ctx context.Context) ([]NIC, error) {
	var m mo.VirtualMachine
	if err := v.c.pc.RetrieveOne(ctx, v.vm.Reference(), []string{"guest.net"}, &m); err != nil {
		return nil, fmt.Errorf("failed to get guest network info of %s: %w", v.vm.Name(), err)
	}
	if m.Guest == nil {
		return nil, nil
	}

	nics := make([]NIC, 0, len(m.Guest.Net))
	for _, n := range m.Guest.Net {
		nic := NIC{MAC: n.MacAddress}
		if n.IpConfig != nil {
			for _, addr := range n.IpConfig.IpAddress {
				nic.IPs = append(nic.IPs, addr.IpAddress)
			}
		} else {
			nic.IPs = append(nic.IPs, n.IpAddress...)
		}
		nics = append(nics, nic)
	}
	return nics, nil
}

type realTask struct {
	pc  *property.Collector
	ref types.ManagedObjectReference
}

func (c *RealClient) newTask(t *object.Task) *realTask {
	return &realTask{pc: c.pc, ref: t.Reference()}
}

// Status fetches the task's info property and maps it onto TaskStatus.
func (t *realTask) Status(ctx context.Context) (TaskStatus, error) {
	var m mo.Task
	if err := t.pc.RetrieveOne(ctx, t.ref, []string{"info"}, &m); err != nil {
		return TaskStatus{}, fmt.Errorf("failed to get task info: %w", err)
	}

	status := TaskStatus{}
	switch m.Info.State {
	case types.TaskInfoStateSuccess:
		status.State = TaskSuccess
	case types.TaskInfoStateError:
		status.State = TaskError
		if m.Info.Error != nil {
			status.Message = m.Info.Error.LocalizedMessage
		} else {
			status.Message = "task was cancelled"
		}
	case types.TaskInfoStateRunning:
		status.State = TaskRunning
		status.Progress = int(m.Info.Progress)
	default:
		status.State = TaskQueued
	}
	return status, nil
}
