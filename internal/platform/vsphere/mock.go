package vsphere

import (
	"context"
)

// MockClient is a mock implementation of Client.
type MockClient struct {
	VirtualMachineFunc func(ctx context.Context, name string) (VirtualMachine, error)
	HostFunc           func(ctx context.Context, name string) (Host, error)
	VMExistsFunc       func(ctx context.Context, name string) (bool, error)
	LogoutFunc         func(ctx context.Context) error
}

func (m *MockClient) VirtualMachine(ctx context.Context, name string) (VirtualMachine, error) {
	return m.VirtualMachineFunc(ctx, name)
}

func (m *MockClient) Host(ctx context.Context, name string) (Host, error) {
	return m.HostFunc(ctx, name)
}

func (m *MockClient) VMExists(ctx context.Context, name string) (bool, error) {
	if m.VMExistsFunc == nil {
		return false, nil
	}
	return m.VMExistsFunc(ctx, name)
}

func (m *MockClient) Logout(ctx context.Context) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx)
}

// MockVM is a mock implementation of VirtualMachine.
type MockVM struct {
	NameValue     string
	PoweredOnFunc func(ctx context.Context) (bool, error)
	CloneFunc     func(ctx context.Context, req CloneRequest) (Task, error)
	PowerOnFunc   func(ctx context.Context) (Task, error)
	MigrateToFunc func(ctx context.Context, host Host) (Task, error)
	SetMACFunc    func(ctx context.Context, mac string) (Task, error)
	GuestNICsFunc func(ctx context.Context) ([]NIC, error)
}

func (m *MockVM) Name() string { return m.NameValue }

func (m *MockVM) PoweredOn(ctx context.Context) (bool, error) {
	if m.PoweredOnFunc == nil {
		return true, nil
	}
	return m.PoweredOnFunc(ctx)
}

func (m *MockVM) Clone(ctx context.Context, req CloneRequest) (Task, error) {
	return m.CloneFunc(ctx, req)
}

func (m *MockVM) PowerOn(ctx context.Context) (Task, error) {
	return m.PowerOnFunc(ctx)
}

func (m *MockVM) MigrateTo(ctx context.Context, host Host) (Task, error) {
	return m.MigrateToFunc(ctx, host)
}

func (m *MockVM) SetMAC(ctx context.Context, mac string) (Task, error) {
	return m.SetMACFunc(ctx, mac)
}

func (m *MockVM) GuestNICs(ctx context.Context) ([]NIC, error) {
	return m.GuestNICsFunc(ctx)
}

// MockHost is a mock implementation of Host.
type MockHost struct {
	NameValue string
}

func (m *MockHost) Name() string { return m.NameValue }

// MockTask is a mock implementation of Task. Statuses are returned in
// order; the last one repeats once the slice is exhausted.
type MockTask struct {
	Statuses   []TaskStatus
	Err        error
	StatusFunc func(ctx context.Context) (TaskStatus, error)

	calls int
}

func (m *MockTask) Status(ctx context.Context) (TaskStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	if m.Err != nil {
		return TaskStatus{}, m.Err
	}
	i := m.calls
	if i >= len(m.Statuses) {
		i = len(m.Statuses) - 1
	}
	m.calls++
	return m.Statuses[i], nil
}

// SucceededTask returns a task that reports success immediately.
func SucceededTask() *MockTask {
	return &MockTask{Statuses: []TaskStatus{{State: TaskSuccess}}}
}

// FailedTask returns a task that reports an error with the given message.
func FailedTask(message string) *MockTask {
	return &MockTask{Statuses: []TaskStatus{{State: TaskError, Message: message}}}
}
