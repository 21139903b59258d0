package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
)

func testPoller(maxWait time.Duration) Poller {
	return Poller{
		Interval: time.Millisecond,
		MaxWait:  maxWait,
		Log:      logr.Discard(),
	}
}

func TestPoll_ImmediateSuccess(t *testing.T) {
	t.Parallel()

	outcome := testPoller(time.Second).Poll(context.Background(), "vm-1", vsphere.SucceededTask())

	assert.Equal(t, Success, outcome.State)
	assert.False(t, outcome.Failed())
	assert.Less(t, outcome.Elapsed, time.Second)
}

func TestPoll_SuccessAfterRunning(t *testing.T) {
	t.Parallel()

	mock := &vsphere.MockTask{Statuses: []vsphere.TaskStatus{
		{State: vsphere.TaskQueued},
		{State: vsphere.TaskRunning, Progress: 40},
		{State: vsphere.TaskRunning, Progress: 90},
		{State: vsphere.TaskSuccess},
	}}

	outcome := testPoller(time.Second).Poll(context.Background(), "vm-1", mock)

	assert.Equal(t, Success, outcome.State)
}

func TestPoll_Error(t *testing.T) {
	t.Parallel()

	outcome := testPoller(time.Second).Poll(context.Background(), "vm-1", vsphere.FailedTask("insufficient disk space"))

	assert.Equal(t, Error, outcome.State)
	assert.True(t, outcome.Failed())
	assert.Equal(t, "insufficient disk space", outcome.Detail)
}

func TestPoll_TimedOutIsAnOutcomeNotAnError(t *testing.T) {
	t.Parallel()

	mock := &vsphere.MockTask{Statuses: []vsphere.TaskStatus{
		{State: vsphere.TaskRunning, Progress: 10},
	}}

	outcome := testPoller(10 * time.Millisecond).Poll(context.Background(), "vm-1", mock)

	assert.Equal(t, TimedOut, outcome.State)
	assert.True(t, outcome.Failed())
	assert.GreaterOrEqual(t, outcome.Elapsed, 10*time.Millisecond)
}

func TestPoll_StatusFetchError(t *testing.T) {
	t.Parallel()

	mock := &vsphere.MockTask{Err: errors.New("connection reset")}

	outcome := testPoller(time.Second).Poll(context.Background(), "vm-1", mock)

	assert.Equal(t, Error, outcome.State)
	assert.Contains(t, outcome.Detail, "connection reset")
}

func TestPoll_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &vsphere.MockTask{Statuses: []vsphere.TaskStatus{
		{State: vsphere.TaskRunning},
	}}

	outcome := testPoller(time.Minute).Poll(ctx, "vm-1", mock)

	assert.Equal(t, Error, outcome.State)
	assert.Contains(t, outcome.Detail, "context canceled")
}
