package migration

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowLock_SingleOwner(t *testing.T) {
	var l WorkflowLock

	owner, release, err := l.Acquire(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, owner)
	assert.Equal(t, owner, l.Owner())

	_, _, err = l.Acquire(nil)
	assert.ErrorIs(t, err, ErrWorkflowBusy)

	release()
	release()
	assert.Empty(t, l.Owner())

	_, release2, err := l.Acquire(nil)
	require.NoError(t, err)
	release2()
}

func TestWorkflowLock_CooperativeCancel(t *testing.T) {
	var l WorkflowLock
	var release func()
	var cancelled atomic.Bool

	_, release, err := l.Acquire(func() {
		cancelled.Store(true)
		go release()
	})
	require.NoError(t, err)

	forced := l.Cancel(time.Second)
	assert.False(t, forced)
	assert.True(t, cancelled.Load())
	assert.Empty(t, l.Owner())
}

func TestWorkflowLock_ForcedRelease(t *testing.T) {
	var l WorkflowLock
	_, staleRelease, err := l.Acquire(func() {})
	require.NoError(t, err)

	forced := l.Cancel(10 * time.Millisecond)
	assert.True(t, forced)
	assert.Empty(t, l.Owner())

	next, release, err := l.Acquire(nil)
	require.NoError(t, err)

	staleRelease()
	assert.Equal(t, next, l.Owner(), "a late release from the old holder is ignored")
	release()
}

func TestWorkflowLock_CancelWhenFree(t *testing.T) {
	var l WorkflowLock
	assert.False(t, l.Cancel(time.Millisecond))
}
