package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_ProgressAndEvents(t *testing.T) {
	store := NewJobStore()
	j := store.Create("validation", "tenant-1")

	j.SetProgress("Listing snippets", 10)
	j.AppendLog("3 snippets")
	j.SetProgress("going backwards", 5)

	status := j.Snapshot()
	assert.Equal(t, 10, status.Percent, "percent must not decrease")
	assert.Equal(t, "going backwards", status.Message)

	events := j.EventsSince(0)
	require.Len(t, events, 3)
	assert.Equal(t, EventProgress, events[0].Kind)
	assert.Equal(t, EventDetail, events[1].Kind)
	assert.Equal(t, "3 snippets", events[1].Message)

	assert.Len(t, j.EventsSince(2), 1)
	assert.Nil(t, j.EventsSince(3))
}

func TestJob_TerminalStatusIsFinal(t *testing.T) {
	store := NewJobStore()
	j := store.Create("validation", "")

	cancelled := false
	j.SetCancel(func() { cancelled = true })
	j.Cancel()
	assert.True(t, cancelled)
	assert.Equal(t, JobCancelled, j.CurrentStatus())
	assert.True(t, j.Done())

	j.Complete()
	assert.Equal(t, JobCancelled, j.CurrentStatus())
	assert.NotNil(t, j.Snapshot().FinishedAt)
}

func TestJob_Fail(t *testing.T) {
	j := NewJobStore().Create("validation", "")
	j.Fail("boom")
	s := j.Snapshot()
	assert.Equal(t, JobFailed, s.Status)
	assert.Equal(t, "boom", s.Error)
}

func TestJobStore_ListMostRecentFirst(t *testing.T) {
	store := NewJobStore()
	first := store.Create("validation", "")
	second := store.Create("validation", "")
	first.StartedAt = time.Now().Add(-time.Minute)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Same(t, first, store.Get(first.ID))
}
