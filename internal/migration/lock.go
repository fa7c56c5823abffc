package migration

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkflowLock allows one validation or push at a time. The holder registers
// a cancel function; Cancel asks it to stop and, if it does not release the
// lock within the grace period, releases the lock on its behalf.
type WorkflowLock struct {
	mu     sync.Mutex
	owner  string
	cancel func()
	done   chan struct{}
	gen    uint64
}

// Acquire takes the lock. The returned release function is safe to call more
// than once and is a no-op after a forced release.
func (l *WorkflowLock) Acquire(cancel func()) (owner string, release func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner != "" {
		return "", nil, ErrWorkflowBusy
	}
	l.owner = uuid.New().String()
	l.cancel = cancel
	l.done = make(chan struct{})
	gen := l.gen
	return l.owner, func() { l.release(gen) }, nil
}

func (l *WorkflowLock) release(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen || l.owner == "" {
		return
	}
	l.owner = ""
	l.cancel = nil
	close(l.done)
	l.gen++
}

// Owner returns the current holder's id, or "" when the lock is free.
func (l *WorkflowLock) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// Cancel signals the holder to stop and waits up to grace for it to release.
// forced reports whether the lock had to be taken away. Cancel on a free lock
// does nothing.
func (l *WorkflowLock) Cancel(grace time.Duration) (forced bool) {
	l.mu.Lock()
	if l.owner == "" {
		l.mu.Unlock()
		return false
	}
	cancel, done, gen := l.cancel, l.done, l.gen
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return false
	case <-timer.C:
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return false
	}
	l.owner = ""
	l.cancel = nil
	close(l.done)
	l.gen++
	return true
}
