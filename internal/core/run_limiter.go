package core

// run_limiter.go bounds how many validation runs tokenize at once. A run
// holds its whole grid in memory, so each one takes a slot in a buffered
// channel for its lifetime. Slot occupancy is the channel length; there is
// no separate counter to keep in sync.

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyRuns is returned when no run slot frees up within the wait
// window. Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent validation runs, please try again later")

const (
	// DefaultMaxConcurrentRuns is the slot count used when none is configured.
	DefaultMaxConcurrentRuns = 4

	// DefaultMaxWaitTime is how long a run queues for a slot before rejection.
	DefaultMaxWaitTime = 15 * time.Second
)

// RunLimiter hands out a fixed number of run slots.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewRunLimiter returns a limiter with maxConcurrent slots. Non-positive
// arguments fall back to the package defaults.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. It returns ErrTooManyRuns
// when the wait runs out and ctx.Err() when ctx ends first. Every nil
// return must be paired with one Release.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	if l.tryAcquire() {
		return nil
	}

	wait := time.NewTimer(l.maxWait)
	defer wait.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-wait.C:
		return ErrTooManyRuns
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *RunLimiter) tryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire.
func (l *RunLimiter) Release() {
	<-l.slots
}

// ActiveCount reports how many slots are taken.
func (l *RunLimiter) ActiveCount() int { return len(l.slots) }

// MaxConcurrent reports the slot count.
func (l *RunLimiter) MaxConcurrent() int { return cap(l.slots) }

// Available reports how many slots are free.
func (l *RunLimiter) Available() int { return cap(l.slots) - len(l.slots) }

// WaitForDrain returns once every in-flight run has released its slot, or
// with ctx.Err() if ctx ends first. It works by claiming all slots itself,
// so new runs queue behind it until it returns.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	held := 0
	defer func() {
		for ; held > 0; held-- {
			<-l.slots
		}
	}()

	for held < cap(l.slots) {
		select {
		case l.slots <- struct{}{}:
			held++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// RunLimiterStatus is a point-in-time view of the limiter for /health.
type RunLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status snapshots the limiter.
func (l *RunLimiter) Status() RunLimiterStatus {
	active := l.ActiveCount()
	return RunLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
