package core

// import_limiter.go bounds how many imports run at once when the engine is
// driven by concurrent callers (the HTTP service). Each import still loads
// its files sequentially; the limiter only caps parallel imports so that the
// connection pool is not exhausted. When all slots are taken, callers wait
// up to maxWait before failing with ErrTooManyImports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up in time.
var ErrTooManyImports = errors.New("too many imports in progress, please try again later")

const (
	DefaultMaxConcurrentImports = 2
	DefaultMaxWaitTime          = 30 * time.Second
)

// ImportLimiter is a counting semaphore over import slots.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows at most maxConcurrent imports; waiters give up after maxWait.
// Non-positive arguments select the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the configured limit.
// The caller must Release the slot when the import ends.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free.
func (l *ImportLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of imports holding a slot.
func (l *ImportLimiter) Active() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *ImportLimiter) MaxConcurrent() int { return cap(l.slots) }

// WaitForDrain blocks until no import holds a slot or ctx ends.
// Used during graceful shutdown.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
