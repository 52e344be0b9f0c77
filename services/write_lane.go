package services

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// WriteLane serializes every read-modify-write operation of the process.
// Reads never enter it.
type WriteLane struct {
	sem *semaphore.Weighted
}

func NewWriteLane() *WriteLane {
	return &WriteLane{sem: semaphore.NewWeighted(1)}
}

// Do runs fn while holding the lane. It gives up with ctx.Err() if the lane
// cannot be acquired before ctx is done.
func (l *WriteLane) Do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}
