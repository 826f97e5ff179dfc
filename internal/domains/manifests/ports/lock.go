package ports

import (
	"context"
	"errors"
)

// ErrRunLocked indicates another process holds the run lock for the manifest.
var ErrRunLocked = errors.New("manifest run already in progress")

// RunLock serialises processing runs of the same manifest across processes.
type RunLock interface {
	// Acquire returns a release func, or ErrRunLocked when another holder exists.
	Acquire(ctx context.Context, manifestID int64) (func(context.Context) error, error)
}

// NoopRunLock relies on the repository claim alone.
var NoopRunLock RunLock = noopRunLock{}

type noopRunLock struct{}

func (noopRunLock) Acquire(context.Context, int64) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
