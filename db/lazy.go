package db

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Lazy holds a process-wide handle that is opened on first use and reused
// afterwards. Concurrent first callers share one open attempt. A failed
// attempt is not cached, the next caller tries again.
type Lazy[T any] struct {
	open  func(ctx context.Context) (T, error)
	group singleflight.Group
	val   atomic.Pointer[T]
}

func NewLazy[T any](open func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{open: open}
}

func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v := l.val.Load(); v != nil {
		return *v, nil
	}

	res, err, _ := l.group.Do("open", func() (any, error) {
		if v := l.val.Load(); v != nil {
			return *v, nil
		}

		v, err := l.open(ctx)
		if err != nil {
			return nil, err
		}

		l.val.Store(&v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return res.(T), nil
}

// Take removes the cached handle and returns it, if one was opened
func (l *Lazy[T]) Take() (T, bool) {
	v := l.val.Swap(nil)
	if v == nil {
		var zero T
		return zero, false
	}

	return *v, true
}
