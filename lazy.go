package fileconv

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// lazy holds a value that is expensive to create. The first caller triggers
// load; concurrent callers wait for that same load. A failed load is not
// remembered, so the next caller tries again.
type lazy[T any] struct {
	load  func(ctx context.Context) (T, error)
	group singleflight.Group

	mu    sync.RWMutex
	val   T
	ready bool
}

func newLazy[T any](load func(ctx context.Context) (T, error)) *lazy[T] {
	return &lazy[T]{load: load}
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.ready {
		v := l.val
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do("load", func() (any, error) {
		l.mu.RLock()
		if l.ready {
			v := l.val
			l.mu.RUnlock()
			return v, nil
		}
		l.mu.RUnlock()

		v, err := l.load(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.val, l.ready = v, true
		l.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	val, _ := v.(T)
	return val, nil
}

// loaded returns the value if a load has already succeeded.
func (l *lazy[T]) loaded() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val, l.ready
}
