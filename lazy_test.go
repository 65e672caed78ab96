package fileconv

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLazy(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	release := make(chan struct{})
	l := newLazy(func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})

	_, ok := l.loaded()
	assert.False(t, ok)

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.get(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, []int{42, 42, 42, 42}, results)
	assert.Equal(t, int32(1), calls.Load())

	v, ok := l.loaded()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestLazyRetriesAfterFailure(t *testing.T) {
	fail := true
	l := newLazy(func(context.Context) (string, error) {
		if fail {
			return "", errors.New("not yet")
		}
		return "ready", nil
	})

	_, err := l.get(context.Background())
	require.Error(t, err)
	_, ok := l.loaded()
	assert.False(t, ok)

	fail = false
	v, err := l.get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
}

func TestLazyNilInterface(t *testing.T) {
	l := newLazy(func(context.Context) (io.Reader, error) { return nil, nil })

	var v io.Reader
	require.NotPanics(t, func() {
		var err error
		v, err = l.get(context.Background())
		require.NoError(t, err)
	})
	assert.Nil(t, v)
}
