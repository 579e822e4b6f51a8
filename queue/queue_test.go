package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsTaskAndSettlesFuture(t *testing.T) {
	q := New[int](2)
	fut := q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	val, err := fut.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestEnqueueIsolatesTaskErrors(t *testing.T) {
	var onErrorCalls int32
	q := New[int](1, WithOnError(func(err error) { atomic.AddInt32(&onErrorCalls, 1) }))

	failing := q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	ok := q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})

	_, err := failing.Get(context.Background())
	assert.Error(t, err)

	val, err := ok.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, val)

	assert.Equal(t, int32(1), atomic.LoadInt32(&onErrorCalls))
}

func TestOnIdleWaitsForPendingAndInFlight(t *testing.T) {
	q := New[int](1)
	release := make(chan struct{})
	q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		return 2, nil
	})

	idleDone := make(chan error, 1)
	go func() { idleDone <- q.OnIdle(context.Background()) }()

	select {
	case <-idleDone:
		t.Fatal("OnIdle resolved before tasks finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-idleDone)
	m := q.Metrics()
	assert.Equal(t, 0, m.Pending)
	assert.Equal(t, 0, m.InFlight)
	assert.Equal(t, 2, m.Completed)
}

func TestMinIntervalSpacesDispatch(t *testing.T) {
	q := New[int](1, WithMinInterval(30*time.Millisecond))
	start := time.Now()
	var firsts []time.Duration
	for i := 0; i < 2; i++ {
		fut := q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
			firsts = append(firsts, time.Since(start))
			return 0, nil
		})
		_, _ = fut.Get(context.Background())
	}
	require.Len(t, firsts, 2)
	assert.GreaterOrEqual(t, firsts[1]-firsts[0], 20*time.Millisecond)
}
