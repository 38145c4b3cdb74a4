package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PerUserOrdering(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64][]int)

	handler := func(_ context.Context, ev Event) error {
		// Jitter so that unordered processing would show up.
		time.Sleep(time.Duration(ev.MessageID%3) * time.Millisecond)
		mu.Lock()
		seen[ev.UserID] = append(seen[ev.UserID], ev.MessageID)
		mu.Unlock()
		return nil
	}

	pool := NewPool(PoolConfig{NumWorkers: 3, QueueSize: 4}, handler, &mockLogger{})
	require.NoError(t, pool.Start(context.Background()))

	const perUser = 20
	users := []int64{1, 2, 3, 4, 5}
	for i := 0; i < perUser; i++ {
		for _, u := range users {
			require.NoError(t, pool.Submit(context.Background(), Event{UserID: u, MessageID: i}))
		}
	}
	require.NoError(t, pool.Stop(context.Background()))

	for _, u := range users {
		require.Len(t, seen[u], perUser)
		for i, id := range seen[u] {
			assert.Equal(t, i, id, "user %d processed out of order", u)
		}
	}
}

func TestPool_UsersRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32

	handler := func(_ context.Context, ev Event) error {
		if ev.UserID == 1 {
			started.Add(1)
			<-release
			return nil
		}
		started.Add(1)
		return nil
	}

	pool := NewPool(PoolConfig{NumWorkers: 2, QueueSize: 1}, handler, &mockLogger{})
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Submit(context.Background(), Event{UserID: 1}))
	require.NoError(t, pool.Submit(context.Background(), Event{UserID: 2}))

	assert.Eventually(t, func() bool { return started.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_SurvivesErrorsAndPanics(t *testing.T) {
	var handled atomic.Int32
	handler := func(_ context.Context, ev Event) error {
		switch ev.MessageID {
		case 1:
			panic("boom")
		case 2:
			return errors.New("handler failed")
		}
		handled.Add(1)
		return nil
	}

	pool := NewPool(PoolConfig{NumWorkers: 1}, handler, &mockLogger{})
	require.NoError(t, pool.Start(context.Background()))
	for i := 1; i <= 3; i++ {
		require.NoError(t, pool.Submit(context.Background(), Event{UserID: 7, MessageID: i}))
	}
	require.NoError(t, pool.Stop(context.Background()))

	assert.Equal(t, int32(1), handled.Load())
}

func TestPool_Lifecycle(t *testing.T) {
	pool := NewPool(PoolConfig{}, func(context.Context, Event) error { return nil }, &mockLogger{})

	assert.ErrorIs(t, pool.Submit(context.Background(), Event{}), ErrPoolStopped)
	assert.False(t, pool.IsRunning())

	require.NoError(t, pool.Start(context.Background()))
	assert.True(t, pool.IsRunning())
	assert.Error(t, pool.Start(context.Background()))

	require.NoError(t, pool.Stop(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))
	assert.ErrorIs(t, pool.Submit(context.Background(), Event{}), ErrPoolStopped)
}

func TestPool_Shard(t *testing.T) {
	pool := NewPool(PoolConfig{NumWorkers: 5}, nil, &mockLogger{})
	pool.queues = make([]chan Event, 5)

	assert.Equal(t, 0, pool.shard(10))
	assert.Equal(t, 3, pool.shard(13))
	assert.Equal(t, pool.shard(123456789), pool.shard(123456789))
	assert.GreaterOrEqual(t, pool.shard(-1), 0)
}
