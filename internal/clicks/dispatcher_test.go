package clicks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkly/internal/entities"
)

type countingRecorder struct {
	mu    sync.Mutex
	urls  []string
	err   error
	panic bool
}

func (r *countingRecorder) Record(_ context.Context, urlID string, _ entities.ClickContext) (*entities.Click, error) {
	if r.panic {
		panic("boom")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, urlID)
	if r.err != nil {
		return nil, r.err
	}
	return &entities.Click{URLID: urlID}, nil
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.urls)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(&countingRecorder{}, DispatcherConfig{Workers: 1, QueueSize: 2}, zap.NewNop())

	assert.True(t, d.Dispatch(Job{URLID: "a"}))
	assert.True(t, d.Dispatch(Job{URLID: "b"}))
	assert.False(t, d.Dispatch(Job{URLID: "c"}))
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	rec := &countingRecorder{}
	d := NewDispatcher(rec, DispatcherConfig{Workers: 3, QueueSize: 16}, zap.NewNop())

	for i := 0; i < 10; i++ {
		require.True(t, d.Dispatch(Job{URLID: "u"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, d.Run(ctx))
	assert.Equal(t, 10, rec.count())
}

func TestDispatcher_ProcessesWhileRunning(t *testing.T) {
	rec := &countingRecorder{}
	d := NewDispatcher(rec, DispatcherConfig{Workers: 2, QueueSize: 8}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for i := 0; i < 5; i++ {
		d.Dispatch(Job{URLID: "u"})
	}
	assert.Eventually(t, func() bool { return rec.count() == 5 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestDispatcher_FailuresDoNotStopWorkers(t *testing.T) {
	for name, rec := range map[string]*countingRecorder{
		"error": {err: errors.New("db down")},
		"panic": {panic: true},
	} {
		t.Run(name, func(t *testing.T) {
			d := NewDispatcher(rec, DispatcherConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
			d.Dispatch(Job{URLID: "a"})
			d.Dispatch(Job{URLID: "b"})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			assert.NoError(t, d.Run(ctx))
			assert.Empty(t, d.queue)
		})
	}
}
