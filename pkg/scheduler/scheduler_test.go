package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTaskRejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	defer s.Stop()

	err = s.AddTask("never", 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestTaskRunsRepeatedly(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.AddTask("count", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestFailingTaskKeepsRunning(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.AddTask("fail", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestStopCancelsTaskContext(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	started := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.AddTask("block", 20*time.Millisecond, func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task never started")
	}
	require.NoError(t, s.Stop())
}
