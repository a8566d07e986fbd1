package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	block   bool
	err     error
}

func newCountingRunner() *countingRunner {
	return &countingRunner{started: make(chan struct{}, 16)}
}

func (r *countingRunner) RunCycle(ctx context.Context) error {
	r.calls.Add(1)
	select {
	case r.started <- struct{}{}:
	default:
	}
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.err
}

func TestWorker_RunsFirstCycleImmediately(t *testing.T) {
	runner := newCountingRunner()
	w := New(runner, time.Hour, 0, discardLogger())
	w.Start()
	defer w.Stop()

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("first cycle did not start")
	}
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestWorker_RepeatsCycles(t *testing.T) {
	runner := newCountingRunner()
	runner.err = errors.New("feed b: database is locked")
	w := New(runner, 10*time.Millisecond, 5*time.Millisecond, discardLogger())
	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool {
		return runner.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWorker_StopWaitsForInFlightCycle(t *testing.T) {
	runner := newCountingRunner()
	runner.block = true
	w := New(runner, time.Hour, 0, discardLogger())
	w.Start()
	<-runner.started

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int32(1), runner.calls.Load())

	w.Stop()
}

func TestWorker_NextDelay(t *testing.T) {
	w := New(newCountingRunner(), time.Minute, 10*time.Second, discardLogger())
	for i := 0; i < 100; i++ {
		d := w.nextDelay()
		assert.GreaterOrEqual(t, d, time.Minute)
		assert.Less(t, d, time.Minute+10*time.Second)
	}

	w = New(newCountingRunner(), time.Minute, 0, discardLogger())
	assert.Equal(t, time.Minute, w.nextDelay())
	assert.Equal(t, time.Minute, w.Interval())
}
