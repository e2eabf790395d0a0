package cron

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnce(t *testing.T) {
	t.Parallel()
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var runs int32
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())

	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	t.Parallel()
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	var once int32
	s.AddJob("immediate", time.Hour, func(ctx context.Context) error {
		if atomic.CompareAndSwapInt32(&once, 0, 1) {
			close(done)
		}
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
