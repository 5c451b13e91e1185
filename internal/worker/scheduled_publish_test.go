package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	calls int32
	last  atomic.Value
	fn    func(call int32) (int, error)
}

func (f *fakePublisher) PublishDue(_ context.Context, now time.Time) (int, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.last.Store(now)
	return f.fn(n)
}

func TestRunOncePassesClock(t *testing.T) {
	at := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	pub := &fakePublisher{fn: func(int32) (int, error) { return 2, nil }}
	w := NewScheduledPublishWorker(pub, time.Minute, nil)
	w.now = func() time.Time { return at }

	assert.Equal(t, 2, w.RunOnce(context.Background()))
	assert.Equal(t, at, pub.last.Load())
}

func TestRunOnceSurvivesErrorAndPanic(t *testing.T) {
	pub := &fakePublisher{fn: func(call int32) (int, error) {
		switch call {
		case 1:
			return 0, errors.New("store down")
		case 2:
			panic("boom")
		}
		return 1, nil
	}}
	w := NewScheduledPublishWorker(pub, time.Minute, nil)

	assert.Equal(t, 0, w.RunOnce(context.Background()))
	assert.NotPanics(t, func() { assert.Equal(t, 0, w.RunOnce(context.Background())) })
	assert.Equal(t, 1, w.RunOnce(context.Background()), "tick sau vẫn chạy bình thường")
}

func TestStartStopsWithContext(t *testing.T) {
	pub := &fakePublisher{fn: func(int32) (int, error) { return 0, nil }}
	w := NewScheduledPublishWorker(pub, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&pub.calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker không dừng sau khi hủy context")
	}
}

func TestDefaultInterval(t *testing.T) {
	w := NewScheduledPublishWorker(&fakePublisher{}, 0, nil)
	assert.Equal(t, 30*time.Second, w.interval)
}
