package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDeliversJobs(t *testing.T) {
	delivered := make(chan Job, 1)
	q := NewQueue("confirmations", func(ctx context.Context, job Job) error {
		delivered <- job
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a", Type: "confirmation"}))

	select {
	case job := <-delivered:
		assert.Equal(t, "a", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("job was not delivered")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	attempts := make(chan int, 8)
	q := NewQueue("confirmations", func(ctx context.Context, job Job) error {
		attempts <- job.Attempt
		if job.Attempt < 2 {
			return errors.New("smtp unavailable")
		}
		return nil
	}, QueueConfig{Workers: 1, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a", Type: "confirmation"}))

	deadline := time.After(3 * time.Second)
	var seen []int
	for len(seen) < 3 {
		select {
		case n := <-attempts:
			seen = append(seen, n)
		case <-deadline:
			t.Fatalf("expected three attempts, saw %v", seen)
		}
	}
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestQueueStopDeliversBufferedJobs(t *testing.T) {
	var delivered atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	q := NewQueue("confirmations", func(ctx context.Context, job Job) error {
		if delivered.Add(1) == 1 {
			close(entered)
			<-release
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	<-entered
	require.NoError(t, q.Enqueue(Job{ID: "b"}))
	require.NoError(t, q.Enqueue(Job{ID: "c"}))

	// Unblock the in-flight job only once shutdown has begun, so "b" and
	// "c" are still buffered when the workers wind down.
	go func() {
		<-q.ctx.Done()
		close(release)
	}()
	q.Stop()

	assert.EqualValues(t, 3, delivered.Load())
	assert.Zero(t, q.Pending())
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("confirmations", func(ctx context.Context, job Job) error {
		return nil
	}, QueueConfig{})

	err := q.Enqueue(Job{ID: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}
